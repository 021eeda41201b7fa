// Package viz renders cloth meshes in the terminal.
//
// A [Camera] projects the triangle edges of a mesh onto a braille [Canvas];
// [Model] is a Bubble Tea program that steps a cloth live and draws it, and
// [Menu] lets the user pick and tune a preset before starting one.
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	Arrows  - Move the cursor (or the grabbed point)
//	G       - Grab/release the point under the cursor
//	P       - Toggle the pin under the cursor
//	W       - Toggle dynamic wind
//	X/Y     - Rotate the camera
//	+/-     - Zoom
//	T       - Cycle themes
//	R       - Reset
//	Q       - Quit
package viz
