// Package mesh builds the regular grid a cloth is simulated on: point
// positions, texture coordinates, the triangle list and the structural,
// shear and bend spring families.
package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrInvalidGrid = errors.New("mesh: grid needs at least 2x2 points")

type GridSpec struct {
	Width   int     // points per row
	Height  int     // points per column
	Scale   float64 // half-height of the sheet
	Aspect  float64 // width/height ratio of the sheet
	Tension float64 // rest length multiplier
}

// Grid is a W×H sheet in the z=0 plane. Point (row i, col j) has index
// i*Width+j; row 0 is the bottom edge.
type Grid struct {
	Width, Height int
	Positions     []r3.Vec
	UVs           [][2]float64
	Triangles     []int
	Springs       []Spring
}

func Build(gs GridSpec) (*Grid, error) {
	w, h := gs.Width, gs.Height
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, w, h)
	}
	if gs.Scale == 0 {
		gs.Scale = 1
	}
	if gs.Aspect == 0 {
		gs.Aspect = 1
	}
	if gs.Tension == 0 {
		gs.Tension = 1
	}

	g := &Grid{
		Width:     w,
		Height:    h,
		Positions: make([]r3.Vec, 0, w*h),
		UVs:       make([][2]float64, 0, w*h),
		Triangles: make([]int, 0, (w-1)*(h-1)*6),
	}

	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			u := float64(j) / float64(w-1)
			v := float64(i) / float64(h-1)
			g.Positions = append(g.Positions, r3.Vec{
				X: (u - 0.5) * 2 * gs.Aspect * gs.Scale,
				Y: (v - 0.5) * 2 * gs.Scale,
			})
			g.UVs = append(g.UVs, [2]float64{u, v})
		}
	}

	for i := 0; i < h-1; i++ {
		for j := 0; j < w-1; j++ {
			v0, v1 := g.Index(i, j), g.Index(i, j+1)
			v2, v3 := g.Index(i+1, j+1), g.Index(i+1, j)
			g.Triangles = append(g.Triangles, v0, v1, v2, v2, v3, v0)
		}
	}

	g.buildSprings(gs.Tension)
	return g, nil
}

func (g *Grid) buildSprings(tension float64) {
	w, h := g.Width, g.Height
	add := func(kind SpringKind, a, b int) {
		rest := r3.Norm(r3.Sub(g.Positions[b], g.Positions[a])) * tension
		g.Springs = append(g.Springs, Spring{A: a, B: b, Kind: kind, Rest: rest})
	}

	g.each(func(i, j int) {
		if i < h-1 {
			add(Structural, g.Index(i, j), g.Index(i+1, j))
		}
	})
	g.each(func(i, j int) {
		if j < w-1 {
			add(Structural, g.Index(i, j), g.Index(i, j+1))
		}
	})
	g.each(func(i, j int) {
		if i < h-1 && j < w-1 {
			add(Shear, g.Index(i, j), g.Index(i+1, j+1))
		}
	})
	g.each(func(i, j int) {
		if i < h-1 && j > 0 {
			add(Shear, g.Index(i, j), g.Index(i+1, j-1))
		}
	})
	g.each(func(i, j int) {
		if i < h-2 {
			add(Bend, g.Index(i, j), g.Index(i+2, j))
		}
	})
	g.each(func(i, j int) {
		if j < w-2 {
			add(Bend, g.Index(i, j), g.Index(i, j+2))
		}
	})
}

func (g *Grid) each(fn func(i, j int)) {
	for i := 0; i < g.Height; i++ {
		for j := 0; j < g.Width; j++ {
			fn(i, j)
		}
	}
}

func (g *Grid) Index(row, col int) int { return row*g.Width + col }

func (g *Grid) PointCount() int { return g.Width * g.Height }

func (g *Grid) BottomLeft() int  { return 0 }
func (g *Grid) BottomRight() int { return g.Width - 1 }
func (g *Grid) TopLeft() int     { return (g.Height - 1) * g.Width }
func (g *Grid) TopRight() int    { return g.Height*g.Width - 1 }

// Row returns the point indices of row i, left to right.
func (g *Grid) Row(i int) []int {
	idx := make([]int, g.Width)
	for j := range idx {
		idx[j] = g.Index(i, j)
	}
	return idx
}

// Column returns the point indices of column j, bottom to top.
func (g *Grid) Column(j int) []int {
	idx := make([]int, g.Height)
	for i := range idx {
		idx[i] = g.Index(i, j)
	}
	return idx
}

// CountKind returns how many springs of kind k the grid holds.
func (g *Grid) CountKind(k SpringKind) int {
	n := 0
	for _, s := range g.Springs {
		if s.Kind == k {
			n++
		}
	}
	return n
}
