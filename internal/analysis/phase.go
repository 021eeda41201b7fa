package analysis

import (
	"strings"

	"github.com/san-kum/clothsim/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot.
type PhasePortrait2D struct {
	Points []Point
}

// GeneratePhasePortrait pairs the mean height of each sample with its
// central-difference rate of change.
func GeneratePhasePortrait(samples []sim.Sample) *PhasePortrait2D {
	if len(samples) < 3 {
		return nil
	}

	portrait := &PhasePortrait2D{Points: make([]Point, 0, len(samples)-2)}
	for i := 1; i+1 < len(samples); i++ {
		dt := samples[i+1].Time - samples[i-1].Time
		if dt <= 0 {
			continue
		}
		portrait.Points = append(portrait.Points, Point{
			X: samples[i].MeanHeight,
			Y: (samples[i+1].MeanHeight - samples[i-1].MeanHeight) / dt,
		})
	}
	return portrait
}

type bounds struct{ minX, maxX, minY, maxY float64 }

// padded returns the bounds of pts grown by 10% on each side.
func padded(pts []Point) bounds {
	b := bounds{pts[0].X, pts[0].X, pts[0].Y, pts[0].Y}
	for _, p := range pts {
		b.minX, b.maxX = min(b.minX, p.X), max(b.maxX, p.X)
		b.minY, b.maxY = min(b.minY, p.Y), max(b.maxY, p.Y)
	}
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	return bounds{b.minX - rx*0.1, b.maxX + rx*0.1, b.minY - ry*0.1, b.maxY + ry*0.1}
}

// PhasePortraitToASCII plots the portrait on a width by height grid with
// axes where they cross the visible area.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	b := padded(portrait.Points)
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - b.minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-b.minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if b.minX <= 0 && b.maxX >= 0 {
		col := int((0 - b.minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if b.minY <= 0 && b.maxY >= 0 {
		row := height - 1 - int((0-b.minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
