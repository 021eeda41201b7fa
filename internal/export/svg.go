package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/clothsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

// CanvasToSVG converts a braille canvas to SVG dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString("<g fill=\"#e8e0cf\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.Lit(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// frame maps world XY bounds, padded by 10%, onto a width by height image
// with y up.
type frame struct {
	minX, minY, scale float64
	width, height     int
}

func fit(pts []r3.Vec, width, height int) frame {
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	rx, ry := maxX-minX, maxY-minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	minX -= rx * 0.1
	minY -= ry * 0.1
	rx *= 1.2
	ry *= 1.2
	// one scale for both axes keeps the mesh undistorted
	s := min(float64(width)/rx, float64(height)/ry)
	return frame{minX: minX, minY: minY, scale: s, width: width, height: height}
}

func (f frame) xy(p r3.Vec) (float64, float64) {
	return (p.X - f.minX) * f.scale, float64(f.height) - (p.Y-f.minY)*f.scale
}

// MeshToSVG draws the triangle edges of a vertex buffer, viewed along -z,
// and marks the points listed in pinned.
func MeshToSVG(vertices []float32, stride int, tris []uint32, pinned []int, width, height int, strokeColor string) string {
	pts := viz.VertexPositions(vertices, stride)
	if len(pts) == 0 {
		return ""
	}
	f := fit(pts, width, height)

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<g fill=\"none\" stroke=\"%s\" stroke-width=\"1\">\n", strokeColor)
	for _, e := range viz.MeshEdges(tris) {
		x1, y1 := f.xy(pts[e.A])
		x2, y2 := f.xy(pts[e.B])
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n<g fill=\"#ff5f56\">\n")
	for _, i := range pinned {
		x, y := f.xy(pts[i])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\"/>\n", x, y)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG draws ys against xs as a polyline.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}
