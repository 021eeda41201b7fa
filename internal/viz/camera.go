package viz

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective view on the origin from Distance along +z after
// rotating the world by RotX then RotY.
type Camera struct {
	Distance   float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 8, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotate(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// unrotate is the inverse of rotate.
func (c *Camera) unrotate(p r3.Vec) r3.Vec {
	cy, sy := math.Cos(-c.RotY), math.Sin(-c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(-c.RotX), math.Sin(-c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

func pixelScale(sw, sh int) float64 {
	return float64(min(sw, sh)) / 3
}

// Project maps p to screen dots on a sw by sh surface. It returns the
// view depth and whether the point is in front of the camera and on screen.
func (c *Camera) Project(p r3.Vec, sw, sh int) (int, int, float64, bool) {
	v := r3.Scale(c.Zoom, c.rotate(p))
	if v.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - v.Z)
	ps := pixelScale(sw, sh)
	sx := int(math.Round(v.X*persp*ps)) + sw/2
	sy := int(math.Round(-v.Y*persp*ps)) + sh/2
	return sx, sy, v.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// ScreenDelta converts a move of (dx, dy) dots into a world displacement
// in the plane facing the camera, at the depth of the origin.
func (c *Camera) ScreenDelta(dx, dy float64, sw, sh int) r3.Vec {
	ps := pixelScale(sw, sh) * c.Zoom
	return c.unrotate(r3.Vec{X: dx / ps, Y: -dy / ps})
}

// Edge is a segment between two mesh points.
type Edge struct{ A, B int }

// MeshEdges returns the unique edges of a triangle list.
func MeshEdges(tris []uint32) []Edge {
	seen := make(map[Edge]bool, len(tris))
	edges := make([]Edge, 0, len(tris))
	add := func(a, b uint32) {
		e := Edge{int(min(a, b)), int(max(a, b))}
		if !seen[e] {
			seen[e] = true
			edges = append(edges, e)
		}
	}
	for i := 0; i+2 < len(tris); i += 3 {
		add(tris[i], tris[i+1])
		add(tris[i+1], tris[i+2])
		add(tris[i+2], tris[i])
	}
	return edges
}

// VertexPositions reads the positions out of an interleaved buffer.
func VertexPositions(buf []float32, stride int) []r3.Vec {
	out := make([]r3.Vec, len(buf)/stride)
	for i := range out {
		o := i * stride
		out[i] = r3.Vec{X: float64(buf[o]), Y: float64(buf[o+1]), Z: float64(buf[o+2])}
	}
	return out
}

type projected struct {
	x1, y1, x2, y2 int
	depth          float64
}

// RenderMesh draws the edges far to near. Edges with both ends off screen
// are skipped.
func RenderMesh(cv *Canvas, pts []r3.Vec, edges []Edge, cam *Camera) {
	if cv == nil || cam == nil {
		return
	}
	sw, sh := cv.Dots()
	proj := make([]projected, 0, len(edges))
	for _, e := range edges {
		x1, y1, d1, v1 := cam.Project(pts[e.A], sw, sh)
		x2, y2, d2, v2 := cam.Project(pts[e.B], sw, sh)
		if v1 || v2 {
			proj = append(proj, projected{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		cv.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}
