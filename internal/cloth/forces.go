package cloth

import (
	"math"

	"github.com/san-kum/clothsim/internal/linalg"
	"github.com/san-kum/clothsim/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	lengthEpsilon = 1e-37
	normalEpsilon = 1e-30
)

// spring is a mesh spring bound to its stiffness and to the two
// off-diagonal slots it owns in A, dFdX and dFdV.
type spring struct {
	mesh.Spring
	k      float64
	ab, ba int
}

// computeNormals sets every vertex normal to the normalized sum of the
// face normals around it. Points with a vanishing sum get a zero normal.
func (c *Cloth) computeNormals() {
	c.n.Zero()
	tris := c.grid.Triangles
	for i := 0; i < len(tris); i += 3 {
		i0, i1, i2 := tris[i], tris[i+1], tris[i+2]
		p0, p1, p2 := c.x.At(i0), c.x.At(i1), c.x.At(i2)
		fn := r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p1))
		c.n.AddAt(i0, fn)
		c.n.AddAt(i1, fn)
		c.n.AddAt(i2, fn)
	}
	for i := 0; i < c.n.Len(); i++ {
		nv := c.n.At(i)
		l := r3.Norm(nv)
		if l < normalEpsilon {
			c.n.Set(i, r3.Vec{})
			continue
		}
		c.n.Set(i, r3.Scale(1/l, nv))
	}
}

// computeForces fills F, dFdX and dFdV for the current state.
func (c *Cloth) computeForces() {
	c.computeNormals()
	c.dfdx.Zero()
	c.dfdv.Zero()

	c.f.Fill(r3.Vec{Y: c.params.Gravity})
	for i := 0; i < c.f.Len(); i++ {
		nv := c.n.At(i)
		rel := r3.Sub(c.v.At(i), c.wind)
		c.f.AddAt(i, r3.Scale(-c.params.DampAir*r3.Dot(rel, nv), nv))
	}

	for i := range c.springs {
		c.accumulateSpring(&c.springs[i])
	}
}

func (c *Cloth) accumulateSpring(s *spring) {
	damp := c.params.DampSpring

	e := r3.Sub(c.x.At(s.B), c.x.At(s.A))
	length := r3.Norm(e)
	il := 1 / (length + lengthEpsilon)
	dir := r3.Scale(il, e)

	vel := r3.Sub(c.v.At(s.B), c.v.At(s.A))
	velDotDir := r3.Dot(vel, dir)

	fa := s.k*(length-s.Rest) + damp*velDotDir
	f := r3.Scale(fa, dir)
	c.f.AddAt(s.A, f)
	c.f.AddAt(s.B, r3.Scale(-1, f))

	rl := math.Min(s.Rest*il, 1)
	id := linalg.Identity()
	dd := linalg.Outer(dir)
	perp := id.Minus(dd)

	// Stiffness part blends the transverse projector (scaled by rest/length)
	// with the identity; the damping part is transverse only.
	jx := perp.Scale(rl).Minus(id).Scale(-s.k)
	jx.Add(perp.Scale(damp * velDotDir / math.Max(length, s.Rest)))
	jv := dd.Scale(damp)

	scatter(c.dfdx, s, jx)
	scatter(c.dfdv, s, jv)
}

// scatter accumulates j into the four blocks coupling s.A and s.B: minus on
// the diagonal, plus off the diagonal.
func scatter(m *linalg.BlockMatrix, s *spring, j linalg.Mat3) {
	m.Block(s.A).Sub(j)
	m.Block(s.B).Sub(j)
	m.Block(s.ab).Add(j)
	m.Block(s.ba).Add(j)
}
