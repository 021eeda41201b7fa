package cloth

import (
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/linalg"
	"github.com/san-kum/clothsim/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// StepResult reports what one call to Step did.
type StepResult struct {
	Skipped       bool // dt <= 0
	Converged     bool
	Iterations    int
	Residual      float64
	KineticEnergy float64 // V·V after integration
	Awake         int
}

type Cloth struct {
	params  Params
	grid    *mesh.Grid
	springs []spring
	tris    []uint32

	x, v, n, f, dv *linalg.BigVec3
	mass           []float64

	a, dfdx, dfdv *linalg.BlockMatrix
	s             *linalg.ConstraintSet
	solver        *Solver

	rhs, dfdxv *linalg.BigVec3

	wind     r3.Vec
	windMode WindMode
	time     float64
	steps    int
	awake    int

	drag     *drag
	releases []release
}

// New builds the mesh, fixes the sparse pattern of every matrix and applies
// the initial pins in p.
func New(p Params) (*Cloth, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	g, err := mesh.Build(mesh.GridSpec{
		Width:   p.Width,
		Height:  p.Height,
		Scale:   p.Scale,
		Aspect:  p.Aspect,
		Tension: p.Tension,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	n := g.PointCount()
	c := &Cloth{
		params:   p,
		grid:     g,
		x:        linalg.NewBigVec3(n),
		v:        linalg.NewBigVec3(n),
		n:        linalg.NewBigVec3(n),
		f:        linalg.NewBigVec3(n),
		dv:       linalg.NewBigVec3(n),
		mass:     make([]float64, n),
		a:        linalg.NewBlockMatrix(n),
		dfdx:     linalg.NewBlockMatrix(n),
		dfdv:     linalg.NewBlockMatrix(n),
		s:        linalg.NewConstraintSet(n),
		solver:   NewSolver(n, p.Tolerance, p.MaxIterations, p.ResidualRefresh),
		rhs:      linalg.NewBigVec3(n),
		dfdxv:    linalg.NewBigVec3(n),
		wind:     p.Wind,
		windMode: p.WindMode,
		awake:    p.SleepCount,
	}

	for i, pos := range g.Positions {
		c.x.Set(i, r3.Add(pos, p.Offset))
		c.mass[i] = p.Mass
	}

	c.tris = make([]uint32, len(g.Triangles))
	for i, t := range g.Triangles {
		c.tris[i] = uint32(t)
	}

	c.springs = make([]spring, len(g.Springs))
	for i, ms := range g.Springs {
		sp := spring{Spring: ms, k: c.stiffness(ms.Kind)}
		sp.ab = c.a.Push(ms.A, ms.B)
		sp.ba = c.a.Push(ms.B, ms.A)
		if c.dfdx.Push(ms.A, ms.B) != sp.ab || c.dfdx.Push(ms.B, ms.A) != sp.ba ||
			c.dfdv.Push(ms.A, ms.B) != sp.ab || c.dfdv.Push(ms.B, ms.A) != sp.ba {
			panic("cloth: matrix patterns diverged")
		}
		c.springs[i] = sp
	}

	for _, i := range c.initialPins() {
		c.setPin(i, Pin)
	}
	c.computeNormals()
	return c, nil
}

func (c *Cloth) stiffness(k mesh.SpringKind) float64 {
	switch k {
	case mesh.Shear:
		return c.params.ShearK
	case mesh.Bend:
		return c.params.BendK
	default:
		return c.params.StructK
	}
}

func (c *Cloth) initialPins() []int {
	g, pins := c.grid, c.params.Pins
	var idx []int
	if pins.BottomLeft {
		idx = append(idx, g.BottomLeft())
	}
	if pins.BottomRight {
		idx = append(idx, g.BottomRight())
	}
	if pins.TopLeft {
		idx = append(idx, g.TopLeft())
	}
	if pins.TopRight {
		idx = append(idx, g.TopRight())
	}
	if pins.TopRow {
		idx = append(idx, g.Row(g.Height-1)...)
	}
	if pins.LeftColumn {
		idx = append(idx, g.Column(0)...)
	}
	return idx
}

// Step advances the cloth by dt. A dt <= 0 only applies pending pin and
// drag events. The solve is best effort: a non-converged result is still
// integrated and reported in StepResult. A non-finite solver residual
// fails the step before positions and velocities change. With Params.Debug
// set, any non-finite value left in the state after the step is an error.
func (c *Cloth) Step(dt float64) (StepResult, error) {
	c.applyReleases()
	c.applyDrag()

	if dt <= 0 || math.IsNaN(dt) {
		return StepResult{Skipped: true, Awake: c.awake, KineticEnergy: linalg.Dot(c.v, c.v)}, nil
	}

	if c.windMode == WindDynamic {
		c.wind = dynamicWind(c.time)
	}

	c.computeForces()
	c.dv.Zero()
	c.s.Filter(c.v)

	dt2 := dt * dt
	c.a.InitDiag(c.params.Mass)
	for slot := 0; slot < c.a.Size(); slot++ {
		c.a.Block(slot).Sub(c.dfdv.Block(slot).Scale(dt).Plus(c.dfdx.Block(slot).Scale(dt2)))
	}

	c.dfdx.MulVec(c.dfdxv, c.v)
	b, f, fv := c.rhs.Raw(), c.f.Raw(), c.dfdxv.Raw()
	for i := range b {
		b[i] = f[i]*dt + fv[i]*dt2
	}

	sr := c.solver.Solve(c.dv, c.a, c.rhs, c.s)
	if !finite(sr.Residual) {
		return StepResult{Iterations: sr.Iterations, Residual: sr.Residual, Awake: c.awake, KineticEnergy: linalg.Dot(c.v, c.v)},
			&StepError{Step: c.steps + 1, Time: c.time, Wrapped: fmt.Errorf("%w: solver residual", ErrNonFinite)}
	}

	linalg.AddScaled(c.v, 1, c.dv)
	linalg.AddScaled(c.x, dt, c.v)
	c.s.Filter(c.v)
	c.computeNormals()

	ke := linalg.Dot(c.v, c.v)
	if ke < c.params.SleepThreshold {
		if c.awake > 0 {
			c.awake--
		}
	} else {
		c.awake = c.params.SleepCount
	}

	c.time += dt
	c.steps++

	res := StepResult{
		Converged:     sr.Converged,
		Iterations:    sr.Iterations,
		Residual:      sr.Residual,
		KineticEnergy: ke,
		Awake:         c.awake,
	}
	if c.params.Debug {
		if err := c.CheckFinite(); err != nil {
			return res, &StepError{Step: c.steps, Time: c.time, Wrapped: err}
		}
	}
	return res, nil
}

func (c *Cloth) Params() Params         { return c.params }
func (c *Cloth) Grid() *mesh.Grid       { return c.grid }
func (c *Cloth) PointCount() int        { return c.x.Len() }
func (c *Cloth) Time() float64          { return c.time }
func (c *Cloth) Steps() int             { return c.steps }
func (c *Cloth) Awake() int             { return c.awake }
func (c *Cloth) Asleep() bool           { return c.awake <= 0 }
func (c *Cloth) Wind() r3.Vec           { return c.wind }
func (c *Cloth) WindMode() WindMode     { return c.windMode }
func (c *Cloth) KineticEnergy() float64 { return linalg.Dot(c.v, c.v) }

// SystemMatrix returns the matrix of the most recent solve. It is
// overwritten by the next Step.
func (c *Cloth) SystemMatrix() *linalg.BlockMatrix { return c.a }

func (c *Cloth) Position(i int) r3.Vec { return c.x.At(i) }
func (c *Cloth) Velocity(i int) r3.Vec { return c.v.At(i) }
func (c *Cloth) Normal(i int) r3.Vec   { return c.n.At(i) }
func (c *Cloth) Mass(i int) float64    { return c.mass[i] }

// Springs returns the springs with their rest lengths.
func (c *Cloth) Springs() []mesh.Spring {
	out := make([]mesh.Spring, len(c.springs))
	for i, s := range c.springs {
		out[i] = s.Spring
	}
	return out
}

// SpringLength returns the current endpoint distance of spring i.
func (c *Cloth) SpringLength(i int) float64 {
	s := c.springs[i]
	return r3.Norm(r3.Sub(c.x.At(s.B), c.x.At(s.A)))
}

func (c *Cloth) checkIndex(op string, i int) error {
	if i < 0 || i >= c.PointCount() {
		return &PointError{Op: op, Index: i, Count: c.PointCount(), Wrapped: ErrPointOutOfRange}
	}
	return nil
}
