package cloth_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/mesh"
)

const dt = 0.016

// softParams is a small, lightly stiff sheet hung by its four corners.
func softParams() cloth.Params {
	p := cloth.DefaultParams()
	p.Width, p.Height = 4, 4
	p.Gravity = -9.8
	p.StructK, p.ShearK, p.BendK = 200, 50, 10
	p.DampSpring = 5
	p.DampAir = 1
	p.Pins = cloth.Pins{BottomLeft: true, BottomRight: true, TopLeft: true, TopRight: true}
	return p
}

func mustNew(p cloth.Params) *cloth.Cloth {
	c, err := cloth.New(p)
	Expect(err).NotTo(HaveOccurred())
	return c
}

func interior(c *cloth.Cloth) []int {
	g := c.Grid()
	var idx []int
	for i := 1; i < g.Height-1; i++ {
		for j := 1; j < g.Width-1; j++ {
			idx = append(idx, g.Index(i, j))
		}
	}
	return idx
}

func meanY(c *cloth.Cloth, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += c.Position(i).Y
	}
	return sum / float64(len(idx))
}

func expectMassInvariant(c *cloth.Cloth) {
	nominal := c.Params().Mass
	for i := 0; i < c.PointCount(); i++ {
		if c.IsPinned(i) {
			Expect(c.Mass(i)).To(Equal(0.0), "pinned point %d", i)
		} else {
			Expect(c.Mass(i)).To(Equal(nominal), "free point %d", i)
		}
	}
}

var _ = Describe("Cloth", func() {
	Describe("construction", func() {
		It("rejects grids smaller than 2x2", func() {
			p := cloth.DefaultParams()
			p.Width = 1
			_, err := cloth.New(p)
			Expect(err).To(MatchError(cloth.ErrInvalidParams))
			Expect(err).To(MatchError(mesh.ErrInvalidGrid))
		})

		It("rejects a non-positive mass", func() {
			p := cloth.DefaultParams()
			p.Mass = 0
			_, err := cloth.New(p)
			Expect(err).To(MatchError(cloth.ErrInvalidParams))
		})

		DescribeTable("rejects non-finite and non-positive parameters",
			func(mutate func(*cloth.Params)) {
				p := cloth.DefaultParams()
				mutate(&p)
				_, err := cloth.New(p)
				Expect(err).To(MatchError(cloth.ErrInvalidParams))
			},
			Entry("NaN mass", func(p *cloth.Params) { p.Mass = math.NaN() }),
			Entry("infinite stiffness", func(p *cloth.Params) { p.StructK = math.Inf(1) }),
			Entry("NaN gravity", func(p *cloth.Params) { p.Gravity = math.NaN() }),
			Entry("infinite wind", func(p *cloth.Params) { p.Wind = r3.Vec{Z: math.Inf(-1)} }),
			Entry("NaN offset", func(p *cloth.Params) { p.Offset = r3.Vec{Y: math.NaN()} }),
			Entry("zero tension", func(p *cloth.Params) { p.Tension = 0 }),
			Entry("zero scale", func(p *cloth.Params) { p.Scale = 0 }),
		)

		It("pins the configured corners", func() {
			c := mustNew(cloth.DefaultParams())
			g := c.Grid()
			Expect(c.PinnedPoints()).To(ConsistOf(g.TopLeft(), g.TopRight()))
			Expect(c.State(g.TopLeft())).To(Equal(cloth.Pinned))
			Expect(c.State(g.BottomLeft())).To(Equal(cloth.Free))
			expectMassInvariant(c)
		})

		It("pins a whole row and column on request", func() {
			p := cloth.DefaultParams()
			p.Width, p.Height = 5, 4
			p.Pins = cloth.Pins{TopRow: true, LeftColumn: true}
			c := mustNew(p)
			Expect(c.PinnedPoints()).To(HaveLen(5 + 4 - 1))
		})

		It("starts every spring at its rest length", func() {
			c := mustNew(softParams())
			for i, s := range c.Springs() {
				Expect(c.SpringLength(i)).To(BeNumerically("~", s.Rest, 1e-12))
			}
		})

		It("applies the initial offset to every point", func() {
			p := softParams()
			p.Offset = r3.Vec{Z: -1.75}
			c := mustNew(p)
			for i := 0; i < c.PointCount(); i++ {
				Expect(c.Position(i).Z).To(Equal(-1.75))
			}
		})
	})

	Describe("pin management", func() {
		var c *cloth.Cloth

		BeforeEach(func() {
			c = mustNew(softParams())
		})

		It("rejects out of range indices", func() {
			for _, i := range []int{-1, c.PointCount(), c.PointCount() + 10} {
				_, err := c.SetPointConstraint(i, cloth.Pin)
				Expect(err).To(MatchError(cloth.ErrPointOutOfRange))
				var pe *cloth.PointError
				Expect(err).To(BeAssignableToTypeOf(pe))
			}
			Expect(c.PinnedPoints()).To(HaveLen(4))
		})

		It("toggles between pinned and free", func() {
			pinned, err := c.SetPointConstraint(5, cloth.Toggle)
			Expect(err).NotTo(HaveOccurred())
			Expect(pinned).To(BeTrue())
			Expect(c.Mass(5)).To(Equal(0.0))

			pinned, err = c.SetPointConstraint(5, cloth.Toggle)
			Expect(err).NotTo(HaveOccurred())
			Expect(pinned).To(BeFalse())
			Expect(c.Mass(5)).To(Equal(c.Params().Mass))
			expectMassInvariant(c)
		})

		It("is idempotent", func() {
			for k := 0; k < 10; k++ {
				_, _ = c.Step(dt)
			}
			_, _ = c.SetPointConstraint(5, cloth.Pin)
			before := c.PinnedPoints()
			pos := c.Position(5)

			pinned, err := c.SetPointConstraint(5, cloth.Pin)
			Expect(err).NotTo(HaveOccurred())
			Expect(pinned).To(BeTrue())
			Expect(c.PinnedPoints()).To(ConsistOf(before))
			Expect(c.Position(5)).To(Equal(pos))
			Expect(c.Velocity(5)).To(Equal(r3.Vec{}))

			_, _ = c.SetPointConstraint(6, cloth.Unpin)
			pinned, err = c.SetPointConstraint(6, cloth.Unpin)
			Expect(err).NotTo(HaveOccurred())
			Expect(pinned).To(BeFalse())
			Expect(c.PinnedPoints()).To(ConsistOf(before))
			expectMassInvariant(c)
		})

		It("zeroes the velocity of a newly pinned point", func() {
			g := c.Grid()
			i := g.Index(1, 1)
			for k := 0; k < 5; k++ {
				_, _ = c.Step(dt)
			}
			Expect(r3.Norm(c.Velocity(i))).To(BeNumerically(">", 0))
			_, _ = c.SetPointConstraint(i, cloth.Pin)
			Expect(c.Velocity(i)).To(Equal(r3.Vec{}))
		})
	})

	Describe("stepping", func() {
		It("does nothing for a non-positive dt", func() {
			c := mustNew(softParams())
			before := c.VertexBuffer()
			for _, h := range []float64{0, -dt} {
				res, err := c.Step(h)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Skipped).To(BeTrue())
			}
			Expect(c.VertexBuffer()).To(Equal(before))
			Expect(c.Time()).To(Equal(0.0))
			Expect(c.Steps()).To(Equal(0))
		})

		It("keeps pinned points fixed and motionless", func() {
			p := softParams()
			p.Wind = r3.Vec{X: 2, Z: 1}
			c := mustNew(p)
			_, _ = c.SetPointConstraint(c.Grid().Index(2, 1), cloth.Pin)

			pinned := c.PinnedPoints()
			start := map[int]r3.Vec{}
			for _, i := range pinned {
				start[i] = c.Position(i)
			}
			for k := 0; k < 50; k++ {
				_, err := c.Step(dt)
				Expect(err).NotTo(HaveOccurred())
				for _, i := range pinned {
					Expect(c.Velocity(i)).To(Equal(r3.Vec{}))
					Expect(c.Position(i)).To(Equal(start[i]))
				}
				expectMassInvariant(c)
			}
		})

		It("sags under gravity and then settles", func() {
			c := mustNew(softParams())
			idx := interior(c)

			prev := meanY(c, idx)
			for k := 0; k < 5; k++ {
				_, err := c.Step(dt)
				Expect(err).NotTo(HaveOccurred())
				y := meanY(c, idx)
				Expect(y).To(BeNumerically("<", prev))
				prev = y
			}

			var last []float32
			for k := 5; k < 1000; k++ {
				last = c.VertexBuffer()
				_, err := c.Step(dt)
				Expect(err).NotTo(HaveOccurred())
			}
			cur := c.VertexBuffer()
			maxDelta := 0.0
			for i := 0; i < c.PointCount(); i++ {
				o := i * cloth.VertexStride
				for k := 0; k < 3; k++ {
					maxDelta = math.Max(maxDelta, math.Abs(float64(cur[o+k]-last[o+k])))
				}
			}
			Expect(maxDelta).To(BeNumerically("<", 1e-4))
			Expect(meanY(c, idx)).To(BeNumerically("<", 0))
		})

		It("loses kinetic energy once the transient has passed", func() {
			c := mustNew(softParams())
			window := func(n int) float64 {
				m := 0.0
				for k := 0; k < n; k++ {
					res, err := c.Step(dt)
					Expect(err).NotTo(HaveOccurred())
					m = math.Max(m, res.KineticEnergy)
				}
				return m
			}

			peak := window(200)
			early := window(200)
			_ = window(400)
			late := window(200)

			Expect(peak).To(BeNumerically(">", 0))
			Expect(late).To(BeNumerically("<", early))
			Expect(late).To(BeNumerically("<", peak*1e-3))
			Expect(late).To(BeNumerically("<", c.Params().SleepThreshold))
		})

		It("counts down to sleep once at rest", func() {
			p := softParams()
			p.SleepCount = 20
			p.SleepThreshold = 1e-3
			c := mustNew(p)
			Expect(c.Awake()).To(Equal(20))

			res, _ := c.Step(dt)
			Expect(res.Awake).To(BeNumerically("<=", 20))
			for k := 0; k < 2000 && !c.Asleep(); k++ {
				res, _ = c.Step(dt)
			}
			Expect(c.Asleep()).To(BeTrue())
			Expect(res.Awake).To(Equal(0))

			_, _ = c.Step(dt)
			Expect(c.Awake()).To(Equal(0))

			c.SetWind(r3.Vec{Z: 20})
			_, _ = c.Step(dt)
			_, _ = c.Step(dt)
			Expect(c.Awake()).To(Equal(20))
		})

		It("converges on a single free point", func() {
			p := softParams()
			p.Width, p.Height = 2, 2
			p.Pins = cloth.Pins{BottomLeft: true, TopLeft: true, TopRight: true}
			c := mustNew(p)
			Expect(c.PinnedPoints()).To(HaveLen(3))

			for k := 0; k < 10; k++ {
				res, err := c.Step(dt)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Converged).To(BeTrue())
				Expect(res.Iterations).To(BeNumerically("<=", 3))
			}
		})

		It("stays finite with the default stiff constants", func() {
			p := cloth.DefaultParams()
			p.Width, p.Height = 8, 8
			p.Debug = true
			c := mustNew(p)
			for k := 0; k < 100; k++ {
				_, err := c.Step(cloth.DefaultTimeStep)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(c.CheckFinite()).To(Succeed())
		})
	})

	Describe("wind", func() {
		It("pushes a hanging sheet along the wind", func() {
			p := softParams()
			p.Pins = cloth.Pins{TopLeft: true, TopRight: true}
			p.DampAir = 5
			c := mustNew(p)

			c.SetWind(r3.Vec{Z: 5})
			for k := 0; k < 100; k++ {
				_, _ = c.Step(dt)
			}
			Expect(c.Position(c.Grid().Index(0, 1)).Z).To(BeNumerically(">", 0))
		})

		It("follows simulated time in dynamic mode", func() {
			p := softParams()
			p.WindMode = cloth.WindDynamic
			c := mustNew(p)
			_, _ = c.Step(dt)
			Expect(c.Wind()).To(Equal(r3.Vec{X: 0, Y: 1, Z: 1}))
			_, _ = c.Step(dt)
			Expect(c.Wind().X).To(BeNumerically("~", math.Sin(dt), 1e-12))
			Expect(c.Wind().Z).To(BeNumerically("~", math.Cos(dt), 1e-12))
		})

		It("fails the step without moving anything when the solve goes non-finite", func() {
			c := mustNew(softParams())
			free := interior(c)[0]
			before := c.Position(free)

			c.SetWind(r3.Vec{X: math.NaN()})
			res, err := c.Step(dt)
			Expect(err).To(MatchError(cloth.ErrNonFinite))
			var stepErr *cloth.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(res.Converged).To(BeFalse())
			Expect(c.Position(free)).To(Equal(before))
			Expect(c.Steps()).To(Equal(0))
		})

		It("parses wind modes", func() {
			m, err := cloth.ParseWindMode("dynamic")
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(cloth.WindDynamic))
			Expect(m.String()).To(Equal("dynamic"))
			_, err = cloth.ParseWindMode("gusty")
			Expect(err).To(MatchError(cloth.ErrInvalidParams))
		})
	})

	Describe("dragging", func() {
		var c *cloth.Cloth

		BeforeEach(func() {
			p := softParams()
			p.Offset = r3.Vec{Z: -2}
			c = mustNew(p)
		})

		It("holds the dragged point at its target", func() {
			i := c.Grid().Index(1, 2)
			target := r3.Vec{X: 0.3, Y: 1.5, Z: -1.5}
			Expect(c.SetDraggedPoint(i, target)).To(Succeed())
			Expect(c.State(i)).To(Equal(cloth.Dragged))
			Expect(c.IsPinned(i)).To(BeTrue())
			Expect(c.Mass(i)).To(Equal(0.0))

			for k := 0; k < 20; k++ {
				_, _ = c.Step(dt)
				Expect(c.Position(i)).To(Equal(target))
				Expect(c.Velocity(i)).To(Equal(r3.Vec{}))
			}

			idx, got, ok := c.DraggedPoint()
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(i))
			Expect(got).To(Equal(target))
		})

		It("allows one dragged point at a time", func() {
			Expect(c.SetDraggedPoint(5, r3.Vec{})).To(Succeed())
			Expect(c.SetDraggedPoint(6, r3.Vec{})).To(MatchError(cloth.ErrDragInProgress))
			Expect(c.SetDraggedPoint(5, r3.Vec{X: 1})).To(Succeed())
			Expect(c.ReleaseDraggedPoint(6)).To(MatchError(cloth.ErrNotDragged))
			Expect(c.SetDraggedPoint(-1, r3.Vec{})).To(MatchError(cloth.ErrPointOutOfRange))
		})

		It("restores the pin state on release", func() {
			g := c.Grid()
			free, corner := g.Index(1, 1), g.TopLeft()

			Expect(c.SetDraggedPoint(free, r3.Vec{Z: -2})).To(Succeed())
			Expect(c.ReleaseDraggedPoint(free)).To(Succeed())
			Expect(c.State(free)).To(Equal(cloth.Free))

			Expect(c.SetDraggedPoint(corner, r3.Vec{Y: 2, Z: -2})).To(Succeed())
			Expect(c.ReleaseDraggedPoint(corner)).To(Succeed())
			Expect(c.State(corner)).To(Equal(cloth.Pinned))
			expectMassInvariant(c)
		})

		It("applies pin requests to the state restored on release", func() {
			i := c.Grid().Index(1, 1)
			Expect(c.SetDraggedPoint(i, r3.Vec{Z: -2})).To(Succeed())
			pinned, err := c.SetPointConstraint(i, cloth.Pin)
			Expect(err).NotTo(HaveOccurred())
			Expect(pinned).To(BeTrue())
			Expect(c.State(i)).To(Equal(cloth.Dragged))
			Expect(c.ReleaseDraggedPoint(i)).To(Succeed())
			Expect(c.State(i)).To(Equal(cloth.Pinned))
		})

		It("picks the point nearest the view ray", func() {
			g := c.Grid()
			want := g.Index(2, 1)
			i, err := c.Pick(c.Position(want))
			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(want))

			_, err = c.Pick(r3.Vec{})
			Expect(err).To(MatchError(cloth.ErrDegenerateRay))
		})

		It("drags a point onto the view ray", func() {
			i := c.Grid().Index(1, 1)
			dir := r3.Vec{X: 0.1, Y: 0.2, Z: -1}
			Expect(c.DragAlongRay(i, dir)).To(Succeed())
			p := c.Position(i)
			Expect(r3.Norm(r3.Cross(p, dir))).To(BeNumerically("~", 0, 1e-12))
			Expect(c.DragAlongRay(i, r3.Vec{})).To(MatchError(cloth.ErrDegenerateRay))
		})
	})

	Describe("release schedule", func() {
		It("unpins each stage once its time is reached", func() {
			p := softParams()
			p.Pins = cloth.Pins{TopRow: true}
			c := mustNew(p)
			g := c.Grid()
			top := g.Row(g.Height - 1)

			Expect(c.ScheduleRelease(0.1, top[0], top[3])).To(Succeed())
			Expect(c.ScheduleRelease(0.05, top[1])).To(Succeed())
			Expect(c.ScheduleRelease(1, 999)).To(MatchError(cloth.ErrPointOutOfRange))
			Expect(c.PendingReleases()).To(Equal(2))

			for c.Time() < 0.06 {
				_, _ = c.Step(dt)
			}
			_, _ = c.Step(dt)
			Expect(c.IsPinned(top[1])).To(BeFalse())
			Expect(c.IsPinned(top[0])).To(BeTrue())

			for c.Time() < 0.11 {
				_, _ = c.Step(dt)
			}
			_, _ = c.Step(dt)
			Expect(c.IsPinned(top[0])).To(BeFalse())
			Expect(c.IsPinned(top[3])).To(BeFalse())
			Expect(c.IsPinned(top[2])).To(BeTrue())
			Expect(c.PendingReleases()).To(Equal(0))

			_, _ = c.SetPointConstraint(top[0], cloth.Pin)
			_, _ = c.Step(dt)
			Expect(c.IsPinned(top[0])).To(BeTrue())
			expectMassInvariant(c)
		})
	})

	Describe("output", func() {
		It("writes position, normal and uv per point", func() {
			c := mustNew(softParams())
			for k := 0; k < 10; k++ {
				_, _ = c.Step(dt)
			}
			buf := c.VertexBuffer()
			Expect(buf).To(HaveLen(c.PointCount() * cloth.VertexStride))
			uvs := c.Grid().UVs
			for i := 0; i < c.PointCount(); i++ {
				o := i * cloth.VertexStride
				p, n := c.Position(i), c.Normal(i)
				Expect(buf[o : o+3]).To(Equal([]float32{float32(p.X), float32(p.Y), float32(p.Z)}))
				Expect(buf[o+3 : o+6]).To(Equal([]float32{float32(n.X), float32(n.Y), float32(n.Z)}))
				Expect(buf[o+6 : o+8]).To(Equal([]float32{float32(uvs[i][0]), float32(uvs[i][1])}))
			}
		})

		It("rejects a short buffer", func() {
			c := mustNew(softParams())
			err := c.PopulateVertexBuffer(make([]float32, 8))
			Expect(err).To(MatchError(cloth.ErrBufferTooSmall))
		})

		It("exposes a fixed triangle list", func() {
			c := mustNew(softParams())
			tris := c.TriangleIndices()
			Expect(tris).To(HaveLen(3 * 3 * 6))
			tris[0] = 99
			Expect(c.TriangleIndices()[0]).NotTo(Equal(uint32(99)))
		})

		It("produces unit normals for a flat sheet", func() {
			c := mustNew(softParams())
			for i := 0; i < c.PointCount(); i++ {
				n := c.Normal(i)
				Expect(n.X).To(BeZero())
				Expect(n.Y).To(BeZero())
				Expect(n.Z).To(BeNumerically("~", 1, 1e-15))
			}
		})
	})
})
