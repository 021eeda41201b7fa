package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

// Sag is the largest drop of the mean height of the free points below
// their height at the first observation.
type Sag struct {
	name    string
	initial float64
	maxDrop float64
	started bool
}

func NewSag() *Sag {
	return &Sag{name: "sag"}
}

func (s *Sag) Name() string { return s.name }

func (s *Sag) Observe(c *cloth.Cloth, sm sim.Sample) {
	h, ok := freeHeight(c)
	if !ok {
		return
	}
	if !s.started {
		s.initial = initialFreeHeight(c)
		s.started = true
	}
	s.maxDrop = math.Max(s.maxDrop, s.initial-h)
}

func (s *Sag) Value() float64 { return s.maxDrop }

func (s *Sag) Reset() {
	s.initial = 0
	s.maxDrop = 0
	s.started = false
}

func freeHeight(c *cloth.Cloth) (float64, bool) {
	sum, n := 0.0, 0
	for i := 0; i < c.PointCount(); i++ {
		if c.IsPinned(i) {
			continue
		}
		sum += c.Position(i).Y
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// initialFreeHeight uses the undeformed grid, so the first observation
// after a step still measures the drop from rest.
func initialFreeHeight(c *cloth.Cloth) float64 {
	off := c.Params().Offset.Y
	sum, n := 0.0, 0
	for i, p := range c.Grid().Positions {
		if c.IsPinned(i) {
			continue
		}
		sum += p.Y + off
		n++
	}
	return sum / float64(n)
}
