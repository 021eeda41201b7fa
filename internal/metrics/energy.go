package metrics

import (
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

// Energy is the mean kinetic energy V·V over the run.
type Energy struct {
	name    string
	samples int
	total   float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(c *cloth.Cloth, s sim.Sample) {
	e.total += s.KineticEnergy
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// Settling reports the last observed kinetic energy and the time at which
// it last dropped below threshold and stayed there. A rise above the
// threshold clears the settled state.
type Settling struct {
	name      string
	threshold float64
	last      float64
	settledAt float64
	settled   bool
}

func NewSettling(threshold float64) *Settling {
	return &Settling{
		name:      "final_energy",
		threshold: threshold,
	}
}

func (s *Settling) Name() string { return s.name }

func (s *Settling) Observe(c *cloth.Cloth, sm sim.Sample) {
	s.last = sm.KineticEnergy
	if sm.KineticEnergy < s.threshold {
		if !s.settled {
			s.settled = true
			s.settledAt = sm.Time
		}
	} else {
		s.settled = false
	}
}

func (s *Settling) Value() float64 { return s.last }

// SettledAt returns when the energy last dropped below the threshold and
// stayed there, or false if it is above it now.
func (s *Settling) SettledAt() (float64, bool) { return s.settledAt, s.settled }

func (s *Settling) Reset() {
	s.last = 0
	s.settledAt = 0
	s.settled = false
}
