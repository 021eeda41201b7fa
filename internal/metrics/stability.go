package metrics

import (
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

// Stability is the fraction of steps in which no point moved faster than
// threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(c *cloth.Cloth, sm sim.Sample) {
	s.samples++
	if sm.MaxSpeed > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default returns the metric set the CLI attaches to every run.
func Default(p cloth.Params) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewSettling(p.SleepThreshold),
		NewSag(),
		NewConvergence(),
		NewSolverEffort(),
		NewStability(50),
	}
}
