package metrics

import (
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

// Convergence is the fraction of steps whose solve met its tolerance.
type Convergence struct {
	name      string
	converged int
	samples   int
}

func NewConvergence() *Convergence {
	return &Convergence{name: "convergence"}
}

func (m *Convergence) Name() string { return m.name }

func (m *Convergence) Observe(c *cloth.Cloth, s sim.Sample) {
	if s.Converged {
		m.converged++
	}
	m.samples++
}

func (m *Convergence) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return float64(m.converged) / float64(m.samples)
}

func (m *Convergence) Reset() {
	m.converged = 0
	m.samples = 0
}

// SolverEffort is the mean number of CG iterations per step.
type SolverEffort struct {
	name    string
	sum     int
	peak    int
	samples int
}

func NewSolverEffort() *SolverEffort {
	return &SolverEffort{name: "cg_iterations"}
}

func (m *SolverEffort) Name() string { return m.name }

func (m *SolverEffort) Observe(c *cloth.Cloth, s sim.Sample) {
	m.sum += s.Iterations
	m.peak = max(m.peak, s.Iterations)
	m.samples++
}

func (m *SolverEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.sum) / float64(m.samples)
}

func (m *SolverEffort) Peak() int { return m.peak }

func (m *SolverEffort) Reset() {
	m.sum = 0
	m.peak = 0
	m.samples = 0
}
