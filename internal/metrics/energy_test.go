package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/sim"
)

func testCloth(t *testing.T) *cloth.Cloth {
	t.Helper()
	p := cloth.DefaultParams()
	p.Width, p.Height = 4, 4
	p.Gravity = -9.8
	p.StructK, p.ShearK, p.BendK = 200, 50, 10
	p.DampSpring = 5
	p.DampAir = 1
	c, err := cloth.New(p)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestEnergyMean(t *testing.T) {
	m := NewEnergy()
	c := testCloth(t)

	for _, ke := range []float64{1, 2, 3} {
		m.Observe(c, sim.Sample{KineticEnergy: ke})
	}
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected mean 2, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestSettling(t *testing.T) {
	m := NewSettling(0.1)
	c := testCloth(t)

	m.Observe(c, sim.Sample{Time: 1, KineticEnergy: 1})
	m.Observe(c, sim.Sample{Time: 2, KineticEnergy: 0.05})
	m.Observe(c, sim.Sample{Time: 3, KineticEnergy: 0.2})
	if _, ok := m.SettledAt(); ok {
		t.Error("energy rose again, should not be settled")
	}

	m.Observe(c, sim.Sample{Time: 4, KineticEnergy: 0.01})
	m.Observe(c, sim.Sample{Time: 5, KineticEnergy: 0.02})
	at, ok := m.SettledAt()
	if !ok || at != 4 {
		t.Errorf("expected settled at 4, got %f (%v)", at, ok)
	}
	if m.Value() != 0.02 {
		t.Errorf("expected final energy 0.02, got %f", m.Value())
	}

	m.Observe(c, sim.Sample{Time: 6, KineticEnergy: 0.5})
	m.Observe(c, sim.Sample{Time: 7, KineticEnergy: 0.03})
	if at, ok := m.SettledAt(); !ok || at != 7 {
		t.Errorf("expected the latest drop at 7, got %f (%v)", at, ok)
	}
}

func TestConvergenceAndEffort(t *testing.T) {
	conv := NewConvergence()
	effort := NewSolverEffort()
	c := testCloth(t)

	if conv.Value() != 1 {
		t.Error("empty convergence should be 1")
	}

	samples := []sim.Sample{
		{Converged: true, Iterations: 4},
		{Converged: true, Iterations: 6},
		{Converged: false, Iterations: 100},
		{Converged: true, Iterations: 10},
	}
	for _, s := range samples {
		conv.Observe(c, s)
		effort.Observe(c, s)
	}

	if conv.Value() != 0.75 {
		t.Errorf("expected 0.75, got %f", conv.Value())
	}
	if effort.Value() != 30 {
		t.Errorf("expected mean 30 iterations, got %f", effort.Value())
	}
	if effort.Peak() != 100 {
		t.Errorf("expected peak 100, got %d", effort.Peak())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1)
	c := testCloth(t)

	for _, v := range []float64{0.5, 2, 0.1, 3} {
		m.Observe(c, sim.Sample{MaxSpeed: v})
	}
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 1 {
		t.Error("expected 1 after reset")
	}
}

func TestSagDuringRun(t *testing.T) {
	c := testCloth(t)
	s := sim.New(c)
	sag := NewSag()
	s.AddMetric(sag)

	result, err := s.Run(context.Background(), sim.Config{Dt: 0.016, Duration: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if result.Metrics["sag"] <= 0 {
		t.Errorf("expected positive sag, got %f", result.Metrics["sag"])
	}

	h, ok := freeHeight(c)
	if !ok {
		t.Fatal("expected free points")
	}
	drop := initialFreeHeight(c) - h
	if result.Metrics["sag"] < drop-1e-12 {
		t.Errorf("max sag %f below current drop %f", result.Metrics["sag"], drop)
	}
}

func TestSagAllPinned(t *testing.T) {
	p := cloth.DefaultParams()
	p.Width, p.Height = 2, 2
	p.Pins = cloth.Pins{BottomLeft: true, BottomRight: true, TopLeft: true, TopRight: true}
	c, err := cloth.New(p)
	if err != nil {
		t.Fatal(err)
	}

	m := NewSag()
	m.Observe(c, sim.Measure(c))
	if m.Value() != 0 {
		t.Errorf("expected no sag with every point pinned, got %f", m.Value())
	}
}

func TestDefault(t *testing.T) {
	ms := Default(cloth.DefaultParams())
	seen := map[string]bool{}
	for _, m := range ms {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}
