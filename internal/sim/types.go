package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Sample is the per-step summary recorded for a run.
type Sample struct {
	Step          int
	Time          float64
	KineticEnergy float64
	MeanHeight    float64
	MinHeight     float64
	MaxSpeed      float64
	Iterations    int
	Converged     bool
	Residual      float64
	Awake         int
}

// Valid reports whether every float field is finite.
func (s Sample) Valid() bool {
	for _, v := range []float64{s.Time, s.KineticEnergy, s.MeanHeight, s.MinHeight, s.MaxSpeed, s.Residual} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(c *cloth.Cloth, s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(c *cloth.Cloth, s Sample)
}

type Config struct {
	Dt       float64
	Duration float64

	// StopWhenAsleep ends the run once the cloth's sleep counter reaches
	// zero. The cloth itself keeps stepping normally when asleep.
	StopWhenAsleep bool

	// FrameEvery records a vertex buffer every FrameEvery steps. Zero
	// records none.
	FrameEvery int
}

// Frame is a vertex buffer snapshot in cloth.VertexStride layout.
type Frame struct {
	Time     float64
	Vertices []float32
}

type Result struct {
	Samples    []Sample
	Frames     []Frame
	Metrics    map[string]float64
	Errors     []error
	StepsTaken int
	Asleep     bool

	// Final state of the cloth.
	Vertices  []float32
	Triangles []uint32
}

// NotConverged counts the steps whose solve hit the iteration cap.
func (r *Result) NotConverged() int {
	n := 0
	for _, s := range r.Samples[min(1, len(r.Samples)):] {
		if !s.Converged {
			n++
		}
	}
	return n
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

// Measure summarizes the current state of c.
func Measure(c *cloth.Cloth) Sample {
	n := c.PointCount()
	s := Sample{
		Step:          c.Steps(),
		Time:          c.Time(),
		KineticEnergy: c.KineticEnergy(),
		MinHeight:     math.Inf(1),
		Converged:     true,
		Awake:         c.Awake(),
	}
	for i := 0; i < n; i++ {
		p := c.Position(i)
		s.MeanHeight += p.Y
		s.MinHeight = math.Min(s.MinHeight, p.Y)
		v := c.Velocity(i)
		s.MaxSpeed = math.Max(s.MaxSpeed, math.Sqrt(v.X*v.X+v.Y*v.Y+v.Z*v.Z))
	}
	s.MeanHeight /= float64(n)
	return s
}

func withStep(s Sample, r cloth.StepResult) Sample {
	s.Iterations = r.Iterations
	s.Converged = r.Converged
	s.Residual = r.Residual
	return s
}
