package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

type Simulator struct {
	cloth     *cloth.Cloth
	metrics   []Metric
	observers []Observer
}

func New(c *cloth.Cloth) *Simulator {
	return &Simulator{
		cloth:     c,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Cloth() *cloth.Cloth    { return s.cloth }

// Steps returns how many fixed steps of cfg.Dt cover cfg.Duration.
func Steps(cfg Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := Steps(cfg)
	result := &Result{
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	c := s.cloth
	result.Samples = append(result.Samples, Measure(c))
	if cfg.FrameEvery > 0 {
		result.Frames = append(result.Frames, Frame{Time: c.Time(), Vertices: c.VertexBuffer()})
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		res, err := c.Step(cfg.Dt)
		sample := withStep(Measure(c), res)
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		if !sample.Valid() {
			result.Errors = append(result.Errors, SimError{Time: sample.Time, Step: sample.Step, Message: "invalid state (NaN/Inf)"})
			break
		}

		for _, m := range s.metrics {
			m.Observe(c, sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(c, sample)
		}

		result.StepsTaken++
		result.Samples = append(result.Samples, sample)
		if cfg.FrameEvery > 0 && result.StepsTaken%cfg.FrameEvery == 0 {
			result.Frames = append(result.Frames, Frame{Time: c.Time(), Vertices: c.VertexBuffer()})
		}

		if cfg.StopWhenAsleep && c.Asleep() {
			result.Asleep = true
			break
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Vertices = s.cloth.VertexBuffer()
	result.Triangles = s.cloth.TriangleIndices()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.FrameEvery < 0 {
		return fmt.Errorf("frame interval must be non-negative, got %d", cfg.FrameEvery)
	}
	return nil
}

// RunWithCallback steps until cfg.Duration or until callback returns
// false. The vertex buffer passed to callback is reused after it returns.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample, []float32) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	c := s.cloth
	frames := NewFramePool(c.PointCount())
	end := c.Time() + cfg.Duration

	for c.Time() < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := c.Step(cfg.Dt)
		if err != nil {
			return err
		}
		sample := withStep(Measure(c), res)
		if !sample.Valid() {
			return fmt.Errorf("invalid state at t=%.4f", sample.Time)
		}

		buf, err := frames.Capture(c)
		if err != nil {
			return err
		}
		keep := callback(sample, buf)
		frames.Put(buf)
		if !keep {
			return nil
		}
		if cfg.StopWhenAsleep && c.Asleep() {
			return nil
		}
	}

	return nil
}
