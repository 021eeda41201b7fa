package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

var sweepParams = map[string]func(*config.Config, float64){
	"struct_k":    func(c *config.Config, v float64) { c.Physics.StructK = v },
	"shear_k":     func(c *config.Config, v float64) { c.Physics.ShearK = v },
	"bend_k":      func(c *config.Config, v float64) { c.Physics.BendK = v },
	"damp_spring": func(c *config.Config, v float64) { c.Physics.DampSpring = v },
	"damp_air":    func(c *config.Config, v float64) { c.Physics.DampAir = v },
	"gravity":     func(c *config.Config, v float64) { c.Physics.Gravity = v },
	"mass":        func(c *config.Config, v float64) { c.Physics.Mass = v },
	"tension":     func(c *config.Config, v float64) { c.Grid.Tension = v },
}

// SweepParams lists the parameter names ParameterSweep accepts.
func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for k := range sweepParams {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SweepPoint is the outcome of one run of a sweep.
type SweepPoint struct {
	Param       float64
	FinalHeight float64
	MinHeight   float64
	Sag         float64
	Energy      float64
	Convergence float64
	Iterations  float64
}

// Linspace returns n evenly spaced values from lo to hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// ParameterSweep runs base once per value of param, in parallel, and
// reports the final shape of each run.
func ParameterSweep(ctx context.Context, base *config.Config, param string, values []float64, workers int) ([]SweepPoint, error) {
	set, ok := sweepParams[param]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown sweep parameter %q (have %s)", param, strings.Join(SweepParams(), ", "))
	}

	variants := make([]sim.Variant, len(values))
	for i, v := range values {
		cfg := base.Clone()
		set(cfg, v)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", param, v, err)
		}
		variants[i] = sim.Variant{
			Name:  fmt.Sprintf("%s=%g", param, v),
			Build: cfg.Build,
		}
	}

	sw := sim.NewSweep(workers, variants...)
	sw.Metrics = func() []sim.Metric {
		return []sim.Metric{metrics.NewSag(), metrics.NewEnergy(), metrics.NewConvergence(), metrics.NewSolverEffort()}
	}

	results, err := sw.Run(ctx, sim.Config{Dt: base.Dt, Duration: base.Duration})
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(results))
	for i, r := range results {
		last := r.Samples[len(r.Samples)-1]
		points[i] = SweepPoint{
			Param:       values[i],
			FinalHeight: last.MeanHeight,
			MinHeight:   last.MinHeight,
			Sag:         r.Metrics["sag"],
			Energy:      r.Metrics["energy"],
			Convergence: r.Metrics["convergence"],
			Iterations:  r.Metrics["cg_iterations"],
		}
	}
	return points, nil
}

// SweepToASCII plots the final mean height against the swept value.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	pts := make([]Point, len(data))
	for i, p := range data {
		pts[i] = Point{X: float64(i), Y: p.FinalHeight}
	}
	b := padded(pts)

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	for i, p := range data {
		col := min(width-1, i*width/len(data))
		row := height - 1 - int((p.FinalHeight-b.minY)/(b.maxY-b.minY)*float64(height-1))
		if row >= 0 && row < height {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
