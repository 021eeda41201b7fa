package cloth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WindMode selects how the wind vector evolves.
type WindMode uint8

const (
	// WindConstant keeps the vector given to SetWind.
	WindConstant WindMode = iota
	// WindDynamic sweeps the wind as (sin t, 1, cos t) over simulated time.
	WindDynamic
)

func (m WindMode) String() string {
	if m == WindDynamic {
		return "dynamic"
	}
	return "constant"
}

// ParseWindMode accepts "constant" (or "") and "dynamic".
func ParseWindMode(s string) (WindMode, error) {
	switch s {
	case "", "constant":
		return WindConstant, nil
	case "dynamic":
		return WindDynamic, nil
	}
	return WindConstant, fmt.Errorf("%w: unknown wind mode %q", ErrInvalidParams, s)
}

// Pins selects the points pinned at construction.
type Pins struct {
	BottomLeft  bool
	BottomRight bool
	TopLeft     bool
	TopRight    bool
	TopRow      bool
	LeftColumn  bool
}

// Params configures a Cloth. Float fields must be finite; Scale, Aspect,
// Tension and Mass must be positive.
type Params struct {
	Width, Height int
	Scale         float64
	Aspect        float64
	Tension       float64 // rest length multiplier
	Offset        r3.Vec // translation applied to the initial sheet

	Gravity    float64
	StructK    float64
	ShearK     float64
	BendK      float64
	DampSpring float64
	DampAir    float64
	Mass       float64

	SleepThreshold float64
	SleepCount     int

	Tolerance       float64
	MaxIterations   int
	ResidualRefresh int

	Wind     r3.Vec
	WindMode WindMode
	Pins     Pins

	// Debug scans every buffer for NaN/Inf after each step.
	Debug bool
}

const (
	DefaultTolerance       = 0.02
	DefaultMaxIterations   = 100
	DefaultResidualRefresh = 50
	DefaultTimeStep        = 0.016
)

func DefaultParams() Params {
	return Params{
		Width:           16,
		Height:          16,
		Scale:           1,
		Aspect:          1,
		Tension:         1,
		Gravity:         -1.8,
		StructK:         100000,
		ShearK:          5000,
		BendK:           1000,
		DampSpring:      10,
		DampAir:         5,
		Mass:            1,
		SleepThreshold:  0.001,
		SleepCount:      100,
		Tolerance:       DefaultTolerance,
		MaxIterations:   DefaultMaxIterations,
		ResidualRefresh: DefaultResidualRefresh,
		Pins:            Pins{TopLeft: true, TopRight: true},
	}
}

// Validate checks the ranges New relies on. Every float field must be
// finite. Grid dimensions are checked by the mesh builder.
func (p Params) Validate() error {
	if name, ok := p.firstNonFinite(); ok {
		return fmt.Errorf("%w: %s must be finite", ErrInvalidParams, name)
	}
	switch {
	case p.Scale <= 0 || p.Aspect <= 0:
		return fmt.Errorf("%w: scale and aspect must be positive", ErrInvalidParams)
	case p.Tension <= 0:
		return fmt.Errorf("%w: tension must be positive, got %g", ErrInvalidParams, p.Tension)
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidParams, p.Mass)
	case p.StructK < 0 || p.ShearK < 0 || p.BendK < 0:
		return fmt.Errorf("%w: spring constants must be non-negative", ErrInvalidParams)
	case p.DampSpring < 0 || p.DampAir < 0:
		return fmt.Errorf("%w: damping must be non-negative", ErrInvalidParams)
	case p.SleepThreshold < 0:
		return fmt.Errorf("%w: sleep threshold must be non-negative, got %g", ErrInvalidParams, p.SleepThreshold)
	case p.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must be non-negative, got %g", ErrInvalidParams, p.Tolerance)
	case p.MaxIterations < 0 || p.ResidualRefresh < 0 || p.SleepCount < 0:
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidParams)
	}
	return nil
}

func (p Params) firstNonFinite() (string, bool) {
	fields := []struct {
		name string
		v    float64
	}{
		{"scale", p.Scale}, {"aspect", p.Aspect}, {"tension", p.Tension},
		{"offset.x", p.Offset.X}, {"offset.y", p.Offset.Y}, {"offset.z", p.Offset.Z},
		{"gravity", p.Gravity},
		{"struct_k", p.StructK}, {"shear_k", p.ShearK}, {"bend_k", p.BendK},
		{"damp_spring", p.DampSpring}, {"damp_air", p.DampAir},
		{"mass", p.Mass},
		{"sleep_threshold", p.SleepThreshold}, {"tolerance", p.Tolerance},
		{"wind.x", p.Wind.X}, {"wind.y", p.Wind.Y}, {"wind.z", p.Wind.Z},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name, true
		}
	}
	return "", false
}

func (p Params) withDefaults() Params {
	if p.Tolerance == 0 {
		p.Tolerance = DefaultTolerance
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = DefaultMaxIterations
	}
	if p.ResidualRefresh == 0 {
		p.ResidualRefresh = DefaultResidualRefresh
	}
	return p
}
