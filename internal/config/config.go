package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/clothsim/internal/cloth"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = cloth.DefaultTimeStep
	DefaultDuration = 10.0
	DefaultSize     = 16
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Dt       float64         `yaml:"dt"`
	Duration float64         `yaml:"duration"`
	Grid     GridConfig      `yaml:"grid"`
	Physics  PhysicsConfig   `yaml:"physics"`
	Solver   SolverConfig    `yaml:"solver"`
	Wind     WindConfig      `yaml:"wind"`
	Pins     PinConfig       `yaml:"pins"`
	Releases []ReleaseConfig `yaml:"releases,omitempty"`
	Debug    bool            `yaml:"debug"`
}

type GridConfig struct {
	Width   int        `yaml:"width"`
	Height  int        `yaml:"height"`
	Scale   float64    `yaml:"scale"`
	Aspect  float64    `yaml:"aspect"`
	Tension float64    `yaml:"tension"`
	Offset  [3]float64 `yaml:"offset"`
}

type PhysicsConfig struct {
	Gravity        float64 `yaml:"gravity"`
	StructK        float64 `yaml:"struct_k"`
	ShearK         float64 `yaml:"shear_k"`
	BendK          float64 `yaml:"bend_k"`
	DampSpring     float64 `yaml:"damp_spring"`
	DampAir        float64 `yaml:"damp_air"`
	Mass           float64 `yaml:"mass"`
	SleepThreshold float64 `yaml:"sleep_threshold"`
	SleepCount     int     `yaml:"sleep_count"`
}

type SolverConfig struct {
	Tolerance       float64 `yaml:"tolerance"`
	MaxIterations   int     `yaml:"max_iterations"`
	ResidualRefresh int     `yaml:"residual_refresh"`
}

type WindConfig struct {
	Mode   string     `yaml:"mode"`
	Vector [3]float64 `yaml:"vector"`
}

type PinConfig struct {
	BottomLeft  bool `yaml:"bottom_left"`
	BottomRight bool `yaml:"bottom_right"`
	TopLeft     bool `yaml:"top_left"`
	TopRight    bool `yaml:"top_right"`
	TopRow      bool `yaml:"top_row"`
	LeftColumn  bool `yaml:"left_column"`
}

// ReleaseConfig unpins Points once simulated time reaches At. Points are
// flat grid indices.
type ReleaseConfig struct {
	At     float64 `yaml:"at"`
	Points []int   `yaml:"points"`
}

func DefaultConfig() *Config {
	p := cloth.DefaultParams()
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Grid: GridConfig{
			Width:   p.Width,
			Height:  p.Height,
			Scale:   p.Scale,
			Aspect:  p.Aspect,
			Tension: p.Tension,
		},
		Physics: PhysicsConfig{
			Gravity:        p.Gravity,
			StructK:        p.StructK,
			ShearK:         p.ShearK,
			BendK:          p.BendK,
			DampSpring:     p.DampSpring,
			DampAir:        p.DampAir,
			Mass:           p.Mass,
			SleepThreshold: p.SleepThreshold,
			SleepCount:     p.SleepCount,
		},
		Solver: SolverConfig{
			Tolerance:       p.Tolerance,
			MaxIterations:   p.MaxIterations,
			ResidualRefresh: p.ResidualRefresh,
		},
		Wind: WindConfig{Mode: p.WindMode.String()},
		Pins: PinConfig{TopLeft: true, TopRight: true},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings and everything cloth.New would reject.
func (c *Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 1) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 1) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if c.Grid.Width < 2 || c.Grid.Height < 2 {
		return fmt.Errorf("%w: grid must be at least 2x2, got %dx%d", ErrInvalidConfig, c.Grid.Width, c.Grid.Height)
	}
	n := c.Grid.Width * c.Grid.Height
	for _, r := range c.Releases {
		for _, i := range r.Points {
			if i < 0 || i >= n {
				return fmt.Errorf("%w: release point %d outside grid of %d", ErrInvalidConfig, i, n)
			}
		}
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the file layout into cloth parameters.
func (c *Config) Params() (cloth.Params, error) {
	mode, err := cloth.ParseWindMode(c.Wind.Mode)
	if err != nil {
		return cloth.Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cloth.Params{
		Width:           c.Grid.Width,
		Height:          c.Grid.Height,
		Scale:           c.Grid.Scale,
		Aspect:          c.Grid.Aspect,
		Tension:         c.Grid.Tension,
		Offset:          vec(c.Grid.Offset),
		Gravity:         c.Physics.Gravity,
		StructK:         c.Physics.StructK,
		ShearK:          c.Physics.ShearK,
		BendK:           c.Physics.BendK,
		DampSpring:      c.Physics.DampSpring,
		DampAir:         c.Physics.DampAir,
		Mass:            c.Physics.Mass,
		SleepThreshold:  c.Physics.SleepThreshold,
		SleepCount:      c.Physics.SleepCount,
		Tolerance:       c.Solver.Tolerance,
		MaxIterations:   c.Solver.MaxIterations,
		ResidualRefresh: c.Solver.ResidualRefresh,
		Wind:            vec(c.Wind.Vector),
		WindMode:        mode,
		Pins: cloth.Pins{
			BottomLeft:  c.Pins.BottomLeft,
			BottomRight: c.Pins.BottomRight,
			TopLeft:     c.Pins.TopLeft,
			TopRight:    c.Pins.TopRight,
			TopRow:      c.Pins.TopRow,
			LeftColumn:  c.Pins.LeftColumn,
		},
		Debug: c.Debug,
	}, nil
}

// Build creates the cloth and schedules its releases.
func (c *Config) Build() (*cloth.Cloth, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	cl, err := cloth.New(p)
	if err != nil {
		return nil, err
	}
	for _, r := range c.Releases {
		if err := cl.ScheduleRelease(r.At, r.Points...); err != nil {
			return nil, err
		}
	}
	return cl, nil
}

// Clone returns a deep copy, so presets can be edited by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Releases = make([]ReleaseConfig, len(c.Releases))
	for i, r := range c.Releases {
		out.Releases[i] = ReleaseConfig{At: r.At, Points: append([]int(nil), r.Points...)}
	}
	return &out
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
