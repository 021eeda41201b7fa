package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is one run of a scenario. It starts from Config (a path
// relative to the scenario file) or Preset, or the defaults when both are
// empty. Zero Dt and Duration keep the base values.
type ScenarioStep struct {
	Preset         string             `yaml:"preset"`
	Config         string             `yaml:"config"`
	Dt             float64            `yaml:"dt"`
	Duration       float64            `yaml:"duration"`
	Wind           *config.WindConfig `yaml:"wind"`
	StopWhenAsleep bool               `yaml:"stop_when_asleep"`
	SaveAs         string             `yaml:"save_as"`
}

// Outcome is the result of one scenario step. RunID is empty when the
// step was not saved.
type Outcome struct {
	Step   int
	Name   string
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

func (s *Scenario) resolve(step ScenarioStep) (*config.Config, string, error) {
	cfg, name := config.DefaultConfig(), "default"
	switch {
	case step.Config != "":
		path := step.Config
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
		name = filepath.Base(path[:len(path)-len(filepath.Ext(path))])
	case step.Preset != "":
		if cfg = config.GetPreset(step.Preset); cfg == nil {
			return nil, "", fmt.Errorf("unknown preset %q", step.Preset)
		}
		name = step.Preset
	}

	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if step.Duration > 0 {
		cfg.Duration = step.Duration
	}
	if step.Wind != nil {
		cfg.Wind = *step.Wind
	}
	if step.SaveAs != "" {
		name = step.SaveAs
	}
	return cfg, name, cfg.Validate()
}

// RunScenario executes all steps in order. Steps with SaveAs set are
// written to st when it is not nil.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]Outcome, error) {
	results := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, name, err := scenario.resolve(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		slog.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", name)

		c, err := cfg.Build()
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		s := sim.New(c)
		for _, m := range metrics.Default(c.Params()) {
			s.AddMetric(m)
		}

		result, err := s.Run(ctx, sim.Config{
			Dt:             cfg.Dt,
			Duration:       cfg.Duration,
			StopWhenAsleep: step.StopWhenAsleep,
		})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := Outcome{Step: i + 1, Name: name, Result: result}
		if st != nil && step.SaveAs != "" {
			if out.RunID, err = st.Save(name, cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, out)
	}

	return results, nil
}

// MonteCarloConfig runs Base under random constant winds whose components
// are drawn uniformly from [-WindScale, WindScale].
type MonteCarloConfig struct {
	Base      *config.Config
	WindScale float64
	NumTrials int
	Seed      int64
	Workers   int

	// MaxSpeed is the point speed above which a trial counts as unstable.
	MaxSpeed float64
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID     int
	Wind        [3]float64
	Stable      bool
	Convergence float64
	FinalHeight float64
}

// RunMonteCarlo runs the trials in parallel. A trial is stable when every
// step finished, every sample is finite and no point exceeded MaxSpeed.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("automation: need a base config and at least one trial")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	maxSpeed := cfg.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = 50
	}

	winds := make([][3]float64, cfg.NumTrials)
	variants := make([]sim.Variant, cfg.NumTrials)
	for trial := range variants {
		for k := range winds[trial] {
			winds[trial][k] = (rng.Float64() - 0.5) * 2 * cfg.WindScale
		}
		trialCfg := cfg.Base.Clone()
		trialCfg.Wind = config.WindConfig{Mode: "constant", Vector: winds[trial]}
		variants[trial] = sim.Variant{
			Name:  fmt.Sprintf("trial-%d", trial),
			Build: trialCfg.Build,
		}
	}

	sw := sim.NewSweep(cfg.Workers, variants...)
	sw.Metrics = func() []sim.Metric {
		return []sim.Metric{metrics.NewStability(maxSpeed), metrics.NewConvergence()}
	}

	runs, err := sw.Run(ctx, sim.Config{Dt: cfg.Base.Dt, Duration: cfg.Base.Duration})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, r := range runs {
		last := r.Samples[len(r.Samples)-1]
		results[trial] = MonteCarloResult{
			TrialID:     trial,
			Wind:        winds[trial],
			Stable:      len(r.Errors) == 0 && last.Valid() && r.Metrics["stability"] == 1,
			Convergence: r.Metrics["convergence"],
			FinalHeight: last.MeanHeight,
		}
	}
	slog.Debug("monte carlo finished", "trials", len(results), "seed", seed)

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
