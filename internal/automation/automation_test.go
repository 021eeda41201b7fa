package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/storage"
)

const scenarioYAML = `name: smoke
description: two short runs
steps:
  - preset: curtain
    dt: 0.016
    duration: 0.08
    save_as: curtain-smoke
  - config: small.yaml
    duration: 0.048
    wind:
      mode: dynamic
      vector: [0, 0, 0]
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	small := config.DefaultConfig()
	small.Grid.Width, small.Grid.Height = 4, 4
	if err := config.Save(filepath.Join(dir, "small.yaml"), small); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "smoke.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	out, err := RunScenario(context.Background(), sc, st)
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(out))
	}

	if out[0].Name != "curtain-smoke" || out[0].RunID == "" {
		t.Errorf("first step should be saved as curtain-smoke, got %+v", out[0])
	}
	if out[0].Result.StepsTaken != 5 {
		t.Errorf("expected 5 steps, got %d", out[0].Result.StepsTaken)
	}

	if out[1].Name != "small" || out[1].RunID != "" {
		t.Errorf("second step should be unsaved and named after its config, got %+v", out[1])
	}
	if out[1].Result.StepsTaken != 3 {
		t.Errorf("expected 3 steps, got %d", out[1].Result.StepsTaken)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Name != "curtain-smoke" {
		t.Errorf("expected one stored run, got %+v", runs)
	}
}

func TestLoadScenarioEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: nothing\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("expected ErrEmptyScenario, got %v", err)
	}
}

func TestRunScenarioBadPreset(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Preset: "parachute"}}}
	if _, err := RunScenario(context.Background(), sc, nil); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.DefaultConfig()
	base.Grid.Width, base.Grid.Height = 4, 4
	base.Duration = 0.08

	cfg := &MonteCarloConfig{Base: base, WindScale: 2, NumTrials: 4, Seed: 7, Workers: 2}
	results, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RunMonteCarlo: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	for i, r := range results {
		if r.TrialID != i {
			t.Errorf("trial %d has id %d", i, r.TrialID)
		}
		for _, w := range r.Wind {
			if w < -2 || w > 2 {
				t.Errorf("trial %d wind %v outside scale", i, r.Wind)
			}
		}
	}

	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 4 {
		t.Errorf("stats do not add up: %d + %d", stable, unstable)
	}
	if stable != 4 {
		t.Errorf("expected gentle winds to stay stable, got %d unstable", unstable)
	}

	again, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range results {
		if results[i].Wind != again[i].Wind || results[i].FinalHeight != again[i].FinalHeight {
			t.Errorf("trial %d not reproducible with a fixed seed", i)
		}
	}
}

func TestRunMonteCarloRejects(t *testing.T) {
	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{NumTrials: 3}); err == nil {
		t.Error("expected error without a base config")
	}
}
