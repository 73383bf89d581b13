package automation

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/experiment"
	"github.com/san-kum/massim/internal/storage"
)

const scenarioYAML = `name: warmup
description: short runs of two presets
steps:
  - scene: double_oscillator
    steps: 30
    substeps: 20
    save: true
  - scene: orbit
    integrator: verlet
    steps: 20
    substeps: 10
    gravity: [0, -1]
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "warmup" || len(sc.Steps) != 2 {
		t.Fatalf("scenario = %+v", sc)
	}
	if !sc.Steps[0].Save || sc.Steps[1].Save {
		t.Errorf("save flags = %v, %v", sc.Steps[0].Save, sc.Steps[1].Save)
	}
	if g := sc.Steps[1].Gravity; g == nil || g[1] != -1 {
		t.Errorf("gravity = %v", g)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	var progress strings.Builder
	outs, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), store, &progress)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outs))
	}
	if outs[0].Result.Len() != 31 || outs[1].Result.Len() != 21 {
		t.Errorf("frames = %d, %d", outs[0].Result.Len(), outs[1].Result.Len())
	}
	if outs[1].Integrator != "verlet" {
		t.Errorf("integrator = %s", outs[1].Integrator)
	}
	if outs[0].RunID == "" || outs[1].RunID != "" {
		t.Errorf("run ids = %q, %q", outs[0].RunID, outs[1].RunID)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != outs[0].RunID {
		t.Errorf("stored runs = %+v", runs)
	}
	if !strings.Contains(progress.String(), "Running step 2/2: orbit") {
		t.Errorf("progress = %q", progress.String())
	}
}

func TestRunScenario_Errors(t *testing.T) {
	reg := experiment.NewRegistry()

	sc := &Scenario{Steps: []ScenarioStep{
		{Scene: "double_oscillator", Steps: 5},
		{Scene: "no_such_scene"},
	}}
	outs, err := RunScenario(context.Background(), sc, reg, nil, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "step 2") {
		t.Errorf("err = %v", err)
	}
	if len(outs) != 1 {
		t.Errorf("got %d outcomes before the failure, want 1", len(outs))
	}

	sc = &Scenario{Steps: []ScenarioStep{{Scene: "double_oscillator", Steps: 5, Save: true}}}
	if _, err := RunScenario(context.Background(), sc, reg, nil, io.Discard); err == nil {
		t.Error("expected error saving without a store")
	}
}

func shortOscillator() *config.Config {
	cfg := config.GetPreset("double_oscillator")
	cfg.Steps = 50
	cfg.Substeps = 20
	return cfg
}

func TestRunMonteCarlo(t *testing.T) {
	base := shortOscillator()
	mc := MonteCarloConfig{Perturbation: 0.1, NumTrials: 4, Seed: 7}

	results, err := RunMonteCarlo(context.Background(), base, mc, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}
	stable, unstable := MonteCarloStats(results)
	if stable != 4 || unstable != 0 {
		t.Errorf("stable=%d unstable=%d", stable, unstable)
	}

	for _, r := range results {
		// anchors are the first and last masses
		if r.Offsets[0] != [2]float64{} || r.Offsets[3] != [2]float64{} {
			t.Errorf("trial %d moved an anchor: %v", r.TrialID, r.Offsets)
		}
		for _, o := range r.Offsets[1:3] {
			if o[0] < -0.1 || o[0] > 0.1 || o[1] < -0.1 || o[1] > 0.1 {
				t.Errorf("trial %d offset %v out of range", r.TrialID, o)
			}
		}
	}
	if base.Masses[1].Velocity != [2]float64{} {
		t.Errorf("base config mutated: %v", base.Masses[1].Velocity)
	}

	again, err := RunMonteCarlo(context.Background(), base, mc, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if again[2].Offsets[1] != results[2].Offsets[1] {
		t.Error("same seed gave different perturbations")
	}
}

func TestRunMonteCarlo_Errors(t *testing.T) {
	if _, err := RunMonteCarlo(context.Background(), shortOscillator(), MonteCarloConfig{}, io.Discard); err == nil {
		t.Error("expected error for zero trials")
	}

	bad := shortOscillator()
	bad.Substeps = 0
	if _, err := RunMonteCarlo(context.Background(), bad, MonteCarloConfig{NumTrials: 1, Seed: 1}, io.Discard); err == nil {
		t.Error("expected error for invalid substeps")
	}
}
