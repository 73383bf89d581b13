package automation

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/experiment"
	"github.com/san-kum/massim/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs one scene. Scene is a preset name or a scene file; zero
// fields keep the scene's own settings.
type ScenarioStep struct {
	Scene      string      `yaml:"scene"`
	Integrator string      `yaml:"integrator"`
	Dt         float64     `yaml:"dt"`
	Substeps   int         `yaml:"substeps"`
	Steps      int         `yaml:"steps"`
	Gravity    *[2]float64 `yaml:"gravity,omitempty,flow"`
	Save       bool        `yaml:"save"`
}

// StepOutcome pairs a step's outcome with its stored run ID, empty when the
// step was not saved.
type StepOutcome struct {
	*experiment.Outcome
	RunID string
}

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
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

func (s ScenarioStep) apply(cfg *config.Config) {
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Substeps != 0 {
		cfg.Substeps = s.Substeps
	}
	if s.Steps != 0 {
		cfg.Steps = s.Steps
	}
	if s.Gravity != nil {
		cfg.Gravity = *s.Gravity
	}
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the outcomes completed so far. Steps with Save set are written to
// store, which may be nil when no step saves. Progress lines go to progress.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, progress io.Writer) ([]StepOutcome, error) {
	results := make([]StepOutcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Fprintf(progress, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), step.Scene)

		cfg, err := registry.GetScene(step.Scene)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		step.apply(cfg)

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		out, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepOutcome{Outcome: out}
		if step.Save {
			if store == nil {
				return results, fmt.Errorf("step %d: no store to save to", i+1)
			}
			res.RunID, err = store.Save(storage.RunMetadata{
				Scene:      cfg.Name,
				Dt:         cfg.Dt,
				Substeps:   cfg.Substeps,
				Steps:      cfg.Steps,
				Integrator: out.Integrator,
				Names:      cfg.MassNames(),
				Metrics:    out.Metrics,
			}, out.Result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, res)
	}

	return results, nil
}

// MonteCarloConfig perturbs every free particle's initial velocity by a
// uniform offset in [-Perturbation, Perturbation] per axis.
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Offsets [][2]float64
	Metrics map[string]float64
	Stable  bool // every frame finite
}

// RunMonteCarlo runs base NumTrials times with perturbed initial velocities.
// A zero seed draws one from the clock.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig, progress io.Writer) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", mc.NumTrials)
	}
	results := make([]MonteCarloResult, 0, mc.NumTrials)

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := *base
		cfg.Masses = append([]config.MassConfig(nil), base.Masses...)
		offsets := make([][2]float64, len(cfg.Masses))
		for i := range cfg.Masses {
			if m := cfg.Masses[i].Mass; m != nil && *m == 0 {
				continue
			}
			for k := range offsets[i] {
				offsets[i][k] = (rng.Float64() - 0.5) * 2 * mc.Perturbation
				cfg.Masses[i].Velocity[k] += offsets[i][k]
			}
		}

		exp := experiment.New(&cfg)
		if err := exp.Setup(); err != nil {
			return nil, err
		}

		out, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			TrialID: trial,
			Offsets: offsets,
			Metrics: out.Metrics,
			Stable:  out.Metrics["stability"] == 1,
		})

		if (trial+1)%10 == 0 {
			fmt.Fprintf(progress, "Monte Carlo: %d/%d trials complete\n", trial+1, mc.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
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
