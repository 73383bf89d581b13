package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/integrators"
	"github.com/san-kum/massim/internal/metrics"
)

// Registry resolves scene, integrator and metric names for the CLI.
type Registry struct {
	scenes  map[string]func() *config.Config
	metrics map[string]func() metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes:  make(map[string]func() *config.Config),
		metrics: make(map[string]func() metrics.Metric),
	}

	for name, fn := range config.Presets {
		r.scenes[name] = fn
	}

	r.metrics["energy"] = func() metrics.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func() metrics.Metric { return metrics.NewEnergyDrift() }
	r.metrics["momentum_drift"] = func() metrics.Metric { return metrics.NewMomentumDrift() }
	r.metrics["stability"] = func() metrics.Metric { return metrics.NewStability(0) }

	return r
}

// GetScene returns the named preset, or loads it from disk when name is not a
// preset.
func (r *Registry) GetScene(name string) (*config.Config, error) {
	if fn, ok := r.scenes[name]; ok {
		return fn(), nil
	}
	cfg, err := config.Load(name)
	if err != nil {
		return nil, fmt.Errorf("unknown scene: %s: %w", name, err)
	}
	return cfg, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) GetMetric(name string) (metrics.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListScenes() []string {
	return sortedNames(r.scenes)
}

func (r *Registry) ListIntegrators() []string {
	return integrators.Names()
}

func (r *Registry) ListMetrics() []string {
	return sortedNames(r.metrics)
}

func sortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
