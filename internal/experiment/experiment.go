package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/metrics"
)

// Outcome is the result of one experiment run.
type Outcome struct {
	Name       string
	Integrator string
	Config     *config.Config
	Result     *dynamo.Result
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Experiment struct {
	cfg     *config.Config
	scene   *dynamo.Scene
	metrics []metrics.Metric
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the scene from the configuration. With no metrics given the
// default set is used.
func (e *Experiment) Setup(ms ...metrics.Metric) error {
	scene, err := e.cfg.Build()
	if err != nil {
		return err
	}
	e.scene = scene
	if len(ms) == 0 {
		ms = metrics.Defaults()
	}
	e.metrics = ms
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.scene == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	r, err := e.scene.SimulateContext(ctx, e.cfg.Steps, e.cfg.Substeps, e.cfg.Dt)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", e.cfg.Name, err)
	}

	return &Outcome{
		Name:       e.cfg.Name,
		Integrator: e.scene.Integrator().Name(),
		Config:     e.cfg,
		Result:     r,
		Metrics:    metrics.Evaluate(r, e.metrics...),
		Elapsed:    time.Since(start),
	}, nil
}

// Scene returns the scene built by Setup.
func (e *Experiment) Scene() *dynamo.Scene {
	return e.scene
}
