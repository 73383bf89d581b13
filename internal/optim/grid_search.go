package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/experiment"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Param is one axis of the grid: a named setting of the scene configuration
// and the values to try for it.
type Param struct {
	Name   string
	Values []float64
	apply  func(cfg *config.Config, v float64)
}

var params = map[string]func(cfg *config.Config, v float64){
	"dt":        func(cfg *config.Config, v float64) { cfg.Dt = v },
	"substeps":  func(cfg *config.Config, v float64) { cfg.Substeps = int(v) },
	"steps":     func(cfg *config.Config, v float64) { cfg.Steps = int(v) },
	"gravity_x": func(cfg *config.Config, v float64) { cfg.Gravity[0] = v },
	"gravity_y": func(cfg *config.Config, v float64) { cfg.Gravity[1] = v },
}

// NewParam returns the grid axis for a named setting.
func NewParam(name string, values []float64) (Param, error) {
	apply, ok := params[name]
	if !ok {
		return Param{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, ParamNames())
	}
	if len(values) == 0 {
		return Param{}, fmt.Errorf("optim: no values for %s", name)
	}
	return Param{Name: name, Values: values, apply: apply}, nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	params []Param
}

func NewGridSearch(params ...Param) *GridSearch {
	return &GridSearch{params: params}
}

// Search runs base at every grid point and returns the trial with the lowest
// value of the named metric, along with every trial in grid order. Grid
// points whose scene fails to build or run are recorded with their error and
// never chosen; a NaN metric counts as +Inf.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (Trial, []Trial, error) {
	var trials []Trial
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &trials); err != nil {
		return Trial{}, trials, err
	}

	best := -1
	for i, t := range trials {
		if t.Err != nil {
			continue
		}
		if best == -1 || t.Value < trials[best].Value {
			best = i
		}
	}
	if best == -1 {
		return Trial{}, trials, fmt.Errorf("optim: every grid point failed")
	}
	return trials[best], trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.params) {
		cfg := *base
		for _, p := range g.params {
			p.apply(&cfg, current[p.Name])
		}
		trial := Trial{Params: current}
		trial.Value, trial.Err = evaluate(ctx, &cfg, metricName)
		if errors.Is(trial.Err, context.Canceled) || errors.Is(trial.Err, context.DeadlineExceeded) {
			return trial.Err
		}
		*trials = append(*trials, trial)
		return nil
	}

	p := g.params[depth]
	for _, val := range p.Values {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[p.Name] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, trials); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, cfg *config.Config, metricName string) (float64, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return 0, err
	}
	out, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := out.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("optim: unknown metric %s", metricName)
	}
	if math.IsNaN(val) {
		val = math.Inf(1)
	}
	return val, nil
}
