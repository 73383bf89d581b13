package experiment

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/massim/internal/config"
)

// Compare runs each configuration as an independent experiment, one goroutine
// per scene. Outcomes are returned in input order. The first failure cancels
// the remaining runs.
func Compare(ctx context.Context, cfgs []*config.Config) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			exp := New(cfg)
			if err := exp.Setup(); err != nil {
				return err
			}
			out, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// WithIntegrators returns one copy of base per integrator name, each named
// after its integrator.
func WithIntegrators(base *config.Config, names []string) []*config.Config {
	out := make([]*config.Config, len(names))
	for i, name := range names {
		c := *base
		c.Integrator = name
		c.Name = base.Name + "/" + name
		out[i] = &c
	}
	return out
}
