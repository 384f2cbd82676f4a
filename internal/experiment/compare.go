package experiment

import (
	"context"

	"github.com/san-kum/rk4box/internal/config"
	"github.com/san-kum/rk4box/internal/dynamo"
)

// Comparison is the outcome of one integrator on a shared configuration.
type Comparison struct {
	Integrator string
	Final      dynamo.Snapshot
	Metrics    map[string]float64
}

// Compare replays cfg, scripted events included, once per integrator name.
func Compare(ctx context.Context, cfg *config.Config, names []string) ([]Comparison, error) {
	reg := NewRegistry()
	out := make([]Comparison, 0, len(names))

	for _, name := range names {
		run := cfg.Clone()
		run.Integrator = name

		exp, err := New(run, reg)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		out = append(out, Comparison{
			Integrator: name,
			Final:      result.Snapshots[len(result.Snapshots)-1],
			Metrics:    result.Metrics,
		})
	}
	return out, nil
}
