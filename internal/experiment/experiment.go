package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/rk4box/internal/config"
	"github.com/san-kum/rk4box/internal/sim"
)

// Experiment is one configured batch run.
type Experiment struct {
	cfg       *config.Config
	schedule  sim.Schedule
	simulator *sim.Simulator
}

// New resolves the integrator and boundary named in cfg and builds a
// simulator with the registry's default metrics.
func New(cfg *config.Config, reg *Registry, opts ...sim.Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	schedule, err := cfg.Schedule()
	if err != nil {
		return nil, err
	}

	simCfg := cfg.SimConfig()
	if simCfg.Integrator, err = reg.GetIntegrator(cfg.Integrator); err != nil {
		return nil, err
	}
	if simCfg.Boundary, err = reg.GetBoundary(cfg.Boundary); err != nil {
		return nil, err
	}
	simCfg.ValidateState = true

	opts = append([]sim.Option{sim.WithMetrics(reg.DefaultMetrics(cfg, simCfg.Force)...)}, opts...)
	s, err := sim.New(simCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}

	return &Experiment{cfg: cfg, schedule: schedule, simulator: s}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.schedule, e.cfg.Steps())
}

// GetSimulator returns the underlying simulator for tuning or live driving
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
