package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rk4box/internal/boundary"
	"github.com/san-kum/rk4box/internal/config"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/physics"
	"github.com/san-kum/rk4box/internal/sim"
)

// SweepPoint is the free-fall error of one step size against the closed
// form y0 + vy0*T - g*T^2/2 and vy0 - g*T.
type SweepPoint struct {
	Dt            float64
	Steps         int
	PositionError float64
	VelocityError float64
}

// Sweep runs cfg's integrator in free fall (open boundary, no applied force
// or friction) once per dt, in parallel. T is Duration rounded to a whole
// number of steps for each dt.
func Sweep(ctx context.Context, cfg *config.Config, dts []float64) ([]SweepPoint, error) {
	reg := NewRegistry()
	if _, err := reg.GetIntegrator(cfg.Integrator); err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(dts))
	errs := make([]error, len(dts))

	dynamo.ParallelFor(len(dts), 1, func(start, end int) {
		for i := start; i < end; i++ {
			points[i], errs[i] = freeFall(ctx, reg, cfg, dts[i])
		}
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep dt=%v: %w", dts[i], err)
		}
	}
	return points, nil
}

func freeFall(ctx context.Context, reg *Registry, cfg *config.Config, dt float64) (SweepPoint, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return SweepPoint{}, fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidStep, dt)
	}

	integrator, _ := reg.GetIntegrator(cfg.Integrator)
	simCfg := cfg.SimConfig()
	simCfg.Dt = dt
	simCfg.Force = physics.NewGravity(cfg.Gravity)
	simCfg.Boundary = boundary.Open{}
	simCfg.Integrator = integrator

	s, err := sim.New(simCfg)
	if err != nil {
		return SweepPoint{}, err
	}

	steps := int(math.Round(cfg.Duration / dt))
	if steps < 1 {
		steps = 1
	}
	result, err := s.Run(ctx, nil, steps)
	if err != nil {
		return SweepPoint{}, err
	}

	T := float64(steps) * dt
	g := cfg.Gravity
	final := result.Snapshots[len(result.Snapshots)-1]
	wantY := cfg.Init.Y + cfg.Init.VY*T - 0.5*g*T*T
	wantVY := cfg.Init.VY - g*T

	return SweepPoint{
		Dt:            dt,
		Steps:         steps,
		PositionError: math.Abs(final.Position[1] - wantY),
		VelocityError: math.Abs(final.Velocity[1] - wantVY),
	}, nil
}
