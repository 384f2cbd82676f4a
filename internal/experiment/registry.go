package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rk4box/internal/boundary"
	"github.com/san-kum/rk4box/internal/config"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/integrators"
	"github.com/san-kum/rk4box/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetBoundary(name string) (dynamo.Boundary, error) {
	return boundary.New(name)
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListBoundaries() []string {
	return boundary.Modes()
}

// DefaultMetrics returns fresh metrics for one run of cfg. The energy
// metrics read force, the model the simulator integrates, and are only
// tracked without friction, where energy is conserved between
// applied-force events.
func (r *Registry) DefaultMetrics(cfg *config.Config, force dynamo.ForceModel) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewContainment(cfg.Domain),
		metrics.NewForceEffort(),
		metrics.NewPeakSpeed(),
	}
	if h, ok := force.(dynamo.Hamiltonian); ok && !cfg.Friction {
		ms = append(ms,
			metrics.NewEnergy(h, cfg.Mass),
			metrics.NewEnergyDrift(h, cfg.Mass),
		)
	}
	return ms
}
