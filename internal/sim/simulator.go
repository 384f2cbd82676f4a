package sim

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/rk4box/internal/boundary"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/integrators"
)

// Simulator owns the body's state and advances it one fixed step per Tick.
// Force updates and ticks are serialized by one mutex, so a shell may
// deliver input events from another goroutine.
type Simulator struct {
	mu         sync.Mutex
	cfg        Config
	env        dynamo.Environment
	integrator dynamo.Integrator
	state      dynamo.PhysicsState
	clock      *Clock
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     *log.Logger
}

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m ...dynamo.Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m...) }
}

func WithObservers(o ...dynamo.Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o...) }
}

// New validates cfg and builds a simulator at tick 0. A nil Boundary means
// reflective and a nil Integrator means RK4.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Boundary == nil {
		cfg.Boundary = boundary.Reflective{}
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrators.NewRK4()
	}

	clock, err := NewClock(cfg.Dt)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg: cfg,
		env: dynamo.Environment{
			Force:    cfg.Force,
			Boundary: cfg.Boundary,
			Domain:   cfg.Domain,
		},
		integrator: cfg.Integrator,
		clock:      clock,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.initialState()

	s.logger.Info("simulator configured",
		"dt", cfg.Dt,
		"mass", cfg.Mass,
		"domain", fmt.Sprintf("%gx%g", cfg.Domain.Width, cfg.Domain.Height),
		"boundary", fmt.Sprintf("%T", cfg.Boundary),
		"integrator", fmt.Sprintf("%T", cfg.Integrator),
		"force_max", cfg.ForceMax,
	)
	return s, nil
}

func (s *Simulator) initialState() dynamo.PhysicsState {
	return dynamo.PhysicsState{
		Position: s.cfg.Position,
		Velocity: s.cfg.Velocity,
		Mass:     s.cfg.Mass,
	}
}

// ApplyForceDelta adds delta to the applied force on axis, clamped to
// [-ForceMax, ForceMax].
func (s *Simulator) ApplyForceDelta(axis dynamo.Axis, delta float64) error {
	return s.adjustForce(axis, delta, false)
}

// ReleaseForceDelta undoes a previous ApplyForceDelta of the same delta.
func (s *Simulator) ReleaseForceDelta(axis dynamo.Axis, delta float64) error {
	return s.adjustForce(axis, -delta, false)
}

// SetForce replaces the applied force on axis, clamped to [-ForceMax, ForceMax].
func (s *Simulator) SetForce(axis dynamo.Axis, value float64) error {
	return s.adjustForce(axis, value, true)
}

func (s *Simulator) adjustForce(axis dynamo.Axis, v float64, replace bool) error {
	if !axis.Valid() {
		return fmt.Errorf("%w: %v", dynamo.ErrUnknownAxis, axis)
	}
	if !dynamo.IsFinite(v) {
		return fmt.Errorf("%w: %v", dynamo.ErrNonFiniteForce, v)
	}

	s.mu.Lock()
	f := s.state.AppliedForce[axis]
	if replace {
		f = v
	} else {
		f += v
	}
	f = dynamo.Clamp(f, -s.cfg.ForceMax, s.cfg.ForceMax)
	s.state.AppliedForce[axis] = f
	tick := s.clock.Ticks()
	s.mu.Unlock()

	s.logger.Debug("force", "tick", tick, "axis", axis, "input", v, "applied", f)
	return nil
}

// Tick advances the simulation by exactly one fixed step.
func (s *Simulator) Tick() dynamo.Snapshot {
	s.mu.Lock()
	s.integrator.Step(s.env, &s.state, s.cfg.Dt)
	s.clock.Tick()
	snap := s.snapshotLocked()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	s.mu.Unlock()

	for _, obs := range s.observers {
		obs.OnTick(snap)
	}

	if s.logger.GetLevel() <= log.DebugLevel {
		s.logger.Debug("tick",
			"n", snap.Tick,
			"x", snap.Position[0], "y", snap.Position[1],
			"vx", snap.Velocity[0], "vy", snap.Velocity[1],
		)
	}
	return snap
}

func (s *Simulator) Snapshot() dynamo.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() dynamo.Snapshot {
	return dynamo.Snapshot{
		Tick:         s.clock.Ticks(),
		Time:         s.clock.Time(),
		Position:     s.state.Position,
		Velocity:     s.state.Velocity,
		AppliedForce: s.state.AppliedForce,
	}
}

// State returns a copy of the full physics state.
func (s *Simulator) State() dynamo.PhysicsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulator) Context() dynamo.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dynamo.Context{Dt: s.cfg.Dt, Tick: s.clock.Ticks(), Domain: s.cfg.Domain}
}

func (s *Simulator) Domain() dynamo.Domain { return s.cfg.Domain }
func (s *Simulator) ForceMax() float64     { return s.cfg.ForceMax }

// Reset restores the initial state, zeroes the applied force, rewinds the
// clock and resets metrics.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.state = s.initialState()
	s.clock.Reset()
	for _, m := range s.metrics {
		m.Reset()
	}
	s.mu.Unlock()

	s.logger.Debug("reset")
}

// Params returns the force model's tunables, if it has any.
func (s *Simulator) Params() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.env.Force.(dynamo.Configurable); ok {
		return c.GetParams()
	}
	return map[string]float64{}
}

func (s *Simulator) SetParam(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.env.Force.(dynamo.Configurable)
	if !ok {
		return fmt.Errorf("%w: force model has no parameters", dynamo.ErrParameterBounds)
	}
	return c.SetParam(name, value)
}

// Energy reports the mechanical energy when the force model defines one.
func (s *Simulator) Energy() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.env.Force.(dynamo.Hamiltonian); ok {
		return h.Energy(s.state), true
	}
	return 0, false
}

// Run resets the simulator and integrates steps ticks, delivering scheduled
// force events before their tick. The returned result holds the initial
// snapshot followed by one snapshot per tick.
func (s *Simulator) Run(ctx context.Context, schedule Schedule, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, steps)
	}

	s.Reset()
	events := schedule.Sorted()
	next := 0

	result := &Result{
		Snapshots: make([]dynamo.Snapshot, 0, steps+1),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}
	result.Snapshots = append(result.Snapshots, s.Snapshot())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		now := s.Context()
		tick := now.Tick
		for next < len(events) && events[next].Tick <= tick {
			ev := events[next]
			next++
			var err error
			if ev.Release {
				err = s.ReleaseForceDelta(ev.Axis, ev.Delta)
			} else {
				err = s.ApplyForceDelta(ev.Axis, ev.Delta)
			}
			if err != nil {
				return result, &dynamo.SimulationError{Tick: tick, Time: now.Time(), Wrapped: err}
			}
		}

		snap := s.Tick()
		result.StepsTaken++
		result.Snapshots = append(result.Snapshots, snap)

		if s.cfg.ValidateState && !s.State().IsValid() {
			err := &dynamo.SimulationError{Tick: snap.Tick, Time: snap.Time, Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.logger.Error("simulation diverged", "tick", snap.Tick)
			break
		}
	}

	s.mu.Lock()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.mu.Unlock()

	return result, nil
}
