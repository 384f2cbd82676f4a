package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/physics"
	"github.com/san-kum/rk4box/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt             = 1.0 / 60
	DefaultDuration       = 10.0
	DefaultMass           = 1.0
	DefaultForceIncrement = 100.0
	DefaultWidth          = 600.0
	DefaultHeight         = 600.0
)

type Config struct {
	Integrator          string        `yaml:"integrator"`
	Boundary            string        `yaml:"boundary"`
	Friction            bool          `yaml:"friction"`
	Gravity             float64       `yaml:"gravity"`
	FrictionGravity     float64       `yaml:"friction_gravity"`
	FrictionCoefficient float64       `yaml:"friction_coefficient"`
	Mass                float64       `yaml:"mass"`
	ForceIncrement      float64       `yaml:"force_increment"`
	ForceMax            float64       `yaml:"force_max"`
	Dt                  float64       `yaml:"dt"`
	Duration            float64       `yaml:"duration"`
	Domain              dynamo.Domain `yaml:"domain"`
	Init                InitConfig    `yaml:"init"`
	Events              []EventConfig `yaml:"events,omitempty"`
}

type InitConfig struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
}

// EventConfig is one scripted key press or release.
type EventConfig struct {
	Tick    uint64  `yaml:"tick"`
	Axis    string  `yaml:"axis"`
	Delta   float64 `yaml:"delta"`
	Release bool    `yaml:"release,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator:          "rk4",
		Boundary:            "reflective",
		Gravity:             physics.StandardGravity * physics.DefaultGravityScale,
		FrictionGravity:     physics.DefaultFrictionGravity,
		FrictionCoefficient: physics.DefaultFrictionCoefficient,
		Mass:                DefaultMass,
		ForceIncrement:      DefaultForceIncrement,
		ForceMax:            DefaultForceIncrement,
		Dt:                  DefaultDt,
		Duration:            DefaultDuration,
		Domain:              dynamo.Domain{Width: DefaultWidth, Height: DefaultHeight},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base; fields missing from the
// file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the numeric fields and scripted events. Integrator and
// boundary names are resolved by the experiment registry.
func (c *Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidStep, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration=%v", dynamo.ErrParameterBounds, c.Duration)
	}
	if !(c.Mass > 0) || math.IsInf(c.Mass, 0) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidMass, c.Mass)
	}
	if err := c.Domain.Validate(); err != nil {
		return err
	}
	if !(c.ForceMax > 0) || !dynamo.IsFinite(c.ForceMax) {
		return fmt.Errorf("%w: force_max=%v", dynamo.ErrParameterBounds, c.ForceMax)
	}
	if c.ForceIncrement < 0 || !dynamo.IsFinite(c.ForceIncrement) {
		return fmt.Errorf("%w: force_increment=%v", dynamo.ErrParameterBounds, c.ForceIncrement)
	}
	for name, v := range map[string]float64{
		"gravity":              c.Gravity,
		"friction_gravity":     c.FrictionGravity,
		"friction_coefficient": c.FrictionCoefficient,
	} {
		if v < 0 || !dynamo.IsFinite(v) {
			return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, v)
		}
	}
	for i, ev := range c.Events {
		if _, err := dynamo.ParseAxis(ev.Axis); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		if !dynamo.IsFinite(ev.Delta) {
			return fmt.Errorf("event %d: %w: %v", i, dynamo.ErrNonFiniteForce, ev.Delta)
		}
	}
	return nil
}

// Steps is the number of fixed ticks covering Duration.
func (c *Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

// Forces builds the force model. The friction variant carries no gravity.
func (c *Config) Forces() *physics.Forces {
	if c.Friction {
		return physics.NewFriction(c.FrictionGravity, c.FrictionCoefficient)
	}
	return physics.NewGravity(c.Gravity)
}

func (c *Config) Schedule() (sim.Schedule, error) {
	schedule := make(sim.Schedule, 0, len(c.Events))
	for i, ev := range c.Events {
		axis, err := dynamo.ParseAxis(ev.Axis)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		schedule = append(schedule, sim.ForceEvent{
			Tick:    ev.Tick,
			Axis:    axis,
			Delta:   ev.Delta,
			Release: ev.Release,
		})
	}
	return schedule, nil
}

// SimConfig converts the file form into a simulator configuration. The
// boundary and integrator are left for the caller to resolve by name.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:       c.Dt,
		Mass:     c.Mass,
		Domain:   c.Domain,
		Position: mgl64.Vec2{c.Init.X, c.Init.Y},
		Velocity: mgl64.Vec2{c.Init.VX, c.Init.VY},
		ForceMax: c.ForceMax,
		Force:    c.Forces(),
	}
}

// Clone returns a deep copy, so presets can be customised without
// mutating the shared table.
func (c *Config) Clone() *Config {
	out := *c
	out.Events = append([]EventConfig(nil), c.Events...)
	return &out
}
