package config

import (
	"sort"

	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/physics"
)

var Presets = map[string]*Config{
	"bounce": {
		Integrator:     "rk4",
		Boundary:       "reflective",
		Gravity:        physics.StandardGravity * physics.DefaultGravityScale,
		Mass:           1,
		ForceIncrement: 100,
		ForceMax:       100,
		Dt:             1.0 / 60,
		Duration:       10,
		Domain:         dynamo.Domain{Width: 600, Height: 600},
	},
	"drift": {
		Integrator:          "rk4",
		Boundary:            "periodic",
		Friction:            true,
		FrictionGravity:     physics.DefaultFrictionGravity,
		FrictionCoefficient: physics.DefaultFrictionCoefficient,
		Mass:                1,
		ForceIncrement:      50,
		ForceMax:            50,
		Dt:                  1.0 / 60,
		Duration:            10,
		Domain:              dynamo.Domain{Width: 600, Height: 600},
		Init:                InitConfig{X: 300, Y: 300},
	},
	"toss": {
		Integrator:     "rk4",
		Boundary:       "elastic",
		Gravity:        9.8,
		Mass:           1,
		ForceIncrement: 100,
		ForceMax:       100,
		Dt:             1.0 / 30,
		Duration:       20,
		Domain:         dynamo.Domain{Width: 200, Height: 500},
		Init:           InitConfig{X: 100, Y: 0, VY: 50},
	},
	// slalom replays a fixed sequence of key presses over the drift setup.
	"slalom": {
		Integrator:          "rk4",
		Boundary:            "periodic",
		Friction:            true,
		FrictionGravity:     physics.DefaultFrictionGravity,
		FrictionCoefficient: physics.DefaultFrictionCoefficient,
		Mass:                1,
		ForceIncrement:      50,
		ForceMax:            50,
		Dt:                  1.0 / 60,
		Duration:            8,
		Domain:              dynamo.Domain{Width: 600, Height: 600},
		Init:                InitConfig{X: 300, Y: 300},
		Events: []EventConfig{
			{Tick: 0, Axis: "x", Delta: 50},
			{Tick: 60, Axis: "y", Delta: 50},
			{Tick: 120, Axis: "x", Delta: 50, Release: true},
			{Tick: 180, Axis: "x", Delta: -50},
			{Tick: 240, Axis: "y", Delta: 50, Release: true},
			{Tick: 300, Axis: "x", Delta: -50, Release: true},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
