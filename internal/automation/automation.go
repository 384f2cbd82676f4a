// Package automation runs scripted batches of experiments: YAML scenarios
// of preset-based steps and one-parameter sweeps of the force model.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/rk4box/internal/config"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/experiment"
	"github.com/san-kum/rk4box/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset and overrides what it names.
type ScenarioStep struct {
	Preset     string               `yaml:"preset"`
	Integrator string               `yaml:"integrator,omitempty"`
	Boundary   string               `yaml:"boundary,omitempty"`
	Duration   float64              `yaml:"duration,omitempty"`
	Dt         float64              `yaml:"dt,omitempty"`
	Params     map[string]float64   `yaml:"params,omitempty"`
	Events     []config.EventConfig `yaml:"events,omitempty"`
	SaveAs     string               `yaml:"save_as,omitempty"`
}

// StepResult pairs a finished step with the configuration it ran.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Config resolves the step against its preset.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.GetPreset(s.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", s.Preset)
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Boundary != "" {
		cfg.Boundary = s.Boundary
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Events != nil {
		cfg.Events = s.Events
	}
	return cfg, cfg.Validate()
}

type Runner struct {
	registry *experiment.Registry
	logger   *log.Logger
}

func NewRunner(registry *experiment.Registry, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{registry: registry, logger: logger}
}

// RunScenario executes all steps in a scenario
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.logger.Info("scenario step", "n", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, r.registry, sim.WithLogger(r.logger))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		s := exp.GetSimulator()
		for k, v := range step.Params {
			if err := s.SetParam(k, v); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		name := step.SaveAs
		if name == "" {
			name = step.Preset
		}
		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs one preset across evenly spaced values of a force
// model parameter.
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Duration  float64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Final      dynamo.Snapshot
	PeakSpeed  float64
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep
func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	base := config.GetPreset(sweep.Preset)
	if base == nil {
		return nil, fmt.Errorf("unknown preset: %s", sweep.Preset)
	}
	if sweep.Duration > 0 {
		base.Duration = sweep.Duration
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		exp, err := experiment.New(base.Clone(), r.registry)
		if err != nil {
			return nil, err
		}
		if err := exp.GetSimulator().SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Final:      result.Snapshots[len(result.Snapshots)-1],
			PeakSpeed:  result.Metrics["peak_speed"],
			Metrics:    result.Metrics,
		})

		r.logger.Debug("sweep", "step", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
