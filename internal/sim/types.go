package sim

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultMass     = 1.0
	DefaultForceMax = 100.0
)

type Config struct {
	Dt         float64
	Mass       float64
	Domain     dynamo.Domain
	Position   mgl64.Vec2
	Velocity   mgl64.Vec2
	ForceMax   float64
	Force      dynamo.ForceModel
	Boundary   dynamo.Boundary
	Integrator dynamo.Integrator

	// ValidateState stops batch runs on the first non-finite state.
	ValidateState bool
}

func (c Config) validate() error {
	if !(c.Dt > 0) || !dynamo.IsFinite(c.Dt) {
		return fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidStep, c.Dt)
	}
	if !(c.Mass > 0) || !dynamo.IsFinite(c.Mass) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidMass, c.Mass)
	}
	if err := c.Domain.Validate(); err != nil {
		return err
	}
	if !(c.ForceMax > 0) || !dynamo.IsFinite(c.ForceMax) {
		return fmt.Errorf("%w: force max %v", dynamo.ErrParameterBounds, c.ForceMax)
	}
	for _, v := range []mgl64.Vec2{c.Position, c.Velocity} {
		if !dynamo.IsFinite(v[0]) || !dynamo.IsFinite(v[1]) {
			return fmt.Errorf("%w: initial %v", dynamo.ErrInvalidState, v)
		}
	}
	if c.Force == nil {
		return fmt.Errorf("%w: force model is required", dynamo.ErrParameterBounds)
	}
	return nil
}

// ForceEvent is a key press (Release false) or key release (Release true)
// delivered before the tick with the same number is integrated.
type ForceEvent struct {
	Tick    uint64
	Axis    dynamo.Axis
	Delta   float64
	Release bool
}

type Schedule []ForceEvent

// Sorted returns a copy ordered by tick, keeping the input order of events
// that share a tick.
func (s Schedule) Sorted() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out
}

type Result struct {
	Snapshots  []dynamo.Snapshot
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
