package physics

import (
	"fmt"

	"github.com/san-kum/rk4box/internal/dynamo"
)

const (
	StandardGravity            = 9.81
	DefaultGravityScale        = 5.0
	DefaultFrictionGravity     = StandardGravity / 2
	DefaultFrictionCoefficient = 0.5
)

// Forces is the force model of a single body: the applied force, an
// optional constant pull along -Y and an optional kinetic friction term
// opposing motion on each axis.
type Forces struct {
	Gravity         float64
	Friction        bool
	FrictionGravity float64
	Mu              float64
}

// NewGravity returns a frictionless model pulling along -Y with g.
func NewGravity(g float64) *Forces {
	return &Forces{Gravity: g}
}

// NewFriction returns a gravity-free model with kinetic friction
// mass*g*mu on both axes.
func NewFriction(g, mu float64) *Forces {
	return &Forces{Friction: true, FrictionGravity: g, Mu: mu}
}

// Acceleration is the net force on axis divided by mass. It reads only its
// arguments, so stage evaluations may pass hypothetical states.
func (f *Forces) Acceleration(s dynamo.PhysicsState, axis dynamo.Axis) float64 {
	net := s.AppliedForce[axis]
	if axis == dynamo.AxisY {
		net -= s.Mass * f.Gravity
	}
	if f.Friction {
		net -= sign(s.Velocity[axis]) * s.Mass * f.FrictionGravity * f.Mu
	}
	return net / s.Mass
}

// Energy is kinetic plus gravitational potential energy, measured from y = 0.
func (f *Forces) Energy(s dynamo.PhysicsState) float64 {
	v := s.Velocity.Len()
	return 0.5*s.Mass*v*v + s.Mass*f.Gravity*s.Position[1]
}

func (f *Forces) GetParams() map[string]float64 {
	params := map[string]float64{"gravity": f.Gravity}
	if f.Friction {
		params["friction_g"] = f.FrictionGravity
		params["mu"] = f.Mu
	}
	return params
}

// SetParam accepts only the names GetParams reports, so friction terms
// cannot be tuned on a frictionless model.
func (f *Forces) SetParam(name string, value float64) error {
	if _, ok := f.GetParams()[name]; !ok {
		return fmt.Errorf("unknown param: %s", name)
	}
	if !dynamo.IsFinite(value) || value < 0 {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, value)
	}
	switch name {
	case "gravity":
		f.Gravity = value
	case "friction_g":
		f.FrictionGravity = value
	case "mu":
		f.Mu = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// sign is -1, 0 or +1. A body at rest on an axis feels no friction there.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
