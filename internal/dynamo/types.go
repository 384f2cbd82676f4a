package dynamo

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis selects one component of a 2-vector.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Axes lists both axes in index order.
var Axes = [2]Axis{AxisX, AxisY}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

func (a Axis) Valid() bool { return a == AxisX || a == AxisY }

// ParseAxis accepts "x" or "y" in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAxis, s)
}

// PhysicsState is the kinematic state of the simulated body.
// Mass is positive for every state built with NewPhysicsState.
type PhysicsState struct {
	Position     mgl64.Vec2
	Velocity     mgl64.Vec2
	Mass         float64
	AppliedForce mgl64.Vec2
}

// NewPhysicsState returns a body at rest at the origin.
func NewPhysicsState(mass float64) (PhysicsState, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return PhysicsState{}, fmt.Errorf("%w: %v", ErrInvalidMass, mass)
	}
	return PhysicsState{Mass: mass}, nil
}

// IsValid reports whether every component is finite.
func (s PhysicsState) IsValid() bool {
	return finite(s.Position) && finite(s.Velocity) && finite(s.AppliedForce) && IsFinite(s.Mass)
}

// Speed is the velocity magnitude.
func (s PhysicsState) Speed() float64 { return s.Velocity.Len() }

// Derivative is a single stage sample: DPosition is the velocity and
// DVelocity the acceleration at the sampled instant.
type Derivative struct {
	DPosition mgl64.Vec2
	DVelocity mgl64.Vec2
}

// Domain is the rectangle [0, Width] x [0, Height].
type Domain struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Size returns the extent of the domain along axis.
func (d Domain) Size(axis Axis) float64 {
	if axis == AxisY {
		return d.Height
	}
	return d.Width
}

func (d Domain) Validate() error {
	if !(d.Width > 0) || !(d.Height > 0) || math.IsInf(d.Width, 0) || math.IsInf(d.Height, 0) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidDomain, d.Width, d.Height)
	}
	return nil
}

// Contains reports whether p lies inside the closed rectangle.
func (d Domain) Contains(p mgl64.Vec2) bool {
	return p[0] >= 0 && p[0] <= d.Width && p[1] >= 0 && p[1] <= d.Height
}

// Snapshot is the read-only view handed to renderers once per frame.
type Snapshot struct {
	Tick         uint64
	Time         float64
	Position     mgl64.Vec2
	Velocity     mgl64.Vec2
	AppliedForce mgl64.Vec2
}

// Context carries the simulation-wide fixed step, tick count and domain.
type Context struct {
	Dt     float64
	Tick   uint64
	Domain Domain
}

// Time is derived from the tick count so it never accumulates rounding error.
func (c Context) Time() float64 { return float64(c.Tick) * c.Dt }

// ForceModel maps a (possibly hypothetical) state to an acceleration.
// Implementations must be pure.
type ForceModel interface {
	Acceleration(s PhysicsState, axis Axis) float64
}

// Boundary corrects a state that left the domain after a position update.
type Boundary interface {
	Correct(s *PhysicsState, d Domain)
}

// Environment bundles what an integrator needs besides the state itself.
type Environment struct {
	Force    ForceModel
	Boundary Boundary
	Domain   Domain
}

// Correct applies the boundary policy if one is set.
func (e Environment) Correct(s *PhysicsState) {
	if e.Boundary != nil {
		e.Boundary.Correct(s, e.Domain)
	}
}

// Integrator advances s in place by one fixed step of dt.
type Integrator interface {
	Step(env Environment, s *PhysicsState, dt float64)
}

// Configurable exposes named tunables for live adjustment.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Hamiltonian reports the mechanical energy of a state.
type Hamiltonian interface {
	Energy(s PhysicsState) float64
}

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Snapshot)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v mgl64.Vec2) bool { return IsFinite(v[0]) && IsFinite(v[1]) }

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
