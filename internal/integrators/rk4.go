package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

// Slope returns the RK4-weighted derivative over one step of dt.
func (r *RK4) Slope(force dynamo.ForceModel, s dynamo.PhysicsState, dt float64) dynamo.Derivative {
	a := Evaluate(force, s, 0, dynamo.Derivative{})
	b := Evaluate(force, s, dt*0.5, a)
	c := Evaluate(force, s, dt*0.5, b)
	d := Evaluate(force, s, dt, c)

	return dynamo.Derivative{
		DPosition: weigh(a.DPosition, b.DPosition, c.DPosition, d.DPosition),
		DVelocity: weigh(a.DVelocity, b.DVelocity, c.DVelocity, d.DVelocity),
	}
}

// Step commits the position, applies the boundary, then commits the
// velocity using the uncorrected slope. The boundary therefore sees the new
// position with the velocity from the start of the step.
func (r *RK4) Step(env dynamo.Environment, s *dynamo.PhysicsState, dt float64) {
	slope := r.Slope(env.Force, *s, dt)

	s.Position = s.Position.Add(slope.DPosition.Mul(dt))
	env.Correct(s)
	s.Velocity = s.Velocity.Add(slope.DVelocity.Mul(dt))
}

func weigh(a, b, c, d mgl64.Vec2) mgl64.Vec2 {
	var out mgl64.Vec2
	for i := range out {
		out[i] = (a[i] + 2*(b[i]+c[i]) + d[i]) / 6.0
	}
	return out
}
