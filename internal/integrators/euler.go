package integrators

import "github.com/san-kum/rk4box/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(env dynamo.Environment, s *dynamo.PhysicsState, dt float64) {
	d := Evaluate(env.Force, *s, 0, dynamo.Derivative{})

	s.Position = s.Position.Add(d.DPosition.Mul(dt))
	env.Correct(s)
	s.Velocity = s.Velocity.Add(d.DVelocity.Mul(dt))
}
