package integrators

import "github.com/san-kum/rk4box/internal/dynamo"

// Verlet is velocity Verlet. The second force sample uses a predicted
// velocity so velocity-dependent friction is still evaluated.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(env dynamo.Environment, s *dynamo.PhysicsState, dt float64) {
	acc := acceleration(env.Force, *s)
	dt2 := dt * dt

	s.Position = s.Position.Add(s.Velocity.Mul(dt)).Add(acc.Mul(0.5 * dt2))
	env.Correct(s)

	predicted := *s
	predicted.Velocity = s.Velocity.Add(acc.Mul(dt))
	accNew := acceleration(env.Force, predicted)

	s.Velocity = s.Velocity.Add(acc.Add(accNew).Mul(0.5 * dt))
}
