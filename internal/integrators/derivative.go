package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

// Evaluate samples the derivative at base advanced by dt along prior.
// base is received by value; the hypothetical state never escapes.
func Evaluate(force dynamo.ForceModel, base dynamo.PhysicsState, dt float64, prior dynamo.Derivative) dynamo.Derivative {
	h := base
	h.Position = base.Position.Add(prior.DPosition.Mul(dt))
	h.Velocity = base.Velocity.Add(prior.DVelocity.Mul(dt))

	return dynamo.Derivative{
		DPosition: h.Velocity,
		DVelocity: acceleration(force, h),
	}
}

func acceleration(force dynamo.ForceModel, s dynamo.PhysicsState) mgl64.Vec2 {
	return mgl64.Vec2{
		force.Acceleration(s, dynamo.AxisX),
		force.Acceleration(s, dynamo.AxisY),
	}
}
