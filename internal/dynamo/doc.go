// Package dynamo provides core simulation primitives for a point-mass body.
//
// The package defines the value types and interfaces shared by the force
// models, integrators and boundary policies:
//
//   - [PhysicsState]: position, velocity, mass and applied force
//   - [Derivative]: one (velocity, acceleration) stage sample
//   - [ForceModel]: state-dependent acceleration per [Axis]
//   - [Boundary]: post-integration correction inside a [Domain]
//   - [Integrator]: fixed-step numerical integrator
//
// # Example
//
//	env := dynamo.Environment{
//	    Force:    physics.NewGravity(9.81),
//	    Boundary: boundary.Reflective{},
//	    Domain:   dynamo.Domain{Width: 600, Height: 600},
//	}
//	s, _ := dynamo.NewPhysicsState(1.0)
//	integrators.NewRK4().Step(env, &s, 1.0/60)
//
// # Thread Safety
//
// All types here are plain values. A [PhysicsState] must only be stepped
// from one goroutine at a time; the sim package serializes access.
package dynamo
