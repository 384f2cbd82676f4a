// Package physics provides the force model of the simulated body.
//
// [Forces] implements [dynamo.ForceModel]: the applied force divided by
// mass, minus a constant downward pull on Y and, when enabled, a kinetic
// friction term that opposes the sign of the velocity on each axis.
//
// It also implements [dynamo.Configurable] for runtime parameter
// adjustment and [dynamo.Hamiltonian] for energy monitoring:
//
//	f := physics.NewGravity(physics.StandardGravity * physics.DefaultGravityScale)
//	if h, ok := dynamo.ForceModel(f).(dynamo.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics
