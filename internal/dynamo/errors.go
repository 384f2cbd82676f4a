package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a mass that is zero, negative or not finite.
	ErrInvalidMass = errors.New("dynamo: mass must be positive and finite")

	// ErrNonFiniteForce indicates a NaN or Inf force input.
	ErrNonFiniteForce = errors.New("dynamo: force input is not finite")

	// ErrInvalidDomain indicates a domain with a non-positive extent.
	ErrInvalidDomain = errors.New("dynamo: domain extent must be positive")

	// ErrInvalidStep indicates a non-positive or non-finite timestep.
	ErrInvalidStep = errors.New("dynamo: timestep must be positive and finite")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownAxis indicates an axis other than x or y.
	ErrUnknownAxis = errors.New("dynamo: unknown axis")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Tick    uint64
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
