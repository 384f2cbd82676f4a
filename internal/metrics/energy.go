package metrics

import (
	"math"

	"github.com/san-kum/rk4box/internal/dynamo"
)

// Energy is the mean mechanical energy over the observed ticks. h is read
// on every sample, so parameter changes on a live force model are seen.
type Energy struct {
	name        string
	mass        float64
	h           dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(h dynamo.Hamiltonian, mass float64) *Energy {
	return &Energy{
		name: "energy",
		mass: mass,
		h:    h,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Snapshot) {
	e.totalEnergy += e.h.Energy(dynamo.PhysicsState{
		Position: s.Position,
		Velocity: s.Velocity,
		Mass:     e.mass,
	})
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the first observed
// energy. Only meaningful for runs without applied force or friction.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	mass          float64
	h             dynamo.Hamiltonian
}

func NewEnergyDrift(h dynamo.Hamiltonian, mass float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		h:    h,
		mass: mass,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Snapshot) {
	energy := e.h.Energy(dynamo.PhysicsState{
		Position: s.Position,
		Velocity: s.Velocity,
		Mass:     e.mass,
	})

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
