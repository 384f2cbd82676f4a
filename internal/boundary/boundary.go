// Package boundary implements the edge policies applied after each
// position update. Every policy treats the axes independently and leaves
// positions exactly on an edge untouched.
package boundary

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/rk4box/internal/dynamo"
)

var ErrUnknownMode = errors.New("boundary: unknown mode")

const (
	ModeReflective = "reflective"
	ModePeriodic   = "periodic"
	ModeElastic    = "elastic"
	ModeOpen       = "open"
)

var policies = map[string]func() dynamo.Boundary{
	ModeReflective: func() dynamo.Boundary { return Reflective{} },
	ModePeriodic:   func() dynamo.Boundary { return Periodic{} },
	ModeElastic:    func() dynamo.Boundary { return Elastic{} },
	ModeOpen:       func() dynamo.Boundary { return Open{} },
}

// New returns the policy registered under mode.
func New(mode string) (dynamo.Boundary, error) {
	fn, ok := policies[strings.ToLower(mode)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMode, mode, Modes())
	}
	return fn(), nil
}

func Modes() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reflective clamps to the crossed edge and stops motion on that axis.
type Reflective struct{}

func (Reflective) Correct(s *dynamo.PhysicsState, d dynamo.Domain) {
	for _, axis := range dynamo.Axes {
		size := d.Size(axis)
		switch {
		case s.Position[axis] < 0:
			s.Position[axis] = 0
			s.Velocity[axis] = 0
		case s.Position[axis] > size:
			s.Position[axis] = size
			s.Velocity[axis] = 0
		}
	}
}

// Periodic re-enters through the opposite edge with velocity unchanged.
// A single overshoot maps exactly to size+p or p-size; larger overshoots
// are reduced modulo size so the result always lies in [0, size].
type Periodic struct{}

func (Periodic) Correct(s *dynamo.PhysicsState, d dynamo.Domain) {
	for _, axis := range dynamo.Axes {
		size := d.Size(axis)
		p := s.Position[axis]
		switch {
		case p < 0:
			s.Position[axis] = size + math.Mod(p, size)
		case p > size:
			s.Position[axis] = math.Mod(p, size)
		}
	}
}

// Elastic clamps to the crossed edge and reverses velocity on that axis.
type Elastic struct{}

func (Elastic) Correct(s *dynamo.PhysicsState, d dynamo.Domain) {
	for _, axis := range dynamo.Axes {
		size := d.Size(axis)
		switch {
		case s.Position[axis] < 0:
			s.Position[axis] = 0
			s.Velocity[axis] = -s.Velocity[axis]
		case s.Position[axis] > size:
			s.Position[axis] = size
			s.Velocity[axis] = -s.Velocity[axis]
		}
	}
}

// Open applies no correction.
type Open struct{}

func (Open) Correct(*dynamo.PhysicsState, dynamo.Domain) {}
