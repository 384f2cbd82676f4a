package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/rk4box/internal/dynamo"
)

// Clock counts fixed steps. Simulated time is always Ticks()*Dt().
type Clock struct {
	dt   float64
	tick uint64
}

func NewClock(dt float64) (*Clock, error) {
	if !(dt > 0) || !dynamo.IsFinite(dt) {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidStep, dt)
	}
	return &Clock{dt: dt}, nil
}

// Tick advances by one step and returns the new tick count.
func (c *Clock) Tick() uint64 {
	c.tick++
	return c.tick
}

func (c *Clock) Ticks() uint64 { return c.tick }
func (c *Clock) Dt() float64   { return c.dt }
func (c *Clock) Time() float64 { return float64(c.tick) * c.dt }
func (c *Clock) Reset()        { c.tick = 0 }

// Accumulator converts variable wall-clock frame times into a whole number
// of fixed steps. Leftover time carries into the next frame.
type Accumulator struct {
	step     time.Duration
	acc      time.Duration
	maxSteps int
}

// NewAccumulator caps the steps returned per frame at maxSteps; backlog
// beyond the cap is dropped so a stalled frame cannot trigger a catch-up
// spiral.
func NewAccumulator(dt float64, maxSteps int) *Accumulator {
	if maxSteps < 1 {
		maxSteps = 1
	}
	return &Accumulator{
		step:     time.Duration(dt * float64(time.Second)),
		maxSteps: maxSteps,
	}
}

func (a *Accumulator) Add(elapsed time.Duration) int {
	if elapsed <= 0 || a.step <= 0 {
		return 0
	}
	a.acc += elapsed
	n := int(a.acc / a.step)
	if n > a.maxSteps {
		a.acc = 0
		return a.maxSteps
	}
	a.acc -= time.Duration(n) * a.step
	return n
}

func (a *Accumulator) Reset() { a.acc = 0 }
