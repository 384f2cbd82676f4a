package metrics

import (
	"math"

	"github.com/san-kum/rk4box/internal/dynamo"
)

// ForceEffort is the mean L1 norm of the applied force.
type ForceEffort struct {
	name    string
	sum     float64
	samples int
}

func NewForceEffort() *ForceEffort {
	return &ForceEffort{
		name: "force_effort",
	}
}

func (f *ForceEffort) Name() string {
	return f.name
}

func (f *ForceEffort) Observe(s dynamo.Snapshot) {
	for _, val := range s.AppliedForce {
		f.sum += math.Abs(val)
	}
	f.samples++
}

func (f *ForceEffort) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

func (f *ForceEffort) Reset() {
	f.sum = 0
	f.samples = 0
}

type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(s dynamo.Snapshot) {
	p.peak = math.Max(p.peak, s.Velocity.Len())
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }
