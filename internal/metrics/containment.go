package metrics

import "github.com/san-kum/rk4box/internal/dynamo"

// Containment is the fraction of ticks that ended inside the domain. Every
// policy except open keeps it at 1.
type Containment struct {
	name       string
	domain     dynamo.Domain
	violations int
	samples    int
}

func NewContainment(domain dynamo.Domain) *Containment {
	return &Containment{
		name:   "containment",
		domain: domain,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(s dynamo.Snapshot) {
	c.samples++
	if !c.domain.Contains(s.Position) {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
