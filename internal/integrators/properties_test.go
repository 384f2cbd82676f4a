package integrators_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rk4box/internal/boundary"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/integrators"
	"github.com/san-kum/rk4box/internal/physics"
)

const dt = 1.0 / 60

var square = dynamo.Domain{Width: 600, Height: 600}

var _ = Describe("RK4", func() {
	var integ *integrators.RK4

	BeforeEach(func() {
		integ = integrators.NewRK4()
	})

	Describe("free fall", func() {
		DescribeTable("converges to -g*T",
			func(step float64) {
				g := physics.StandardGravity * physics.DefaultGravityScale
				env := dynamo.Environment{Force: physics.NewGravity(g), Boundary: boundary.Open{}, Domain: square}
				s := dynamo.PhysicsState{Mass: 1}
				steps := int(math.Round(1.0 / step))
				for i := 0; i < steps; i++ {
					integ.Step(env, &s, step)
				}
				Expect(s.Velocity[1]).To(BeNumerically("~", -g, 1e-9))
				Expect(s.Position[1]).To(BeNumerically("~", -0.5*g, 1e-9))
			},
			Entry("dt = 1/30", 1.0/30),
			Entry("dt = 1/60", 1.0/60),
			Entry("dt = 1/240", 1.0/240),
		)
	})

	Describe("reflective boundary without forces", func() {
		It("never increases speed", func() {
			env := dynamo.Environment{Force: physics.NewGravity(0), Boundary: boundary.Reflective{}, Domain: square}
			s := dynamo.PhysicsState{Mass: 1, Position: mgl64.Vec2{300, 300}, Velocity: mgl64.Vec2{420, -275}}

			prev := s.Speed()
			for i := 0; i < 600; i++ {
				integ.Step(env, &s, dt)
				Expect(s.Speed()).To(BeNumerically("<=", prev))
				prev = s.Speed()
			}
			Expect(prev).To(BeZero())
		})
	})

	Describe("periodic boundary", func() {
		It("keeps the body inside the domain on every tick", func() {
			env := dynamo.Environment{
				Force:    physics.NewFriction(physics.DefaultFrictionGravity, physics.DefaultFrictionCoefficient),
				Boundary: boundary.Periodic{},
				Domain:   square,
			}
			s := dynamo.PhysicsState{
				Mass:         1,
				Position:     mgl64.Vec2{300, 300},
				Velocity:     mgl64.Vec2{900, -700},
				AppliedForce: mgl64.Vec2{50, -50},
			}

			for i := 0; i < 1200; i++ {
				integ.Step(env, &s, dt)
				Expect(square.Contains(s.Position)).To(BeTrue(), "tick %d position %v", i, s.Position)
			}
		})

		It("re-enters at the opposite edge with unchanged velocity", func() {
			env := dynamo.Environment{Force: physics.NewGravity(0), Boundary: boundary.Periodic{}, Domain: square}
			s := dynamo.PhysicsState{Mass: 1, Position: mgl64.Vec2{599, 10}, Velocity: mgl64.Vec2{120, 0}}

			integ.Step(env, &s, dt)

			Expect(s.Position[0]).To(BeNumerically("~", 1, 1e-9))
			Expect(s.Velocity).To(Equal(mgl64.Vec2{120, 0}))
		})
	})

	Describe("determinism", func() {
		It("produces identical trajectories for identical force sequences", func() {
			forces := []mgl64.Vec2{{0, 0}, {50, 0}, {50, 50}, {0, 50}, {-50, 0}, {0, 0}}
			run := func() []dynamo.PhysicsState {
				env := dynamo.Environment{
					Force:    physics.NewFriction(physics.DefaultFrictionGravity, physics.DefaultFrictionCoefficient),
					Boundary: boundary.Periodic{},
					Domain:   square,
				}
				s := dynamo.PhysicsState{Mass: 1, Position: mgl64.Vec2{300, 300}}
				r := integrators.NewRK4()
				var out []dynamo.PhysicsState
				for i := 0; i < 600; i++ {
					s.AppliedForce = forces[(i/50)%len(forces)]
					r.Step(env, &s, dt)
					out = append(out, s)
				}
				return out
			}

			Expect(run()).To(Equal(run()))
		})
	})
})

var _ = Describe("Evaluate", func() {
	It("returns the base velocity and acceleration for a zero prior", func() {
		force := physics.NewGravity(10)
		base := dynamo.PhysicsState{Mass: 2, Velocity: mgl64.Vec2{3, 4}, AppliedForce: mgl64.Vec2{8, 0}}

		d := integrators.Evaluate(force, base, 0.5, dynamo.Derivative{})

		Expect(d.DPosition).To(Equal(mgl64.Vec2{3, 4}))
		Expect(d.DVelocity).To(Equal(mgl64.Vec2{4, -10}))
	})

	It("applies friction to the extrapolated velocity, not the base one", func() {
		force := physics.NewFriction(1, 1)
		base := dynamo.PhysicsState{Mass: 1, Velocity: mgl64.Vec2{0.1, 0}}
		prior := dynamo.Derivative{DVelocity: mgl64.Vec2{-1, 0}}

		d := integrators.Evaluate(force, base, 1, prior)

		Expect(d.DPosition[0]).To(BeNumerically("~", -0.9, 1e-12))
		Expect(d.DVelocity[0]).To(Equal(1.0))
	})
})
