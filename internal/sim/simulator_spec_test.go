package sim_test

import (
	"context"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rk4box/internal/boundary"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/physics"
	"github.com/san-kum/rk4box/internal/sim"
)

func driftConfig() sim.Config {
	return sim.Config{
		Dt:       sim.DefaultDt,
		Mass:     1,
		Domain:   dynamo.Domain{Width: 600, Height: 600},
		Position: mgl64.Vec2{300, 300},
		ForceMax: 50,
		Force:    physics.NewFriction(physics.DefaultFrictionGravity, physics.DefaultFrictionCoefficient),
		Boundary: boundary.Periodic{},
	}
}

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		var err error
		s, err = sim.New(driftConfig())
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts force events from another goroutine while ticking", func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer GinkgoRecover()
			defer wg.Done()
			for i := 0; i < 200; i++ {
				Expect(s.ApplyForceDelta(dynamo.AxisX, 50)).To(Succeed())
				Expect(s.ReleaseForceDelta(dynamo.AxisX, 50)).To(Succeed())
			}
		}()

		for i := 0; i < 200; i++ {
			snap := s.Tick()
			Expect(snap.AppliedForce[0]).To(Or(BeNumerically("==", 0), BeNumerically("==", 50)))
		}
		wg.Wait()

		Expect(s.Snapshot().AppliedForce).To(Equal(mgl64.Vec2{}))
		Expect(s.Snapshot().Tick).To(BeNumerically("==", 200))
	})

	It("keeps a drifting body inside the periodic domain", func() {
		Expect(s.SetForce(dynamo.AxisX, 50)).To(Succeed())
		Expect(s.SetForce(dynamo.AxisY, -50)).To(Succeed())
		for i := 0; i < 600; i++ {
			snap := s.Tick()
			Expect(s.Domain().Contains(snap.Position)).To(BeTrue(), "tick %d: %v", snap.Tick, snap.Position)
		}
	})

	It("brings a released body to rest under friction", func() {
		Expect(s.ApplyForceDelta(dynamo.AxisX, 50)).To(Succeed())
		for i := 0; i < 30; i++ {
			s.Tick()
		}
		Expect(s.ReleaseForceDelta(dynamo.AxisX, 50)).To(Succeed())

		peak := s.Snapshot().Velocity[0]
		Expect(peak).To(BeNumerically(">", 0))

		for i := 0; i < 900; i++ {
			s.Tick()
		}
		Expect(s.Snapshot().Velocity.Len()).To(BeNumerically("<", peak))
		Expect(s.Snapshot().Velocity[0]).To(BeNumerically("~", 0, 0.1))
	})

	Describe("Run", func() {
		schedule := sim.Schedule{
			{Tick: 0, Axis: dynamo.AxisX, Delta: 50},
			{Tick: 20, Axis: dynamo.AxisY, Delta: -50},
			{Tick: 40, Axis: dynamo.AxisX, Delta: 50, Release: true},
		}

		It("matches ticking by hand with the same events", func() {
			result, err := s.Run(context.Background(), schedule, 60)
			Expect(err).NotTo(HaveOccurred())

			manual, err := sim.New(driftConfig())
			Expect(err).NotTo(HaveOccurred())
			var last dynamo.Snapshot
			for tick := uint64(0); tick < 60; tick++ {
				switch tick {
				case 0:
					Expect(manual.ApplyForceDelta(dynamo.AxisX, 50)).To(Succeed())
				case 20:
					Expect(manual.ApplyForceDelta(dynamo.AxisY, -50)).To(Succeed())
				case 40:
					Expect(manual.ReleaseForceDelta(dynamo.AxisX, 50)).To(Succeed())
				}
				last = manual.Tick()
			}

			Expect(result.Snapshots[60]).To(Equal(last))
		})

		It("starts from the initial state every time", func() {
			first, err := s.Run(context.Background(), schedule, 30)
			Expect(err).NotTo(HaveOccurred())
			second, err := s.Run(context.Background(), schedule, 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Snapshots).To(Equal(first.Snapshots))
		})

		It("rejects a non-positive step count", func() {
			_, err := s.Run(context.Background(), nil, 0)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})
	})
})
