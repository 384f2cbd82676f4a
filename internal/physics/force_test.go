package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

func TestGravityAcceleration(t *testing.T) {
	g := StandardGravity * DefaultGravityScale
	f := NewGravity(g)
	s := dynamo.PhysicsState{Mass: 2, AppliedForce: mgl64.Vec2{10, 30}}

	if got := f.Acceleration(s, dynamo.AxisX); got != 5 {
		t.Errorf("x acceleration = %v, want 5", got)
	}
	want := (30 - 2*g) / 2
	if got := f.Acceleration(s, dynamo.AxisY); math.Abs(got-want) > 1e-12 {
		t.Errorf("y acceleration = %v, want %v", got, want)
	}
}

func TestFrictionSignLaw(t *testing.T) {
	f := NewFriction(DefaultFrictionGravity, DefaultFrictionCoefficient)
	mag := DefaultFrictionGravity * DefaultFrictionCoefficient

	tests := []struct {
		name string
		vel  float64
		want float64
	}{
		{"moving positive", 3.0, -mag},
		{"moving negative", -0.01, mag},
		{"at rest", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, axis := range dynamo.Axes {
				s := dynamo.PhysicsState{Mass: 1}
				s.Velocity[axis] = tt.vel
				got := f.Acceleration(s, axis)
				if math.Abs(got-tt.want) > 1e-12 {
					t.Errorf("axis %v: acceleration = %v, want %v", axis, got, tt.want)
				}
				if tt.vel != 0 && math.Signbit(got) == math.Signbit(tt.vel) {
					t.Errorf("axis %v: friction %v does not oppose velocity %v", axis, got, tt.vel)
				}
			}
		})
	}
}

func TestFrictionWithAppliedForce(t *testing.T) {
	f := NewFriction(DefaultFrictionGravity, DefaultFrictionCoefficient)
	s := dynamo.PhysicsState{Mass: 1, AppliedForce: mgl64.Vec2{50, 0}, Velocity: mgl64.Vec2{1, 0}}

	want := 50 - DefaultFrictionGravity*DefaultFrictionCoefficient
	if got := f.Acceleration(s, dynamo.AxisX); math.Abs(got-want) > 1e-12 {
		t.Errorf("acceleration = %v, want %v", got, want)
	}
	if got := f.Acceleration(s, dynamo.AxisY); got != 0 {
		t.Errorf("friction model has no gravity, got y acceleration %v", got)
	}
}

func TestAccelerationIsPure(t *testing.T) {
	f := NewFriction(DefaultFrictionGravity, DefaultFrictionCoefficient)
	s := dynamo.PhysicsState{Mass: 1, Velocity: mgl64.Vec2{1, -1}, AppliedForce: mgl64.Vec2{5, 5}}
	before := s

	_ = f.Acceleration(s, dynamo.AxisX)
	_ = f.Acceleration(s, dynamo.AxisY)

	if s != before {
		t.Errorf("state mutated: %+v -> %+v", before, s)
	}
}

func TestEnergy(t *testing.T) {
	f := NewGravity(10)
	s := dynamo.PhysicsState{Mass: 2, Position: mgl64.Vec2{0, 3}, Velocity: mgl64.Vec2{3, 4}}
	want := 0.5*2*25 + 2*10*3.0
	if got := f.Energy(s); math.Abs(got-want) > 1e-12 {
		t.Errorf("Energy = %v, want %v", got, want)
	}
}

func TestParams(t *testing.T) {
	f := NewFriction(1, 0.5)
	params := f.GetParams()
	if len(params) != 3 {
		t.Errorf("expected 3 params, got %d", len(params))
	}

	if err := f.SetParam("mu", 0.25); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if f.Mu != 0.25 {
		t.Errorf("Mu = %v, want 0.25", f.Mu)
	}
	if err := f.SetParam("mu", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := f.SetParam("spin", 1); err == nil {
		t.Error("expected error for unknown param")
	}

	if len(NewGravity(9.81).GetParams()) != 1 {
		t.Error("gravity model should expose only gravity")
	}
}

func TestSetParamHiddenOnGravityModel(t *testing.T) {
	f := NewGravity(9.81)
	for _, name := range []string{"mu", "friction_g"} {
		if err := f.SetParam(name, 0.3); err == nil {
			t.Errorf("SetParam(%q) should fail without friction", name)
		}
	}
	if f.Mu != 0 || f.FrictionGravity != 0 {
		t.Errorf("frictionless model was modified: %+v", f)
	}
	if err := f.SetParam("gravity", 3); err != nil || f.Gravity != 3 {
		t.Errorf("SetParam(gravity) = %v, Gravity = %v", err, f.Gravity)
	}
}
