package boundary

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

var domain = dynamo.Domain{Width: 600, Height: 400}

func TestReflective(t *testing.T) {
	tests := []struct {
		name    string
		pos     mgl64.Vec2
		vel     mgl64.Vec2
		wantPos mgl64.Vec2
		wantVel mgl64.Vec2
	}{
		{"inside", mgl64.Vec2{10, 10}, mgl64.Vec2{1, -1}, mgl64.Vec2{10, 10}, mgl64.Vec2{1, -1}},
		{"below floor", mgl64.Vec2{10, -0.5}, mgl64.Vec2{1, -3}, mgl64.Vec2{10, 0}, mgl64.Vec2{1, 0}},
		{"past right", mgl64.Vec2{601, 10}, mgl64.Vec2{4, 2}, mgl64.Vec2{600, 10}, mgl64.Vec2{0, 2}},
		{"corner", mgl64.Vec2{-1, 401}, mgl64.Vec2{-2, 2}, mgl64.Vec2{0, 400}, mgl64.Vec2{0, 0}},
		{"exactly at low edge", mgl64.Vec2{0, 0}, mgl64.Vec2{-1, -1}, mgl64.Vec2{0, 0}, mgl64.Vec2{-1, -1}},
		{"exactly at high edge", mgl64.Vec2{600, 400}, mgl64.Vec2{1, 1}, mgl64.Vec2{600, 400}, mgl64.Vec2{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dynamo.PhysicsState{Mass: 1, Position: tt.pos, Velocity: tt.vel}
			Reflective{}.Correct(&s, domain)
			if s.Position != tt.wantPos || s.Velocity != tt.wantVel {
				t.Errorf("got pos=%v vel=%v, want pos=%v vel=%v", s.Position, s.Velocity, tt.wantPos, tt.wantVel)
			}
		})
	}
}

func TestPeriodic(t *testing.T) {
	tests := []struct {
		name    string
		pos     mgl64.Vec2
		wantPos mgl64.Vec2
	}{
		{"inside", mgl64.Vec2{10, 10}, mgl64.Vec2{10, 10}},
		{"exit right", mgl64.Vec2{600.25, 10}, mgl64.Vec2{0.25, 10}},
		{"exit left", mgl64.Vec2{-0.5, 10}, mgl64.Vec2{599.5, 10}},
		{"exit bottom", mgl64.Vec2{5, -2}, mgl64.Vec2{5, 398}},
		{"exit top", mgl64.Vec2{5, 403}, mgl64.Vec2{5, 3}},
		{"far overshoot", mgl64.Vec2{1250, 10}, mgl64.Vec2{50, 10}},
		{"exactly at edges", mgl64.Vec2{0, 400}, mgl64.Vec2{0, 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vel := mgl64.Vec2{7, -3}
			s := dynamo.PhysicsState{Mass: 1, Position: tt.pos, Velocity: vel}
			Periodic{}.Correct(&s, domain)
			if s.Position != tt.wantPos {
				t.Errorf("position = %v, want %v", s.Position, tt.wantPos)
			}
			if s.Velocity != vel {
				t.Errorf("velocity changed: %v", s.Velocity)
			}
			if !domain.Contains(s.Position) {
				t.Errorf("position %v left the domain", s.Position)
			}
		})
	}
}

func TestElastic(t *testing.T) {
	s := dynamo.PhysicsState{Mass: 1, Position: mgl64.Vec2{50, -1}, Velocity: mgl64.Vec2{2, -10}}
	Elastic{}.Correct(&s, domain)
	if s.Position != (mgl64.Vec2{50, 0}) || s.Velocity != (mgl64.Vec2{2, 10}) {
		t.Errorf("got pos=%v vel=%v", s.Position, s.Velocity)
	}
}

func TestOpen(t *testing.T) {
	s := dynamo.PhysicsState{Mass: 1, Position: mgl64.Vec2{-50, 900}, Velocity: mgl64.Vec2{2, -10}}
	before := s
	Open{}.Correct(&s, domain)
	if s != before {
		t.Errorf("open boundary modified state: %+v", s)
	}
}

func TestNew(t *testing.T) {
	for _, mode := range Modes() {
		if _, err := New(mode); err != nil {
			t.Errorf("New(%q) failed: %v", mode, err)
		}
	}
	if b, err := New("Periodic"); err != nil {
		t.Errorf("mode lookup should ignore case: %v", err)
	} else if _, ok := b.(Periodic); !ok {
		t.Errorf("expected Periodic, got %T", b)
	}
	if _, err := New("sticky"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}
