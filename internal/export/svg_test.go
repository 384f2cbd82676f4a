package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

func TestTrajectoryToSVG(t *testing.T) {
	domain := dynamo.Domain{Width: 100, Height: 50}
	points := []mgl64.Vec2{{0, 0}, {50, 25}, {100, 50}}

	svg := TrajectoryToSVG(points, domain, 200, 100, "#00ff00")

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed svg: %q", svg)
	}
	if !strings.Contains(svg, `d="M0.0,100.0 L100.0,50.0 L200.0,0.0"`) {
		t.Errorf("unexpected path: %s", svg)
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("stroke color missing")
	}
}

func TestTrajectoryToSVGSplitsOnWrap(t *testing.T) {
	domain := dynamo.Domain{Width: 100, Height: 100}
	points := []mgl64.Vec2{{90, 50}, {99, 50}, {2, 50}, {10, 50}}

	svg := TrajectoryToSVG(points, domain, 100, 100, "red")
	if strings.Count(svg, "M") != 2 {
		t.Errorf("expected two subpaths: %s", svg)
	}
}

func TestTrajectoryToSVGDegenerate(t *testing.T) {
	if TrajectoryToSVG([]mgl64.Vec2{{1, 1}}, dynamo.Domain{Width: 1, Height: 1}, 10, 10, "red") != "" {
		t.Error("single point should render nothing")
	}
	if TrajectoryToSVG([]mgl64.Vec2{{1, 1}, {2, 2}}, dynamo.Domain{}, 10, 10, "red") != "" {
		t.Error("invalid domain should render nothing")
	}
}

func TestPositions(t *testing.T) {
	snaps := []dynamo.Snapshot{{Position: mgl64.Vec2{1, 2}}, {Position: mgl64.Vec2{3, 4}}}
	got := Positions(snaps)
	if len(got) != 2 || got[1] != (mgl64.Vec2{3, 4}) {
		t.Errorf("Positions() = %v", got)
	}
}
