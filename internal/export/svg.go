package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rk4box/internal/dynamo"
)

// TrajectoryToSVG draws points inside the domain rectangle, y up. A jump of
// more than half the domain on either axis (a periodic wrap) starts a new
// subpath instead of drawing a line across the box.
func TrajectoryToSVG(points []mgl64.Vec2, domain dynamo.Domain, width, height int, strokeColor string) string {
	if len(points) < 2 || domain.Validate() != nil {
		return ""
	}

	sx := float64(width) / domain.Width
	sy := float64(height) / domain.Height

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a" stroke="#444444"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := p[0] * sx
		y := float64(height) - p[1]*sy

		if i == 0 || wrapped(points[i-1], p, domain) {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	last := points[len(points)-1]
	sb.WriteString(fmt.Sprintf(`"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
</svg>`, last[0]*sx, float64(height)-last[1]*sy, strokeColor))
	return sb.String()
}

func wrapped(a, b mgl64.Vec2, d dynamo.Domain) bool {
	return math.Abs(b[0]-a[0]) > d.Width/2 || math.Abs(b[1]-a[1]) > d.Height/2
}

// Positions extracts the position track from a run.
func Positions(snaps []dynamo.Snapshot) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(snaps))
	for i, s := range snaps {
		out[i] = s.Position
	}
	return out
}
