package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	paramStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	forcePos = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	forceNeg = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// ForceBar renders value in [-max, max] as a bar growing out from the
// middle of a track of the given width.
func ForceBar(value, max float64, width int) string {
	half := width / 2
	if max <= 0 || half == 0 {
		return strings.Repeat("─", width)
	}
	n := int(value / max * float64(half))
	if n > half {
		n = half
	}
	if n < -half {
		n = -half
	}

	switch {
	case n > 0:
		return strings.Repeat("░", half) + forcePos.Render(strings.Repeat("█", n)) + strings.Repeat("░", width-half-n)
	case n < 0:
		return strings.Repeat("░", half+n) + forceNeg.Render(strings.Repeat("█", -n)) + strings.Repeat("░", width-half)
	}
	return strings.Repeat("░", half) + "│" + strings.Repeat("░", width-half-1)
}
