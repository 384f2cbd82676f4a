package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rk4box/internal/dynamo"
	"github.com/san-kum/rk4box/internal/sim"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 300
	trailLength     = 120
	frameRate       = 60

	// DefaultHoldTicks is how long one key press keeps its force applied.
	DefaultHoldTicks = 12
	maxStepsPerFrame = 8
)

type TickMsg time.Time

// hold is one key press waiting for its synthetic release.
type hold struct {
	axis      dynamo.Axis
	delta     float64
	remaining int
}

type point struct{ x, y int }

// Model is the Bubble Tea shell around one simulator.
type Model struct {
	sim           *sim.Simulator
	acc           *sim.Accumulator
	name          string
	increment     float64
	holdTicks     int
	holds         []hold
	last          time.Time
	snap          dynamo.Snapshot
	canvas        *Canvas
	trail         []point
	speedHistory  []float64
	running       bool
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	keys          KeyMap
	help          help.Model
	err           error
}

// NewModel wraps s. Each push adds increment to the applied force for
// DefaultHoldTicks ticks.
func NewModel(s *sim.Simulator, name string, increment float64) Model {
	params := s.Params()
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	h := help.New()
	h.ShowAll = false

	return Model{
		sim:           s,
		acc:           sim.NewAccumulator(s.Context().Dt, maxStepsPerFrame),
		name:          name,
		increment:     increment,
		holdTicks:     DefaultHoldTicks,
		holds:         make([]hold, 0, 4),
		snap:          s.Snapshot(),
		canvas:        NewCanvas(width, height),
		trail:         make([]point, 0, trailLength),
		speedHistory:  make([]float64, 0, historyCapacity),
		running:       true,
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		keys:          DefaultKeyMap(),
		help:          h,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Left):
			m.push(dynamo.AxisX, -m.increment)
		case key.Matches(msg, m.keys.Right):
			m.push(dynamo.AxisX, m.increment)
		case key.Matches(msg, m.keys.Up):
			m.push(dynamo.AxisY, m.increment)
		case key.Matches(msg, m.keys.Down):
			m.push(dynamo.AxisY, -m.increment)
		case key.Matches(msg, m.keys.Release):
			m.releaseAll()
		case key.Matches(msg, m.keys.Pause):
			m.running = !m.running
		case key.Matches(msg, m.keys.Reset):
			m.reset()
		case key.Matches(msg, m.keys.Param):
			m.cycleParam()
		case key.Matches(msg, m.keys.Raise):
			m.adjustParam(1.05)
		case key.Matches(msg, m.keys.Lower):
			m.adjustParam(0.95)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case TickMsg:
		now := time.Time(msg)
		if m.running && !m.last.IsZero() {
			m.advance(m.acc.Add(now.Sub(m.last)))
		}
		m.last = now
		return m, tick()
	}
	return m, nil
}

// push applies delta and schedules the matching release. Only the part of
// delta that survived clamping is released, so stacked pushes against the
// limit unwind back to where they started.
func (m *Model) push(axis dynamo.Axis, delta float64) {
	before := m.sim.Snapshot().AppliedForce[axis]
	if err := m.sim.ApplyForceDelta(axis, delta); err != nil {
		m.err = err
		return
	}
	m.snap = m.sim.Snapshot()
	if applied := m.snap.AppliedForce[axis] - before; applied != 0 {
		m.holds = append(m.holds, hold{axis: axis, delta: applied, remaining: m.holdTicks})
	}
}

func (m *Model) releaseAll() {
	for _, h := range m.holds {
		m.release(h)
	}
	m.holds = m.holds[:0]
	m.snap = m.sim.Snapshot()
}

func (m *Model) release(h hold) {
	if err := m.sim.ReleaseForceDelta(h.axis, h.delta); err != nil {
		m.err = err
	}
}

// advance runs n fixed ticks. Expired holds are released before the tick
// they expire on, the same ordering a scripted schedule uses.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		kept := m.holds[:0]
		for _, h := range m.holds {
			if h.remaining <= 0 {
				m.release(h)
				continue
			}
			h.remaining--
			kept = append(kept, h)
		}
		m.holds = kept

		m.snap = m.sim.Tick()
		m.record()
	}
}

func (m *Model) record() {
	m.speedHistory = append(m.speedHistory, m.snap.Velocity.Len())
	if len(m.speedHistory) > historyCapacity {
		m.speedHistory = m.speedHistory[1:]
	}

	x, y := m.project(m.snap.Position)
	m.trail = append(m.trail, point{x, y})
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	k := m.paramKeys[m.selected]
	val := m.params[k] * factor
	if err := m.sim.SetParam(k, val); err != nil {
		m.err = err
		return
	}
	m.params[k] = val
}

// reset restores the initial state and parameters.
func (m *Model) reset() {
	m.sim.Reset()
	m.err = nil
	for k, v := range m.initialParams {
		if err := m.sim.SetParam(k, v); err != nil {
			m.err = err
			continue
		}
		m.params[k] = v
	}
	m.holds = m.holds[:0]
	m.trail = m.trail[:0]
	m.speedHistory = m.speedHistory[:0]
	m.acc.Reset()
	m.snap = m.sim.Snapshot()
}

// project maps domain coordinates to canvas dots, y up, leaving a
// one-dot frame for the border.
func (m *Model) project(p mgl64.Vec2) (int, int) {
	cw, ch := m.canvas.Dots()
	d := m.sim.Domain()
	x := 1 + int(p[0]/d.Width*float64(cw-3))
	y := ch - 2 - int(p[1]/d.Height*float64(ch-3))
	return x, y
}

func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := m.canvas.Dots()
	m.canvas.DrawRect(0, 0, cw-1, ch-1)
	for _, pt := range m.trail {
		m.canvas.Set(pt.x, pt.y)
	}
	x, y := m.project(m.snap.Position)
	m.canvas.Blob(x, y, 1)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.speedHistory) > 1 {
		chart := asciigraph.Plot(m.speedHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Speed"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", m.snap.Tick))
	row("Time", fmt.Sprintf("%.2fs", m.snap.Time))
	row("Position", fmt.Sprintf("(%.1f, %.1f)", m.snap.Position[0], m.snap.Position[1]))
	row("Velocity", fmt.Sprintf("(%.1f, %.1f)", m.snap.Velocity[0], m.snap.Velocity[1]))
	if e, ok := m.sim.Energy(); ok {
		row("Energy", fmt.Sprintf("%.1f", e))
	}
	fmax := m.sim.ForceMax()
	row("Force x", ForceBar(m.snap.AppliedForce[0], fmax, 20))
	row("Force y", ForceBar(m.snap.AppliedForce[1], fmax, 20))

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) > 0 {
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-10s %.3f", k, m.params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + paramStyle.Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + StatusPaused.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + m.help.View(m.keys))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// Run starts the live view on the terminal and blocks until the user quits.
func Run(s *sim.Simulator, name string, increment float64) error {
	p := tea.NewProgram(NewModel(s, name, increment), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
