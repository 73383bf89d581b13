package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/massim/internal/dynamo"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailLength     = 120
	gifPath         = "simulation.gif"
)

// Snapshot stores a frame for replay.
type Snapshot struct {
	Positions []dynamo.Vec2
	Time      float64
	Energy    float64
}

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Bold(true)
)

type TickMsg time.Time

// SceneBuilder returns a fresh scene in its initial state.
type SceneBuilder func() (*dynamo.Scene, error)

// LiveModel steps a scene once per tick and draws it.
type LiveModel struct {
	name          string
	build         SceneBuilder
	scene         *dynamo.Scene
	dt            float64
	substeps      int
	speed         int
	canvas        *Canvas
	view          Viewport
	masses        []float64
	links         []Link
	trails        [][]dynamo.Vec2
	showTrails    bool
	energyHistory []float64
	history       []Snapshot
	playHead      int
	running       bool
	recorder      *Recorder
	message       string
	showHelp      bool
	err           error
}

// NewLiveModel builds the initial scene and fits the view around it.
func NewLiveModel(name string, build SceneBuilder, dt float64, substeps int) (LiveModel, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return LiveModel{}, fmt.Errorf("%w: dt must be positive and finite, got %v", dynamo.ErrInvalidArgument, dt)
	}
	if substeps < 1 {
		return LiveModel{}, fmt.Errorf("%w: substeps must be at least 1, got %d", dynamo.ErrInvalidArgument, substeps)
	}
	m := LiveModel{
		name:       name,
		build:      build,
		dt:         dt,
		substeps:   substeps,
		speed:      1,
		canvas:     NewCanvas(width, height),
		showTrails: true,
		running:    true,
		playHead:   -1,
	}
	if err := m.reset(); err != nil {
		return LiveModel{}, err
	}
	return m, nil
}

// Scene returns the scene being stepped.
func (m LiveModel) Scene() *dynamo.Scene { return m.scene }

// Err is the error that stopped the simulation, if any.
func (m LiveModel) Err() error { return m.err }

// tickInterval paces ticks to simulated time, within display limits.
func (m LiveModel) tickInterval() time.Duration {
	d := time.Duration(m.dt * float64(time.Second))
	return min(max(d, time.Second/120), time.Second/10)
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(m.tickInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "up", "k":
			m.speed = min(m.speed*2, 64)
		case "down", "j":
			m.speed = max(m.speed/2, 1)
		case "+", "=":
			m.zoom(0.8)
		case "-", "_":
			m.zoom(1.25)
		case "f":
			m.view = FitViewport(m.scene.Positions(), 0.15, m.canvas)
		case "c":
			m.showTrails = !m.showTrails
			m.clearTrails()
		case "g":
			m.toggleRecording()
		case "t":
			m.message = "theme " + NextTheme().Name
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.speed && m.err == nil; i++ {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the scene by one outer step.
func (m *LiveModel) step() {
	frame, err := m.scene.Step(m.dt, m.substeps)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record(frame.Positions, frame.Time, frame.Energy)
	m.follow(frame.Positions)
}

func (m *LiveModel) record(positions []dynamo.Vec2, t, energy float64) {
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.history = append(m.history, Snapshot{Positions: positions, Time: t, Energy: energy})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if m.showTrails {
		for i, p := range positions {
			if m.masses[i] != 0 {
				m.trails[i] = appendTrail(m.trails[i], p, trailLength)
			}
		}
	}
}

// follow widens the view when a finite particle leaves it.
func (m *LiveModel) follow(positions []dynamo.Vec2) {
	for _, p := range positions {
		if p.IsFinite() && !m.view.Contains(p) {
			pts := append([]dynamo.Vec2{
				dynamo.V(m.view.MinX, m.view.MinY),
				dynamo.V(m.view.MaxX, m.view.MaxY),
			}, positions...)
			m.view = FitViewport(pts, 0.05, m.canvas)
			return
		}
	}
}

func (m *LiveModel) zoom(f float64) {
	cx, cy := (m.view.MinX+m.view.MaxX)/2, (m.view.MinY+m.view.MaxY)/2
	w, h := (m.view.MaxX-m.view.MinX)*f/2, (m.view.MaxY-m.view.MinY)*f/2
	m.view = Viewport{MinX: cx - w, MinY: cy - h, MaxX: cx + w, MaxY: cy + h}
}

// scrub changes the playback position in history.
func (m *LiveModel) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the scene from its initial state.
func (m *LiveModel) reset() error {
	scene, err := m.build()
	if err != nil {
		return fmt.Errorf("build scene %s: %w", m.name, err)
	}
	m.scene = scene
	m.masses = scene.Masses()
	m.links = Links(scene.Forces())
	m.view = FitViewport(scene.Positions(), 0.15, m.canvas)
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.err = nil
	m.clearTrails()
	m.record(scene.Positions(), 0, scene.Energy())
	return nil
}

func (m *LiveModel) clearTrails() {
	m.trails = make([][]dynamo.Vec2, len(m.masses))
}

func (m *LiveModel) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(max(int(m.tickInterval()/(10*time.Millisecond)), 1))
		m.message = "recording"
		return
	}
	if err := m.recorder.Save(gifPath); err != nil {
		m.message = err.Error()
	} else {
		m.message = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), gifPath)
	}
	m.recorder = nil
}

func (m *LiveModel) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) == 0 {
		return Snapshot{Positions: m.scene.Positions(), Time: m.scene.Time(), Energy: m.scene.Energy()}
	}
	return m.history[len(m.history)-1]
}

func (m *LiveModel) draw() {
	s := Sprite{Positions: m.current().Positions, Masses: m.masses, Links: m.links}
	if m.playHead == -1 {
		s.Trails = m.trails
	}
	Draw(m.canvas, m.view, s)
}

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Foreground(CurrentTheme.Error).Render("STOPPED")
	case m.recorder != nil:
		return StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len()))
	case m.playHead != -1:
		back := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.2fs)", back))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.2fs)", back))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

// View renders the canvas next to the stats panel.
func (m LiveModel) View() string {
	m.draw()
	snap := m.current()

	canvasView := canvasStyle.Foreground(CurrentTheme.Canvas).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Foreground(CurrentTheme.Header).Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n")
	if m.err != nil {
		s.WriteString(errorStyle.Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}

	if len(m.energyHistory) > 1 {
		if series := plottable(m.energyHistory); series != nil {
			chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}

	drift := 0.0
	if len(m.history) > 0 && m.history[0].Energy != 0 {
		drift = (snap.Energy - m.history[0].Energy) / math.Abs(m.history[0].Energy)
	}
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3fs", snap.Time))
	row("Energy", fmt.Sprintf("%.6g", snap.Energy))
	row("Drift", fmt.Sprintf("%+.3e", drift))
	row("Momentum", fmt.Sprintf("%.3e", m.scene.Momentum().Len()))
	row("Particles", fmt.Sprintf("%d", len(m.masses)))
	row("Springs", fmt.Sprintf("%d", len(m.links)))
	row("Scheme", m.scene.Integrator().Name())
	row("dt", fmt.Sprintf("%g × %d", m.dt, m.substeps))
	row("Speed", fmt.Sprintf("%dx", m.speed))
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Foreground(CurrentTheme.Help).Render("SP:Pause R:Reset Q:Quit\nG:Record T:Theme ?:Help\n[ ]:Time-Travel ↑↓:Speed"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return liveHelp + "\n\n" + mainView
	}
	return mainView
}

const liveHelp = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Up/K     - Double steps per tick    ║
║  Down/J   - Halve steps per tick     ║
║  + / -    - Zoom in / out            ║
║  F        - Fit view to particles    ║
║  C        - Toggle trails            ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunLive runs m full screen until the user quits.
func RunLive(m LiveModel) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if lm, ok := final.(LiveModel); ok && lm.err != nil {
		return lm.err
	}
	return nil
}
