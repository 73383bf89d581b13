package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/massim/internal/dynamo"
)

// PlaybackModel animates a recorded trajectory frame by frame.
type PlaybackModel struct {
	title    string
	series   []dynamo.ParticleSeries
	times    []float64
	energies []float64
	links    []Link
	frames   int
	frame    int
	stride   int
	interval time.Duration
	loop     bool
	running  bool
	canvas   *Canvas
	view     Viewport
	masses   []float64
	recorder *Recorder
	message  string
}

// NewPlaybackModel prepares playback of per-particle series sampled at times.
// energies may be nil. links are drawn between particles in every frame.
func NewPlaybackModel(title string, series []dynamo.ParticleSeries, times, energies []float64, links []Link) (PlaybackModel, error) {
	frames := len(times)
	for _, s := range series {
		if len(s.Positions) != frames {
			return PlaybackModel{}, fmt.Errorf("%w: particle %d has %d positions for %d frames",
				dynamo.ErrInvalidArgument, s.Index, len(s.Positions), frames)
		}
	}
	if frames == 0 {
		return PlaybackModel{}, fmt.Errorf("%w: no frames to play", dynamo.ErrInvalidArgument)
	}

	m := PlaybackModel{
		title:    title,
		series:   series,
		times:    times,
		energies: energies,
		links:    links,
		frames:   frames,
		stride:   1,
		interval: time.Second / 60,
		loop:     true,
		running:  true,
		canvas:   NewCanvas(width, height),
		masses:   make([]float64, len(series)),
	}
	if frames > 1 {
		if dt := times[1] - times[0]; dt > 0 {
			m.interval = min(max(time.Duration(dt*float64(time.Second)), time.Second/120), time.Second/10)
		}
	}

	var all []dynamo.Vec2
	for i, s := range series {
		m.masses[i] = s.Mass
		all = append(all, s.Positions...)
	}
	m.view = FitViewport(all, 0.05, m.canvas)
	return m, nil
}

// Frame is the index of the frame on screen.
func (m PlaybackModel) Frame() int { return m.frame }

func (m PlaybackModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m PlaybackModel) Init() tea.Cmd { return m.tick() }

func (m PlaybackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r", "home":
			m.frame = 0
		case "end":
			m.frame = m.frames - 1
		case "[", "left", "h":
			m.seek(-m.stride)
		case "]", "right", "l":
			m.seek(m.stride)
		case "up", "k":
			m.stride = min(m.stride*2, 256)
		case "down", "j":
			m.stride = max(m.stride/2, 1)
		case "o":
			m.loop = !m.loop
		case "g":
			m.toggleRecording()
		case "t":
			m.message = "theme " + NextTheme().Name
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		if m.recorder != nil {
			m.draw()
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

// advance moves stride frames forward, wrapping or stopping at the end.
func (m *PlaybackModel) advance() {
	next := m.frame + m.stride
	if next < m.frames {
		m.frame = next
		return
	}
	if m.loop {
		m.frame = 0
		return
	}
	m.frame = m.frames - 1
	m.running = false
}

func (m *PlaybackModel) seek(delta int) {
	m.running = false
	m.frame = min(max(m.frame+delta, 0), m.frames-1)
}

func (m *PlaybackModel) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(max(int(m.interval/(10*time.Millisecond)), 1))
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

func (m *PlaybackModel) draw() {
	s := Sprite{
		Positions: make([]dynamo.Vec2, len(m.series)),
		Masses:    m.masses,
		Links:     m.links,
		Trails:    make([][]dynamo.Vec2, len(m.series)),
	}
	from := max(m.frame-trailLength, 0)
	for i, ps := range m.series {
		s.Positions[i] = ps.Positions[m.frame]
		if m.masses[i] != 0 {
			s.Trails[i] = ps.Positions[from : m.frame+1]
		}
	}
	Draw(m.canvas, m.view, s)
}

func (m PlaybackModel) View() string {
	m.draw()

	var s strings.Builder
	s.WriteString(HeaderStyle.Foreground(CurrentTheme.Header).Render(strings.ToUpper(m.title)) + "\n")
	status := StatusRunning.Render("PLAYING")
	if m.recorder != nil {
		status = StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len()))
	} else if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3fs", m.times[m.frame]))
	row("Frame", fmt.Sprintf("%d/%d", m.frame, m.frames-1))
	if m.frame < len(m.energies) {
		row("Energy", fmt.Sprintf("%.6g", m.energies[m.frame]))
	}
	row("Particles", fmt.Sprintf("%d", len(m.series)))
	row("Stride", fmt.Sprintf("%d", m.stride))
	row("Loop", fmt.Sprintf("%t", m.loop))
	s.WriteString("\n" + ProgressBar(float64(m.frame)/float64(max(m.frames-1, 1)), 30) + "\n")
	if len(m.energies) > 0 {
		s.WriteString(Sparkline(m.energies, 30) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Foreground(CurrentTheme.Help).Render("SP:Pause R:Restart Q:Quit\n[ ]:Seek ↑↓:Stride O:Loop\nG:Record T:Theme"))

	canvasView := canvasStyle.Foreground(CurrentTheme.Canvas).Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// RunPlayback runs m full screen until the user quits.
func RunPlayback(m PlaybackModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
