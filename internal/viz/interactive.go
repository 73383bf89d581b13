package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/integrators"
)

var sceneInfo = map[string]string{
	"orbit":             "two-body gravity",
	"double_oscillator": "coupled springs",
	"triangle":          "anchored spring web",
	"chain":             "hanging chain",
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var paramNames = []string{"dt", "substeps", "integrator"}

type app struct {
	state, cursor int
	scenes        []string
	selected      *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	live          LiveModel
}

// NewInteractiveApp returns a menu over the built-in scenes that launches the
// live view.
func NewInteractiveApp() tea.Model {
	return app{state: stateMenu, scenes: config.ListPresets()}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state = stateConfig
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(LiveModel)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key)
		case stateConfig:
			return m.configKey(key)
		}
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenes)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = config.GetPreset(m.scenes[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			m.err = m.setParam(paramNames[m.paramCursor], m.editBuf)
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "enter", " ":
		m.editing, m.editBuf = true, m.param(paramNames[m.paramCursor])
	case "s":
		return m.start()
	}
	return m, nil
}

func (m app) param(name string) string {
	switch name {
	case "dt":
		return strconv.FormatFloat(m.selected.Dt, 'g', 6, 64)
	case "substeps":
		return strconv.Itoa(m.selected.Substeps)
	case "integrator":
		if m.selected.Integrator == "" {
			return "symplectic"
		}
		return m.selected.Integrator
	}
	return ""
}

func (m *app) setParam(name, value string) error {
	switch name {
	case "dt":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("dt: invalid value %q", value)
		}
		m.selected.Dt = v
	case "substeps":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return fmt.Errorf("substeps: invalid value %q", value)
		}
		m.selected.Substeps = v
	case "integrator":
		if _, err := integrators.New(value); err != nil {
			return err
		}
		m.selected.Integrator = value
	}
	return nil
}

// adjust nudges the selected parameter: dt and substeps scale by two, the
// integrator cycles through the registered schemes.
func (m *app) adjust(dir int) {
	switch paramNames[m.paramCursor] {
	case "dt":
		if dir > 0 {
			m.selected.Dt *= 2
		} else {
			m.selected.Dt /= 2
		}
	case "substeps":
		if dir > 0 {
			m.selected.Substeps *= 2
		} else {
			m.selected.Substeps = max(m.selected.Substeps/2, 1)
		}
	case "integrator":
		names := integrators.Names()
		cur := 0
		for i, n := range names {
			if n == m.param("integrator") {
				cur = i
			}
		}
		m.selected.Integrator = names[(cur+dir+len(names))%len(names)]
	}
}

func (m app) start() (app, tea.Cmd) {
	cfg := m.selected
	build := func() (*dynamo.Scene, error) { return cfg.Build() }
	live, err := NewLiveModel(cfg.Name, build, cfg.Dt, cfg.Substeps)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state, m.err = live, stateSim, nil
	return m, m.live.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuItem.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("MASSIM") + "\n    " + menuSub.Render("point-mass physics") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.scenes {
		desc := sceneInfo[name]
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-18s", name)), menuValue.Render(desc))
		} else {
			fmt.Fprintf(&b, "    %s  %s\n", menuItem.Render(fmt.Sprintf("  %-18s", name)), menuDim.Render(desc))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected.Name)) + "\n    " + menuSub.Render(sceneInfo[m.selected.Name]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range paramNames {
		val := fmt.Sprintf("%12s", m.param(name))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%12s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			fmt.Fprintf(&b, "    %s %s %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", name)), menuValue.Bold(true).Render(val))
		} else {
			fmt.Fprintf(&b, "    %s %s\n", menuItem.Render(fmt.Sprintf("  %-10s", name)), menuDim.Render(val))
		}
	}
	fmt.Fprintf(&b, "\n    %s\n", menuDim.Render(fmt.Sprintf("%d masses, %d springs, %d gravity groups", len(m.selected.Masses), len(m.selected.Springs), len(m.selected.Groups))))
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive runs the scene picker full screen.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
