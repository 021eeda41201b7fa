package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/clothsim/internal/config"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one tunable entry of the config screen.
type field struct {
	name   string
	get    func(*config.Config) float64
	set    func(*config.Config, float64)
	step   float64 // additive for integers, multiplicative otherwise
	isInt  bool
	minVal float64
}

var fields = []field{
	{"width", func(c *config.Config) float64 { return float64(c.Grid.Width) },
		func(c *config.Config, v float64) { c.Grid.Width = int(v) }, 1, true, 2},
	{"height", func(c *config.Config) float64 { return float64(c.Grid.Height) },
		func(c *config.Config, v float64) { c.Grid.Height = int(v) }, 1, true, 2},
	{"dt", func(c *config.Config) float64 { return c.Dt },
		func(c *config.Config, v float64) { c.Dt = v }, 1.25, false, 1e-4},
	{"gravity", func(c *config.Config) float64 { return c.Physics.Gravity },
		func(c *config.Config, v float64) { c.Physics.Gravity = v }, 1.25, false, 0},
	{"struct_k", func(c *config.Config) float64 { return c.Physics.StructK },
		func(c *config.Config, v float64) { c.Physics.StructK = v }, 2, false, 1},
	{"damp_air", func(c *config.Config) float64 { return c.Physics.DampAir },
		func(c *config.Config, v float64) { c.Physics.DampAir = v }, 1.25, false, 0},
	{"tension", func(c *config.Config) float64 { return c.Grid.Tension },
		func(c *config.Config, v float64) { c.Grid.Tension = v }, 1.02, false, 0.5},
}

// Menu picks a preset, tunes a few values and starts a live Model.
type Menu struct {
	state   int
	cursor  int
	presets []string
	cfg     *config.Config
	field   int
	err     error
	live    Model
}

func NewMenu() Menu {
	return Menu{state: stateMenu, presets: config.ListPresets()}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.state == stateConfig {
		return m.configKey(key)
	}
	return m.menuKey(key)
}

func (m Menu) menuKey(msg tea.KeyMsg) (Menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(m.presets)-1, m.cursor+1)
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.field, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m Menu) configKey(msg tea.KeyMsg) (Menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateMenu
	case "up", "k":
		m.field = max(0, m.field-1)
	case "down", "j":
		m.field = min(len(fields)-1, m.field+1)
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "s", "enter":
		return m.start()
	}
	return m, nil
}

func (m *Menu) adjust(dir int) {
	f := fields[m.field]
	v := f.get(m.cfg)
	switch {
	case f.isInt:
		v += float64(dir) * f.step
	case dir > 0:
		v *= f.step
	default:
		v /= f.step
	}
	// gravity is negative; clamp its magnitude instead
	if v >= 0 && v < f.minVal {
		v = f.minVal
	}
	f.set(m.cfg, v)
}

func (m Menu) start() (Menu, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	live, err := NewModel(m.cfg, m.presets[m.cursor])
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state = live, stateSim
	return m, m.live.Init()
}

func (m Menu) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func (m Menu) header(title, sub string) string {
	st := newStyles(CurrentTheme)
	rule := lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render("─────────────────────────")
	return "\n\n    " + st.title.Render(title) + "\n    " + st.label.UnsetWidth().Render(sub) + "\n    " + rule + "\n\n"
}

func (m Menu) viewMenu() string {
	st := newStyles(CurrentTheme)
	var b strings.Builder
	b.WriteString(m.header("CLOTHSIM", "implicit mass-spring cloth"))
	for i, name := range m.presets {
		desc := config.Presets[name].Description
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.active.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-10s", name)), st.active.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.label.UnsetWidth().Render(fmt.Sprintf("%-10s", name)), st.help.UnsetMargins().Render(desc)))
		}
	}
	b.WriteString("\n    " + st.help.UnsetMargins().Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

func (m Menu) viewConfig() string {
	st := newStyles(CurrentTheme)
	var b strings.Builder
	name := m.presets[m.cursor]
	b.WriteString(m.header(strings.ToUpper(name), config.Presets[name].Description))
	for i, f := range fields {
		val := fmt.Sprintf("%10.4g", f.get(m.cfg))
		if i == m.field {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", st.active.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-10s", f.name)), st.active.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", st.label.UnsetWidth().Render(fmt.Sprintf("%-10s", f.name)), st.value.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.warn.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.help.UnsetMargins().Render("j/k select  h/l adjust  s start  esc back") + "\n")
	return b.String()
}

func RunMenu() error {
	_, err := tea.NewProgram(NewMenu(), tea.WithAltScreen()).Run()
	return err
}
