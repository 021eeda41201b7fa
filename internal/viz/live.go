package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 300
	frameRate       = 60
	dragDots        = 3
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a cloth once per frame and draws it with a stats panel.
type Model struct {
	cfg    *config.Config
	name   string
	cloth  *cloth.Cloth
	canvas *Canvas
	camera *Camera
	edges  []Edge
	buf    []float32

	running bool
	cursor  int
	grabbed bool

	energy []float64
	iters  []float64
	last   cloth.StepResult
	err    error
}

// NewModel builds the cloth described by cfg.
func NewModel(cfg *config.Config, name string) (Model, error) {
	c, err := cfg.Build()
	if err != nil {
		return Model{}, err
	}
	m := Model{
		cfg:     cfg,
		name:    name,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
		running: true,
	}
	m.attach(c)
	return m, nil
}

func (m *Model) attach(c *cloth.Cloth) {
	m.cloth = c
	m.edges = MeshEdges(c.TriangleIndices())
	m.buf = make([]float32, c.PointCount()*cloth.VertexStride)
	m.cursor = c.Grid().Index(c.Grid().Height/2, c.Grid().Width/2)
	m.grabbed = false
	m.energy = make([]float64, 0, historyCapacity)
	m.iters = make([]float64, 0, historyCapacity)
	m.last = cloth.StepResult{}
	m.err = nil
}

func (m Model) Cloth() *cloth.Cloth { return m.cloth }
func (m Model) Cursor() int         { return m.cursor }
func (m Model) Running() bool       { return m.running }
func (m Model) Err() error          { return m.err }

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "w":
			m.toggleWind()
		case "p":
			m.togglePin()
		case "g":
			m.toggleGrab()
		case "up", "k":
			m.move(1, 0)
		case "down", "j":
			m.move(-1, 0)
		case "left", "h":
			m.move(0, -1)
		case "right", "l":
			m.move(0, 1)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			NextTheme()
		}
	case tea.WindowSizeMsg:
		w := max(20, min(120, msg.Width-50))
		h := max(10, msg.Height-4)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	res, err := m.cloth.Step(m.cfg.Dt)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last = res
	m.energy = appendCapped(m.energy, res.KineticEnergy)
	m.iters = appendCapped(m.iters, float64(res.Iterations))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	c, err := m.cfg.Build()
	if err != nil {
		m.err = err
		return
	}
	m.attach(c)
}

func (m *Model) toggleWind() {
	if m.cloth.WindMode() == cloth.WindDynamic {
		m.cloth.SetWindMode(cloth.WindConstant)
		v := m.cfg.Wind.Vector
		m.cloth.SetWind(r3.Vec{X: v[0], Y: v[1], Z: v[2]})
		return
	}
	m.cloth.SetWindMode(cloth.WindDynamic)
}

func (m *Model) togglePin() {
	if _, err := m.cloth.SetPointConstraint(m.cursor, cloth.Toggle); err != nil {
		m.err = err
	}
}

func (m *Model) toggleGrab() {
	var err error
	if m.grabbed {
		err = m.cloth.ReleaseDraggedPoint(m.cursor)
		m.grabbed = false
	} else {
		err = m.cloth.SetDraggedPoint(m.cursor, m.cloth.Position(m.cursor))
		m.grabbed = err == nil
	}
	if err != nil {
		m.err = err
	}
}

// move shifts the cursor by rows and cols, or the grabbed point by the
// same amount in screen space.
func (m *Model) move(rows, cols int) {
	if m.grabbed {
		sw, sh := m.canvas.Dots()
		d := m.camera.ScreenDelta(float64(cols*dragDots), float64(-rows*dragDots), sw, sh)
		_, target, _ := m.cloth.DraggedPoint()
		if err := m.cloth.SetDraggedPoint(m.cursor, r3.Add(target, d)); err != nil {
			m.err = err
		}
		return
	}
	g := m.cloth.Grid()
	row, col := m.cursor/g.Width, m.cursor%g.Width
	row = max(0, min(g.Height-1, row+rows))
	col = max(0, min(g.Width-1, col+cols))
	m.cursor = g.Index(row, col)
}

func (m *Model) draw() {
	m.canvas.Clear()
	_ = m.cloth.PopulateVertexBuffer(m.buf)
	pts := VertexPositions(m.buf, cloth.VertexStride)
	RenderMesh(m.canvas, pts, m.edges, m.camera)

	sw, sh := m.canvas.Dots()
	for _, i := range m.cloth.PinnedPoints() {
		if x, y, _, ok := m.camera.Project(pts[i], sw, sh); ok {
			m.canvas.Mark(x, y)
		}
	}
	if x, y, _, ok := m.camera.Project(pts[m.cursor], sw, sh); ok {
		for d := -2; d <= 2; d++ {
			m.canvas.Set(x+d, y-2)
			m.canvas.Set(x+d, y+2)
			m.canvas.Set(x-2, y+d)
			m.canvas.Set(x+2, y+d)
		}
	}
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.warn.Render("ERROR " + m.err.Error())
	case !m.running:
		return st.active.Render("PAUSED")
	case m.cloth.Asleep():
		return st.value.Render("ASLEEP")
	}
	return st.value.Render("RUNNING")
}

func (m Model) View() string {
	st := newStyles(CurrentTheme)
	m.draw()
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.title.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("V·V"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	c := m.cloth
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", c.Time()))
	row("Steps", fmt.Sprintf("%d", c.Steps()))
	row("Energy", fmt.Sprintf("%.5f", c.KineticEnergy()))
	conv := "yes"
	if !m.last.Converged && c.Steps() > 0 {
		conv = st.warn.Render("no")
	}
	row("CG", fmt.Sprintf("%d iters, converged %s", m.last.Iterations, conv))
	row("", Sparkline(m.iters, 24))
	row("Wind", c.WindMode().String())
	row("Pinned", fmt.Sprintf("%d", len(c.PinnedPoints())))
	if n := c.Params().SleepCount; n > 0 {
		row("Awake", ProgressBar(float64(c.Awake())/float64(n), 16))
	}

	cur := fmt.Sprintf("#%d %s", m.cursor, c.State(m.cursor))
	if m.grabbed {
		cur = st.active.Render(cur)
	}
	row("Cursor", cur)

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause .:Step R:Reset Q:Quit\nG:Grab P:Pin W:Wind T:Theme\n←↑↓→:Move X/Y:Rotate +/-:Zoom"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
}

// RunLive runs m full screen until the user quits.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
