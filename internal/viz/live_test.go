package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Width, cfg.Grid.Height = 5, 5
	return cfg
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := NewModel(smallConfig(), "drape")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModelTickSteps(t *testing.T) {
	m := newTestModel(t)
	m = send(m, TickMsg(time.Now()), TickMsg(time.Now()))
	if got := m.Cloth().Steps(); got != 2 {
		t.Errorf("expected 2 steps, got %d", got)
	}

	m = send(m, key(" "), TickMsg(time.Now()))
	if m.Running() {
		t.Error("space should pause")
	}
	if got := m.Cloth().Steps(); got != 2 {
		t.Errorf("paused model stepped: %d", got)
	}

	m = send(m, key("."))
	if got := m.Cloth().Steps(); got != 3 {
		t.Errorf("single step while paused: expected 3, got %d", got)
	}
}

func TestModelCursorAndPin(t *testing.T) {
	m := newTestModel(t)
	start := m.Cursor()
	g := m.Cloth().Grid()

	m = send(m, key("up"), key("left"))
	if want := start + g.Width - 1; m.Cursor() != want {
		t.Errorf("expected cursor %d, got %d", want, m.Cursor())
	}

	for i := 0; i < 10; i++ {
		m = send(m, key("up"))
	}
	if row := m.Cursor() / g.Width; row != g.Height-1 {
		t.Errorf("cursor should clamp at the top row, got row %d", row)
	}

	m = send(m, key("p"))
	if !m.Cloth().IsPinned(m.Cursor()) {
		t.Error("p should pin the point under the cursor")
	}
	m = send(m, key("p"))
	if m.Cloth().IsPinned(m.Cursor()) {
		t.Error("second p should unpin")
	}
}

func TestModelGrabMovesTarget(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key(" ")) // pause
	i := m.Cursor()
	before := m.Cloth().Position(i)

	m = send(m, key("g"))
	if m.Cloth().State(i) != cloth.Dragged {
		t.Fatalf("expected dragged, got %s", m.Cloth().State(i))
	}

	m = send(m, key("up"))
	if m.Cursor() != i {
		t.Error("cursor moved while grabbing")
	}
	_, target, _ := m.Cloth().DraggedPoint()
	if target.Y <= before.Y {
		t.Errorf("expected the target to move up: %v -> %v", before, target)
	}

	m = send(m, key("g"))
	if m.Cloth().State(i) != cloth.Free {
		t.Errorf("expected free after release, got %s", m.Cloth().State(i))
	}
}

func TestModelWindAndReset(t *testing.T) {
	m := newTestModel(t)
	m = send(m, key("w"))
	if m.Cloth().WindMode() != cloth.WindDynamic {
		t.Error("w should enable dynamic wind")
	}
	m = send(m, TickMsg(time.Now()), key("r"))
	if m.Cloth().Steps() != 0 || m.Cloth().WindMode() != cloth.WindConstant {
		t.Error("reset should rebuild the cloth from config")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	m = send(m, TickMsg(time.Now()), TickMsg(time.Now()))
	v := m.View()
	for _, want := range []string{"DRAPE", "RUNNING", "Cursor"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestMenuFlow(t *testing.T) {
	var menu tea.Model = NewMenu()
	step := func(msg tea.Msg) {
		menu, _ = menu.Update(msg)
	}

	step(key("j")) // drape
	step(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(menu.View(), "DRAPE") {
		t.Fatalf("expected the drape config screen:\n%s", menu.View())
	}

	step(key("l")) // width + 1
	step(key("s"))
	mm := menu.(Menu)
	if mm.state != stateSim {
		t.Fatalf("expected live state, err %v", mm.err)
	}
	if got := mm.live.Cloth().Grid().Width; got != config.DefaultSize+1 {
		t.Errorf("expected width %d, got %d", config.DefaultSize+1, got)
	}
}
