package tui

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dicebox/internal/scene"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	sc, err := scene.New(scene.DefaultParams(), 3)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	return NewModel(sc, 30, log.New(io.Discard, "", 0))
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTickStepsWorld(t *testing.T) {
	m := newTestModel(t)
	start := time.Now()

	m, cmd := update(t, m, TickMsg(start))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	m, _ = update(t, m, TickMsg(start.Add(time.Second/30)))

	if m.App().Frame != 2 {
		t.Errorf("expected 2 frames, got %d", m.App().Frame)
	}
	if len(m.energy) != 2 {
		t.Errorf("expected 2 energy samples, got %d", len(m.energy))
	}
}

func TestPauseAndRestart(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, key(" "))
	if !m.App().Paused {
		t.Fatal("space should pause")
	}

	m, _ = update(t, m, TickMsg(time.Now()))
	if m.App().Frame != 0 {
		t.Error("paused model should not step")
	}

	seed := m.App().Scene.ThrowSeed()
	m, _ = update(t, m, key("r"))
	if m.App().Paused {
		t.Error("restart should resume")
	}
	if m.App().Scene.ThrowSeed() == seed {
		t.Error("restart should throw again")
	}
	if m.App().Throws != 2 {
		t.Errorf("expected 2 throws, got %d", m.App().Throws)
	}

	m, _ = update(t, m, key("enter"))
	if m.App().Throws != 3 {
		t.Errorf("enter should also restart, got %d throws", m.App().Throws)
	}
}

func TestOrbitKeys(t *testing.T) {
	m := newTestModel(t)
	yaw, pitch := m.App().Camera.Yaw, m.App().Camera.Pitch

	m, _ = update(t, m, key("left"))
	m, _ = update(t, m, key("up"))
	if m.App().Camera.Yaw >= yaw {
		t.Error("left should decrease yaw")
	}
	if m.App().Camera.Pitch <= pitch {
		t.Error("up should increase pitch")
	}

	dist := m.App().Camera.Distance
	m, _ = update(t, m, key("+"))
	if m.App().Camera.Distance >= dist {
		t.Error("+ should zoom in")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.canvas.Width != 120-statsWidth-6 || m.canvas.Height != 36 {
		t.Errorf("unexpected canvas %dx%d", m.canvas.Width, m.canvas.Height)
	}
	dw, dh := m.canvas.Dots()
	if m.App().Width != dw || m.App().Height != dh {
		t.Errorf("viewport %dx%d does not match canvas dots %dx%d", m.App().Width, m.App().Height, dw, dh)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 3})
	if m.canvas.Width < 10 || m.canvas.Height < 5 {
		t.Error("canvas should keep a minimum size")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	start := time.Now()
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, TickMsg(start.Add(time.Duration(i)*time.Second/30)))
	}
	out := m.View()
	for _, want := range []string{"DICEBOX", "RUNNING", "throw", "energy", "kinetic energy"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
