// Package tui is the terminal front end: a bubbletea program that steps the
// shared app model and draws the boxes as braille wireframes.
package tui

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dicebox/internal/app"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/scene"
	"github.com/san-kum/dicebox/internal/viz"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	statsWidth      = 40
	historyCapacity = 300
	gridLines       = 9
	orbitStep       = 0.1
	zoomStep        = 1.15
)

type TickMsg time.Time

// Model adapts app.Model to bubbletea.
type Model struct {
	app           app.Model
	fps           int
	lastTick      time.Time
	width, height int
	canvas        *viz.Canvas
	energy        []float64
}

func NewModel(sc *scene.Scene, fps int, logger *log.Logger) Model {
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		app:    app.New(sc, defaultWidth, defaultHeight, logger),
		fps:    fps,
		energy: make([]float64, 0, historyCapacity),
	}
	return m.resize(defaultWidth, defaultHeight)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r", "enter":
			m.app = m.app.Update(app.Click{})
			m.energy = m.energy[:0]
		case " ":
			m.app = m.app.Update(app.TogglePause{})
		case "left", "h":
			m.app = m.app.Update(app.Orbit{Yaw: -orbitStep})
		case "right", "l":
			m.app = m.app.Update(app.Orbit{Yaw: orbitStep})
		case "up", "k":
			m.app = m.app.Update(app.Orbit{Pitch: orbitStep})
		case "down", "j":
			m.app = m.app.Update(app.Orbit{Pitch: -orbitStep})
		case "+", "=":
			m.app = m.app.Update(app.Zoom{Factor: 1 / zoomStep})
		case "-", "_":
			m.app = m.app.Update(app.Zoom{Factor: zoomStep})
		}
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil
	case TickMsg:
		now := time.Time(msg)
		dt := 1 / float64(m.fps)
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now
		m = m.step(dt)
		return m, m.tick()
	}
	return m, nil
}

func (m Model) step(dt float64) Model {
	before := m.app.Throws
	m.app = m.app.Update(app.Tick{Dt: dt})
	if m.app.Throws != before {
		m.energy = m.energy[:0]
	}
	if m.app.Paused {
		return m
	}
	m.energy = append(m.energy, m.app.Scene.World().KineticEnergy())
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
	return m
}

// resize gives the canvas whatever the stats column leaves free.
func (m Model) resize(w, h int) Model {
	m.width, m.height = w, h
	cw, ch := w-statsWidth-6, h-4
	if cw < 10 {
		cw = 10
	}
	if ch < 5 {
		ch = 5
	}
	m.canvas = viz.NewCanvas(cw, ch)
	dw, dh := m.canvas.Dots()
	m.app = m.app.Update(app.Resize{Width: dw, Height: dh})
	return m
}

// App exposes the wrapped model, mostly for tests.
func (m Model) App() app.Model { return m.app }

func (m Model) draw() {
	m.canvas.Clear()
	wf := viz.WorldWireframe(m.app.Scene.World(), float64(m.app.GroundSize)/4, gridLines)
	viz.Render3D(m.canvas, wf, m.app.Camera)
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	w := m.app.Scene.World()
	status := runningStyle.Render("RUNNING")
	switch {
	case m.app.Paused:
		status = pausedStyle.Render("PAUSED")
	case w.Settled():
		status = runningStyle.Render("SETTLED")
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("DICEBOX") + "\n")
	s.WriteString(status + "\n\n")
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("throw", fmt.Sprintf("#%d", m.app.Throws))
	row("seed", fmt.Sprintf("%d", m.app.Scene.ThrowSeed()))
	row("boxes", fmt.Sprintf("%d", boxCount(w)))
	row("time", fmt.Sprintf("%.2fs", m.app.Elapsed))
	row("energy", fmt.Sprintf("%.3f J", w.KineticEnergy()))
	row("asleep", fmt.Sprintf("%d", asleepCount(w)))
	if m.app.Err != nil {
		s.WriteString("\n" + errorStyle.Render(m.app.Err.Error()) + "\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(statsWidth-12), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("r restart  space pause\narrows orbit  +/- zoom  q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func boxCount(w *physics.World) int {
	return physics.Foldl(w, 0, func(n int, b physics.BodyState) int {
		if b.Kind == physics.KindBox {
			n++
		}
		return n
	})
}

func asleepCount(w *physics.World) int {
	return physics.Foldl(w, 0, func(n int, b physics.BodyState) int {
		if b.Sleeping {
			n++
		}
		return n
	})
}

// Run starts the terminal front end and blocks until the user quits.
func Run(sc *scene.Scene, fps int, logger *log.Logger) error {
	_, err := tea.NewProgram(NewModel(sc, fps, logger), tea.WithAltScreen()).Run()
	return err
}
