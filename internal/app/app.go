// Package app holds the demo state and the update function that maps input
// events onto it. It performs no I/O of its own, so every front end (native
// window, browser hub, terminal) drives the same logic.
package app

import (
	"errors"
	"image"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/render"
	"github.com/san-kum/dicebox/internal/scene"
)

// MaxFrameDelta caps the time a single tick may advance the world.
const MaxFrameDelta = 0.1

type Msg interface{ msg() }

// Resize reports a new viewport size in pixels.
type Resize struct{ Width, Height int }

// Tick is one animation frame; Dt is the wall time since the previous frame.
type Tick struct{ Dt float64 }

// Click restarts the simulation with a new throw.
type Click struct{ X, Y float32 }

// TextureLoaded delivers the result of an asynchronous texture load.
type TextureLoaded render.TextureResult

type TogglePause struct{}

// Orbit moves the camera around its target.
type Orbit struct{ Yaw, Pitch float32 }

type Zoom struct{ Factor float32 }

// Reconfigure swaps the throw parameters (for example after a config reload).
type Reconfigure struct{ Params scene.Params }

func (Resize) msg()        {}
func (Tick) msg()          {}
func (Click) msg()         {}
func (TextureLoaded) msg() {}
func (TogglePause) msg()   {}
func (Orbit) msg()         {}
func (Zoom) msg()          {}
func (Reconfigure) msg()   {}

// Model is the demo state. Copies share the underlying scene.
type Model struct {
	Scene       *scene.Scene
	Width       int
	Height      int
	Perspective mgl32.Mat4
	Camera      render.Camera
	Light       render.Light
	GroundSize  float32

	DiceTexture  *image.RGBA
	TextureReady bool
	TextureErr   error

	Paused  bool
	Frame   uint64
	Elapsed float64
	Throws  int
	Err     error

	log *log.Logger
}

// New returns a model for a viewport of width x height showing sc.
func New(sc *scene.Scene, width, height int, logger *log.Logger) Model {
	if logger == nil {
		logger = log.Default()
	}
	m := Model{
		Scene:       sc,
		Camera:      render.DefaultCamera(),
		Light:       render.DefaultLight(),
		GroundSize:  float32(sc.Params().GroundSize),
		DiceTexture: render.FallbackTexture(),
		Throws:      1,
		log:         logger,
	}
	return m.resize(width, height)
}

// Update applies msg and returns the new model.
func (m Model) Update(msg Msg) Model {
	switch msg := msg.(type) {
	case Resize:
		return m.resize(msg.Width, msg.Height)
	case Tick:
		return m.tick(msg.Dt)
	case Click:
		m.Paused = false
		return m.restart()
	case TextureLoaded:
		if msg.Err != nil {
			m.TextureErr = msg.Err
			m.log.Printf("texture %s: %v (keeping fallback)", msg.Path, msg.Err)
			return m
		}
		m.DiceTexture = msg.Image
		m.TextureReady = true
		m.TextureErr = nil
	case TogglePause:
		m.Paused = !m.Paused
	case Orbit:
		m.Camera = m.Camera.Orbit(msg.Yaw, msg.Pitch)
	case Zoom:
		m.Camera = m.Camera.Zoom(msg.Factor)
	case Reconfigure:
		if err := m.Scene.SetParams(msg.Params); err != nil {
			m.Err = err
			m.log.Printf("reconfigure rejected: %v", err)
			return m
		}
		m.GroundSize = float32(msg.Params.GroundSize)
		m.Throws++
		m.Err = nil
	}
	return m
}

// resize ignores non-positive sizes (minimised windows report 0x0).
func (m Model) resize(width, height int) Model {
	if width <= 0 || height <= 0 {
		return m
	}
	m.Width, m.Height = width, height
	m.Perspective = render.Perspective(width, height)
	return m
}

func (m Model) tick(dt float64) Model {
	if m.Paused || !(dt > 0) {
		return m
	}
	if dt > MaxFrameDelta {
		dt = MaxFrameDelta
	}
	if err := m.Scene.Step(dt); err != nil {
		m.Err = err
		if errors.Is(err, physics.ErrUnstable) {
			m.log.Printf("world diverged, throwing again: %v", err)
			return m.restart()
		}
		m.log.Printf("step: %v", err)
		return m
	}
	m.Frame++
	m.Elapsed += dt
	return m
}

func (m Model) restart() Model {
	if err := m.Scene.Restart(); err != nil {
		m.Err = err
		m.log.Printf("restart: %v", err)
		return m
	}
	m.Throws++
	m.Elapsed = 0
	m.Err = nil
	return m
}

// View returns the frame-wide render inputs.
func (m Model) View() render.View {
	return render.View{
		Camera:      m.Camera.View(),
		Perspective: m.Perspective,
		GroundSize:  m.GroundSize,
	}
}

// Entities is the draw list for the current frame.
func (m Model) Entities() []render.Entity {
	return render.Entities(m.Scene.World(), m.View())
}
