package app

import "math"

// Input is one frame of raw window input, polled by a front end.
type Input struct {
	Dt float64

	Resized       bool
	Width, Height int

	Clicked        bool
	ClickX, ClickY float32

	PausePressed bool

	// OrbitX and OrbitY are in -1..1 per axis (arrow keys or a drag).
	OrbitX, OrbitY float32
	Wheel          float32
}

const (
	orbitSpeed = 1.5 // radians per second at full deflection
	wheelZoom  = 0.9 // distance factor per wheel notch
)

// Messages translates a frame of input into the updates to apply, in order:
// viewport changes first, then commands, then camera motion, then the tick.
func Messages(in Input) []Msg {
	msgs := make([]Msg, 0, 6)
	if in.Resized {
		msgs = append(msgs, Resize{Width: in.Width, Height: in.Height})
	}
	if in.PausePressed {
		msgs = append(msgs, TogglePause{})
	}
	if in.Clicked {
		msgs = append(msgs, Click{X: in.ClickX, Y: in.ClickY})
	}
	if in.OrbitX != 0 || in.OrbitY != 0 {
		s := float32(in.Dt) * orbitSpeed
		msgs = append(msgs, Orbit{Yaw: in.OrbitX * s, Pitch: in.OrbitY * s})
	}
	if in.Wheel != 0 {
		msgs = append(msgs, Zoom{Factor: float32(math.Pow(wheelZoom, float64(in.Wheel)))})
	}
	return append(msgs, Tick{Dt: in.Dt})
}

// Apply runs every message through Update.
func (m Model) Apply(msgs ...Msg) Model {
	for _, msg := range msgs {
		m = m.Update(msg)
	}
	return m
}
