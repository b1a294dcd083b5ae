package sim

import "github.com/san-kum/dicebox/internal/physics"

type Metric interface {
	Name() string
	Observe(w *physics.World, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *physics.World, t float64)
}

type Config struct {
	Dt              float64
	Duration        float64
	StopWhenSettled bool
	// SampleEvery records a frame every n steps; the first and last step are always kept.
	SampleEvery int
}

// Frame is a recorded snapshot of every body.
type Frame struct {
	Time   float64
	Bodies []physics.BodyState
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Settled    bool
	SettleTime float64
	Errors     []error
}
