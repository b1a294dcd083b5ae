package metrics

import (
	"github.com/san-kum/dicebox/internal/physics"
)

// Energy is the mean total kinetic energy over the run.
type Energy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *physics.World, t float64) {
	e.last = w.KineticEnergy()
	e.total += e.last
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last is the most recently observed energy.
func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
	e.last = 0
}

// PeakSpeed is the fastest linear speed any box reached.
type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(w *physics.World, t float64) {
	p.peak = physics.Foldl(w, p.peak, func(peak float64, b physics.BodyState) float64 {
		if v := b.Velocity.Len(); v > peak {
			return v
		}
		return peak
	})
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }
