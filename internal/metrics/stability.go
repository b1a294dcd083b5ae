package metrics

import (
	"math"

	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/sim"
)

// SettleTime records when kinetic energy last dropped below threshold and
// stayed there. An unsettled run reports -1.
type SettleTime struct {
	name      string
	threshold float64
	since     float64
	below     bool
}

func NewSettleTime(threshold float64) *SettleTime {
	return &SettleTime{
		name:      "settle_time",
		threshold: threshold,
	}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(w *physics.World, t float64) {
	if w.KineticEnergy() < s.threshold {
		if !s.below {
			s.below = true
			s.since = t
		}
		return
	}
	s.below = false
}

func (s *SettleTime) Value() float64 {
	if !s.below {
		return -1
	}
	return s.since
}

func (s *SettleTime) Reset() {
	s.below = false
	s.since = 0
}

// Penetration tracks the deepest any box corner sank below the ground plane
// at y=0, a direct measure of solver quality.
type Penetration struct {
	name  string
	worst float64
}

func NewPenetration() *Penetration {
	return &Penetration{name: "max_penetration"}
}

func (p *Penetration) Name() string { return p.name }

func (p *Penetration) Observe(w *physics.World, t float64) {
	p.worst = physics.Foldl(w, p.worst, func(worst float64, b physics.BodyState) float64 {
		for _, c := range b.Corners() {
			worst = math.Max(worst, -c.Y())
		}
		return worst
	})
}

func (p *Penetration) Value() float64 { return p.worst }
func (p *Penetration) Reset()         { p.worst = 0 }

// Defaults is the metric set recorded for every run.
func Defaults() []sim.Metric {
	return []sim.Metric{NewEnergy(), NewPeakSpeed(), NewSettleTime(0.01), NewPenetration()}
}
