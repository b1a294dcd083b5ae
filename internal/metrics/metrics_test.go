package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
)

func TestEnergyMean(t *testing.T) {
	w := physics.NewWorld(physics.WithGravity(mgl64.Vec3{}))
	w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithMass(2).WithVelocity(mgl64.Vec3{1, 0, 0}))

	e := NewEnergy()
	e.Observe(w, 0)
	e.Observe(w, 0.1)

	if math.Abs(e.Value()-1) > 1e-9 {
		t.Errorf("expected mean energy 1, got %f", e.Value())
	}
	if math.Abs(e.Last()-1) > 1e-9 {
		t.Errorf("expected last energy 1, got %f", e.Last())
	}

	e.Reset()
	if e.Value() != 0 {
		t.Error("reset should clear samples")
	}
}

func TestPeakSpeed(t *testing.T) {
	w := physics.NewWorld()
	w.AddBody(physics.NewBox(mgl64.Vec3{1, 1, 1}).WithVelocity(mgl64.Vec3{3, 4, 0}))
	w.AddBody(physics.NewBox(mgl64.Vec3{1, 1, 1}).WithVelocity(mgl64.Vec3{1, 0, 0}))

	p := NewPeakSpeed()
	p.Observe(w, 0)
	if p.Value() != 5 {
		t.Errorf("expected peak 5, got %f", p.Value())
	}
}

func TestSettleTime(t *testing.T) {
	w := physics.NewWorld()
	w.AddBody(physics.NewBox(mgl64.Vec3{1, 1, 1}))

	s := NewSettleTime(0.01)
	if s.Value() != -1 {
		t.Error("unsettled run should report -1")
	}
	s.Observe(w, 0.5)
	s.Observe(w, 0.6)
	if s.Value() != 0.5 {
		t.Errorf("expected settle time 0.5, got %f", s.Value())
	}
}

func TestPenetration(t *testing.T) {
	w := physics.NewWorld()
	w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithPosition(mgl64.Vec3{0, 0.4, 0}))

	p := NewPenetration()
	p.Observe(w, 0)
	if math.Abs(p.Value()-0.1) > 1e-9 {
		t.Errorf("expected 0.1 penetration, got %f", p.Value())
	}
}

func TestDefaultsHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
