package scene

import (
	"math/rand"
	"testing"

	"github.com/san-kum/dicebox/internal/physics"
)

func TestGeneratePlaneFirst(t *testing.T) {
	w, err := Generate(DefaultParams(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	bodies := w.Bodies()
	if bodies[0].Kind != physics.KindPlane {
		t.Errorf("expected plane first, got %s", bodies[0].Kind)
	}
	for _, b := range bodies[1:] {
		if b.Kind != physics.KindBox {
			t.Errorf("expected box, got %s", b.Kind)
		}
	}
}

func TestGenerateBoxCountWithinRange(t *testing.T) {
	p := DefaultParams()
	p.MinBoxes, p.MaxBoxes = 2, 5
	for seed := int64(0); seed < 50; seed++ {
		w, err := Generate(p, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		n := w.Len() - 1
		if n < 2 || n > 5 {
			t.Errorf("seed %d: %d boxes outside [2, 5]", seed, n)
		}
	}
}

func TestGenerateSpawnsAboveGround(t *testing.T) {
	p := DefaultParams()
	w, _ := Generate(p, rand.New(rand.NewSource(7)))
	for _, b := range w.Bodies() {
		if b.Kind != physics.KindBox {
			continue
		}
		if b.Position.Y() < p.MinHeight {
			t.Errorf("box %d spawned at y=%.2f below %.2f", b.ID, b.Position.Y(), p.MinHeight)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate(DefaultParams(), rand.New(rand.NewSource(42)))
	b, _ := Generate(DefaultParams(), rand.New(rand.NewSource(42)))

	as, bs := a.Bodies(), b.Bodies()
	if len(as) != len(bs) {
		t.Fatalf("body counts differ: %d vs %d", len(as), len(bs))
	}
	for i := range as {
		if as[i].Position != bs[i].Position || as[i].Orientation != bs[i].Orientation {
			t.Errorf("body %d differs between identical seeds", i)
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"inverted count", func(p *Params) { p.MinBoxes, p.MaxBoxes = 5, 2 }},
		{"zero size", func(p *Params) { p.BoxSize = 0 }},
		{"inverted height", func(p *Params) { p.MinHeight, p.MaxHeight = 9, 3 }},
		{"spawn in ground", func(p *Params) { p.MinHeight = 0.1 }},
		{"restitution above one", func(p *Params) { p.Restitution = 1.5 }},
		{"zero ground", func(p *Params) { p.GroundSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSceneRestartNewThrow(t *testing.T) {
	s, err := New(DefaultParams(), 3)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	first := s.ThrowSeed()
	if err := s.Restart(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if s.ThrowSeed() == first {
		t.Error("restart should draw a new throw seed")
	}
	if s.Generation() != 2 {
		t.Errorf("expected generation 2, got %d", s.Generation())
	}
	if s.World().Time() != 0 {
		t.Error("restart should reset the world clock")
	}
}

func TestReplayMatchesScene(t *testing.T) {
	s, _ := New(DefaultParams(), 11)
	w, err := Replay(s.Params(), s.ThrowSeed())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	got, want := w.Bodies(), s.World().Bodies()
	if len(got) != len(want) {
		t.Fatalf("expected %d bodies, got %d", len(want), len(got))
	}
	for i := range got {
		if got[i].Position != want[i].Position {
			t.Errorf("body %d position differs", i)
		}
	}
}

func TestSetParam(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name  string
		value float64
		check func(Params) bool
	}{
		{"friction", 0.9, func(p Params) bool { return p.Friction == 0.9 }},
		{"gravity", 1.62, func(p Params) bool { return p.Gravity == 1.62 }},
		{"max_boxes", 12, func(p Params) bool { return p.MaxBoxes == 12 }},
		{"iterations", 20, func(p Params) bool { return p.Iterations == 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.SetParam(tt.name, tt.value); err != nil {
				t.Fatalf("SetParam: %v", err)
			}
			if !tt.check(p) {
				t.Errorf("%s not applied", tt.name)
			}
			if got := p.GetParams()[tt.name]; got != tt.value {
				t.Errorf("GetParams()[%q] = %f, expected %f", tt.name, got, tt.value)
			}
		})
	}

	if err := p.SetParam("wobble", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestParamNamesCoverGetParams(t *testing.T) {
	names := ParamNames()
	if len(names) != len(DefaultParams().GetParams()) {
		t.Fatalf("expected %d names, got %d", len(DefaultParams().GetParams()), len(names))
	}
	p := DefaultParams()
	for _, n := range names {
		if err := p.SetParam(n, 1); err != nil {
			t.Errorf("name %q rejected: %v", n, err)
		}
	}
}
