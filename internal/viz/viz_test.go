package viz

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/render"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Dots(); w != 8 || h != 8 {
		t.Fatalf("expected 8x8 dots, got %dx%d", w, h)
	}

	c.Set(0, 0)
	c.Set(1, 3)
	if c.Grid[0][0] != blank|0x1|0x80 {
		t.Errorf("unexpected cell %U", c.Grid[0][0])
	}
	if !c.IsSet(1, 3) {
		t.Error("expected dot (1,3) set")
	}

	c.Unset(0, 0)
	if c.IsSet(0, 0) {
		t.Error("expected dot (0,0) cleared")
	}
	if c.Grid[0][0] != blank|0x80 {
		t.Errorf("unset touched other dots: %U", c.Grid[0][0])
	}

	// off canvas is a no-op
	c.Set(-1, 0)
	c.Set(100, 100)
	c.Unset(-5, -5)

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				t.Fatalf("expected blank canvas after clear, got %U", r)
			}
		}
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 0, 0, 5, 0, [][2]int{{0, 0}, {3, 0}, {5, 0}}},
		{"vertical", 2, 1, 2, 6, [][2]int{{2, 1}, {2, 4}, {2, 6}}},
		{"diagonal", 0, 0, 6, 6, [][2]int{{0, 0}, {3, 3}, {6, 6}}},
		{"reversed", 6, 6, 0, 0, [][2]int{{0, 0}, {6, 6}}},
		{"clipped", -10, 2, 4, 2, [][2]int{{0, 2}, {4, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(8, 4)
			c.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1)
			for _, p := range tt.want {
				if !c.IsSet(p[0], p[1]) {
					t.Errorf("expected dot %v set", p)
				}
			}
		})
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if n := len([]rune(lines[0])); n != 3 {
		t.Errorf("expected 3 cells per line, got %d", n)
	}
}

func unitBox(pos mgl64.Vec3) physics.BodyState {
	return physics.BodyState{
		Kind:        physics.KindBox,
		Position:    pos,
		Orientation: mgl64.QuatIdent(),
		HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5},
	}
}

func TestBoxWireframe(t *testing.T) {
	w := BoxWireframe(unitBox(mgl64.Vec3{0, 2, 0}))
	if w.Len() != 12 {
		t.Fatalf("expected 12 edges, got %d", w.Len())
	}
	for _, e := range w.Edges {
		if l := e.End.Sub(e.Start).Len(); l < 0.999 || l > 1.001 {
			t.Errorf("edge length %f, expected 1", l)
		}
	}

	plane := physics.BodyState{Kind: physics.KindPlane, Normal: mgl64.Vec3{0, 1, 0}, Orientation: mgl64.QuatIdent()}
	if BoxWireframe(plane).Len() != 0 {
		t.Error("planes have no box outline")
	}
}

func TestGroundGrid(t *testing.T) {
	plane := physics.BodyState{Kind: physics.KindPlane, Normal: mgl64.Vec3{0, 1, 0}, Orientation: mgl64.QuatIdent()}
	w := GroundGrid(plane, 10, 5)
	if w.Len() != 10 {
		t.Fatalf("expected 10 grid lines, got %d", w.Len())
	}
	for _, e := range w.Edges {
		if e.Start.Y() != 0 || e.End.Y() != 0 {
			t.Errorf("grid line left the plane: %v -> %v", e.Start, e.End)
		}
		if l := e.End.Sub(e.Start).Len(); l < 9.999 || l > 10.001 {
			t.Errorf("grid line length %f, expected 10", l)
		}
	}
}

func TestWorldWireframe(t *testing.T) {
	w := physics.NewWorld()
	if _, err := w.AddBody(physics.NewPlane(mgl64.Vec3{0, 1, 0})); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithPosition(mgl64.Vec3{0, 3, 0})); err != nil {
		t.Fatal(err)
	}
	wf := WorldWireframe(w, 20, 6)
	if wf.Len() != 12+12 {
		t.Errorf("expected 24 edges, got %d", wf.Len())
	}
}

func TestFrameWireframeMatchesWorld(t *testing.T) {
	w := physics.NewWorld()
	if _, err := w.AddBody(physics.NewPlane(mgl64.Vec3{0, 1, 0})); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithPosition(mgl64.Vec3{1, 2, 0})); err != nil {
		t.Fatal(err)
	}
	bodies := physics.Foldl(w, []physics.BodyState(nil), func(acc []physics.BodyState, b physics.BodyState) []physics.BodyState {
		return append(acc, b)
	})

	got := FrameWireframe(bodies, 20, 6)
	want := WorldWireframe(w, 20, 6)
	if got.Len() != want.Len() {
		t.Fatalf("expected %d edges, got %d", want.Len(), got.Len())
	}
	for i := range want.Edges {
		if got.Edges[i] != want.Edges[i] {
			t.Errorf("edge %d: %v != %v", i, got.Edges[i], want.Edges[i])
		}
	}
}

func TestProjectorCentersTarget(t *testing.T) {
	cam := render.DefaultCamera()
	p := NewProjector(cam, 161, 97)
	x, y, depth, ok := p.Project(mgl64.Vec3{float64(cam.Target.X()), float64(cam.Target.Y()), float64(cam.Target.Z())})
	if !ok {
		t.Fatal("target should be visible")
	}
	if x != 80 || y != 48 {
		t.Errorf("expected target at (80,48), got (%d,%d)", x, y)
	}
	if depth < cam.Distance-0.01 || depth > cam.Distance+0.01 {
		t.Errorf("expected depth %f, got %f", cam.Distance, depth)
	}

	eye := cam.Eye()
	behind := eye.Add(eye.Sub(cam.Target))
	if _, _, _, ok := p.Project(mgl64.Vec3{float64(behind.X()), float64(behind.Y()), float64(behind.Z())}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestRender3DDrawsSomething(t *testing.T) {
	c := NewCanvas(40, 20)
	Render3D(c, BoxWireframe(unitBox(mgl64.Vec3{0, 1, 0})), render.DefaultCamera())

	set := 0
	dw, dh := c.Dots()
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if c.IsSet(x, y) {
				set++
			}
		}
	}
	if set == 0 {
		t.Error("expected the box outline on the canvas")
	}

	Render3D(nil, nil, render.DefaultCamera())
}
