package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/render"
)

// maxEdgeDots bounds the rasterised length of one edge so a vertex that
// projects near infinity cannot stall the renderer.
const maxEdgeDots = 4096

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0, 64)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) Append(o *Wireframe)     { w.Edges = append(w.Edges, o.Edges...) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }
func (w *Wireframe) Len() int                { return len(w.Edges) }

// boxEdges pairs corner indices of physics.BodyState.Corners, whose z sign
// flips fastest, then y, then x.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoxWireframe returns the 12 edges of an oriented box. Planes yield an
// empty wireframe; use [GroundGrid] for them.
func BoxWireframe(b physics.BodyState) *Wireframe {
	w := NewWireframe()
	corners := b.Corners()
	if len(corners) != 8 {
		return w
	}
	for _, e := range boxEdges {
		w.AddEdge(corners[e[0]], corners[e[1]])
	}
	return w
}

// GroundGrid draws lines lines each way across a square of the given size
// lying in the plane.
func GroundGrid(b physics.BodyState, size float64, lines int) *Wireframe {
	w := NewWireframe()
	if lines < 2 {
		lines = 2
	}
	u, v := planeBasis(b.Normal)
	half := size / 2
	step := size / float64(lines-1)
	for i := 0; i < lines; i++ {
		o := -half + float64(i)*step
		w.AddEdge(b.Position.Add(u.Mul(o)).Add(v.Mul(-half)), b.Position.Add(u.Mul(o)).Add(v.Mul(half)))
		w.AddEdge(b.Position.Add(v.Mul(o)).Add(u.Mul(-half)), b.Position.Add(v.Mul(o)).Add(u.Mul(half)))
	}
	return w
}

func planeBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	if n.Len() == 0 {
		n = mgl64.Vec3{0, 1, 0}
	}
	n = n.Normalize()
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		ref = mgl64.Vec3{0, 0, 1}
	}
	u := ref.Sub(n.Mul(ref.Dot(n))).Normalize()
	return u, n.Cross(u)
}

// WorldWireframe folds the world into one wireframe: a grid for each plane
// and an outline for each box.
func WorldWireframe(w *physics.World, groundSize float64, gridLines int) *Wireframe {
	return physics.Foldl(w, NewWireframe(), func(acc *Wireframe, b physics.BodyState) *Wireframe {
		return appendBody(acc, b, groundSize, gridLines)
	})
}

// FrameWireframe is WorldWireframe over recorded body snapshots.
func FrameWireframe(bodies []physics.BodyState, groundSize float64, gridLines int) *Wireframe {
	acc := NewWireframe()
	for _, b := range bodies {
		appendBody(acc, b, groundSize, gridLines)
	}
	return acc
}

func appendBody(acc *Wireframe, b physics.BodyState, groundSize float64, gridLines int) *Wireframe {
	switch b.Kind {
	case physics.KindBox:
		acc.Append(BoxWireframe(b))
	case physics.KindPlane:
		acc.Append(GroundGrid(b, groundSize, gridLines))
	}
	return acc
}

// Projector maps world points onto canvas dots.
type Projector struct {
	viewProj mgl32.Mat4
	w, h     int
}

// NewProjector builds a projector for a canvas of w x h dots. Braille dots
// are close to square, so the aspect ratio is taken from the dot grid.
func NewProjector(cam render.Camera, w, h int) Projector {
	return Projector{
		viewProj: render.Perspective(w, h).Mul4(cam.View()),
		w:        w,
		h:        h,
	}
}

// Project returns dot coordinates and view depth. ok is false for points
// behind the near plane.
func (p Projector) Project(v mgl64.Vec3) (x, y int, depth float32, ok bool) {
	clip := p.viewProj.Mul4x1(mgl32.Vec4{float32(v.X()), float32(v.Y()), float32(v.Z()), 1})
	if clip.W() < render.NearPlane {
		return 0, 0, 0, false
	}
	nx, ny := clip.X()/clip.W(), clip.Y()/clip.W()
	x = int(math.Round(float64((nx + 1) / 2 * float32(p.w-1))))
	y = int(math.Round(float64((1 - ny) / 2 * float32(p.h-1))))
	return x, y, clip.W(), true
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float32
}

// Render3D draws the wireframe far-to-near. Edges with an endpoint behind
// the camera or running absurdly far off canvas are dropped.
func Render3D(c *Canvas, w *Wireframe, cam render.Camera) {
	if c == nil || w == nil {
		return
	}
	dw, dh := c.Dots()
	p := NewProjector(cam, dw, dh)
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, ok1 := p.Project(e.Start)
		x2, y2, d2, ok2 := p.Project(e.End)
		if !ok1 || !ok2 {
			continue
		}
		if absInt(x2-x1)+absInt(y2-y1) > maxEdgeDots {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}
