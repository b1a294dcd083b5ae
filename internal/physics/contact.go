package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contact is a single point of touch. normal points from b towards a, so a
// positive impulse along it separates the pair.
type contact struct {
	a, b   *Body
	point  mgl64.Vec3
	normal mgl64.Vec3
	depth  float64

	ra, rb         mgl64.Vec3
	t1, t2         mgl64.Vec3
	massN          float64
	massT1, massT2 float64
	bias           float64
	friction       float64
	accN           float64
	accT1, accT2   float64
}

func (w *World) detect() {
	w.contacts = w.contacts[:0]
	for i := 0; i < len(w.bodies); i++ {
		bi := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			bj := w.bodies[j]
			if !w.needsTest(bi, bj) {
				continue
			}
			switch {
			case bi.kind == KindBox && bj.kind == KindPlane:
				w.boxPlane(bi, bj)
			case bi.kind == KindPlane && bj.kind == KindBox:
				w.boxPlane(bj, bi)
			case bi.kind == KindBox && bj.kind == KindBox:
				w.boxBox(bi, bj)
			}
		}
	}
}

func (w *World) needsTest(a, b *Body) bool {
	if a.invMass == 0 && b.invMass == 0 {
		return false
	}
	restA := a.invMass == 0 || a.sleeping
	restB := b.invMass == 0 || b.sleeping
	return !(restA && restB)
}

func (w *World) boxPlane(box, plane *Body) {
	n := plane.worldNormal()
	for _, c := range box.corners() {
		d := c.Sub(plane.Position).Dot(n)
		if d >= 0 {
			continue
		}
		w.contacts = append(w.contacts, &contact{
			a:      box,
			b:      plane,
			point:  c,
			normal: n,
			depth:  -d,
		})
	}
}

// faceTolerance widens the reference face when clipping incident corners so
// that boxes stacked edge to edge keep all four supporting contacts.
const faceTolerance = 0.02

// boxBox runs a separating-axis test over the six face normals. The box owning
// the axis of least overlap is the reference; corners of the other box below
// its face become contacts.
func (w *World) boxBox(a, b *Body) {
	reach := a.HalfExtents.Len() + b.HalfExtents.Len()
	d := b.Position.Sub(a.Position)
	if d.Len() > reach {
		return
	}
	axesA, axesB := boxAxes(a), boxAxes(b)

	best := math.Inf(1)
	var ref, inc *Body
	refAxis := -1
	for k := 0; k < 6; k++ {
		owner, other, axis := a, b, axesA[k%3]
		if k >= 3 {
			owner, other, axis = b, a, axesB[k%3]
		}
		overlap := projectedRadius(a, axesA, axis) + projectedRadius(b, axesB, axis) - math.Abs(d.Dot(axis))
		if overlap < 0 {
			return
		}
		if overlap < best {
			best, ref, inc, refAxis = overlap, owner, other, k%3
		}
	}

	refAxes := boxAxes(ref)
	n := refAxes[refAxis]
	if inc.Position.Sub(ref.Position).Dot(n) < 0 {
		n = n.Mul(-1)
	}
	face := ref.Position.Add(n.Mul(ref.HalfExtents[refAxis]))
	inv := ref.Orientation.Conjugate()

	var deepest *contact
	added := 0
	for _, c := range inc.corners() {
		dist := c.Sub(face).Dot(n)
		if dist >= 0 {
			continue
		}
		ct := &contact{a: inc, b: ref, point: c, normal: n, depth: -dist}
		if deepest == nil || ct.depth > deepest.depth {
			deepest = ct
		}
		local := inv.Rotate(c.Sub(ref.Position))
		if !withinFace(local, ref.HalfExtents, refAxis) {
			continue
		}
		w.contacts = append(w.contacts, ct)
		added++
	}
	if added == 0 && deepest != nil {
		w.contacts = append(w.contacts, deepest)
	}
}

func boxAxes(b *Body) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		b.Orientation.Rotate(mgl64.Vec3{1, 0, 0}),
		b.Orientation.Rotate(mgl64.Vec3{0, 1, 0}),
		b.Orientation.Rotate(mgl64.Vec3{0, 0, 1}),
	}
}

func projectedRadius(b *Body, axes [3]mgl64.Vec3, dir mgl64.Vec3) float64 {
	r := 0.0
	for i := 0; i < 3; i++ {
		r += b.HalfExtents[i] * math.Abs(axes[i].Dot(dir))
	}
	return r
}

func withinFace(local, h mgl64.Vec3, axis int) bool {
	for k := 0; k < 3; k++ {
		if k == axis {
			continue
		}
		if math.Abs(local[k]) > h[k]+faceTolerance {
			return false
		}
	}
	return true
}

// tangents returns an orthonormal pair spanning the plane orthogonal to n.
func tangents(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(n.X()) > 0.57735 {
		t1 = mgl64.Vec3{n.Y(), -n.X(), 0}
	} else {
		t1 = mgl64.Vec3{0, n.Z(), -n.Y()}
	}
	t1 = t1.Normalize()
	return t1, n.Cross(t1)
}
