package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
)

type TextureKind uint8

const (
	TextureDice TextureKind = iota + 1
	TextureGround
)

// Uniforms are the per-draw values bound before an entity is drawn.
type Uniforms struct {
	Transform   mgl32.Mat4
	Camera      mgl32.Mat4
	Perspective mgl32.Mat4
	Texture     TextureKind
}

// Entity is one draw call.
type Entity struct {
	Body     physics.ID
	Mesh     MeshKind
	Uniforms Uniforms
}

// View carries the frame-wide inputs to [Entities].
type View struct {
	Camera      mgl32.Mat4
	Perspective mgl32.Mat4
	GroundSize  float32
}

// Entities maps every body in w to a draw call. Bodies are folded in
// reverse insertion order, so the ground (always added first) is drawn last.
func Entities(w *physics.World, v View) []Entity {
	return physics.Fold(w, make([]Entity, 0, w.Len()), func(acc []Entity, b physics.BodyState) []Entity {
		e, ok := EntityFor(b, v)
		if !ok {
			return acc
		}
		return append(acc, e)
	})
}

// EntityFor builds the draw call for a single body.
func EntityFor(b physics.BodyState, v View) (Entity, bool) {
	e := Entity{
		Body: b.ID,
		Uniforms: Uniforms{
			Camera:      v.Camera,
			Perspective: v.Perspective,
		},
	}
	switch b.Kind {
	case physics.KindBox:
		h := b.HalfExtents
		model := b.Transform().Mul4(mgl64.Scale3D(2*h.X(), 2*h.Y(), 2*h.Z()))
		e.Mesh = MeshCube
		e.Uniforms.Transform = toMat32(model)
		e.Uniforms.Texture = TextureDice
	case physics.KindPlane:
		size := float64(v.GroundSize)
		if size <= 0 {
			size = 1
		}
		model := b.Transform().Mul4(alignUp(b.Normal).Mat4()).Mul4(mgl64.Scale3D(size, 1, size))
		e.Mesh = MeshPlane
		e.Uniforms.Transform = toMat32(model)
		e.Uniforms.Texture = TextureGround
	default:
		return Entity{}, false
	}
	return e, true
}

// alignUp rotates the plane mesh's +Y normal onto n.
func alignUp(n mgl64.Vec3) mgl64.Quat {
	up := mgl64.Vec3{0, 1, 0}
	n = n.Normalize()
	if n.ApproxEqualThreshold(up, 1e-9) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(up, n)
}

func toMat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
