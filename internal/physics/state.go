package physics

import "github.com/go-gl/mathgl/mgl64"

// BodyState is an immutable snapshot of a body, handed out by folds.
type BodyState struct {
	ID          ID
	Kind        Kind
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Velocity    mgl64.Vec3
	Spin        mgl64.Vec3
	HalfExtents mgl64.Vec3
	Normal      mgl64.Vec3
	Static      bool
	Sleeping    bool
}

func (b *Body) snapshot() BodyState {
	return BodyState{
		ID:          b.id,
		Kind:        b.kind,
		Position:    b.Position,
		Orientation: b.Orientation,
		Velocity:    b.Velocity,
		Spin:        b.AngularVelocity,
		HalfExtents: b.HalfExtents,
		Normal:      b.Normal,
		Static:      b.invMass == 0,
		Sleeping:    b.sleeping,
	}
}

// Transform is the rigid model matrix (translation * rotation). Shape
// scaling is left to the renderer.
func (s BodyState) Transform() mgl64.Mat4 {
	t := mgl64.Translate3D(s.Position.X(), s.Position.Y(), s.Position.Z())
	return t.Mul4(s.Orientation.Mat4())
}

// Corners returns the box vertices in world space, ordered by sign of
// (x, y, z) with z varying fastest. Planes have no corners.
func (s BodyState) Corners() []mgl64.Vec3 {
	if s.Kind != KindBox {
		return nil
	}
	b := Body{kind: KindBox, HalfExtents: s.HalfExtents, Position: s.Position, Orientation: s.Orientation}
	c := b.corners()
	return c[:]
}
