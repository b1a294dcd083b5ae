package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ID identifies a body within its world. Zero is never assigned.
type ID uint32

// Kind is the collision shape of a body.
type Kind uint8

const (
	KindBox Kind = iota + 1
	KindPlane
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindPlane:
		return "plane"
	default:
		return "unknown"
	}
}

type Material struct {
	Friction    float64
	Restitution float64
}

// DefaultMaterial is a slightly bouncy plastic-on-wood.
var DefaultMaterial = Material{Friction: 0.5, Restitution: 0.3}

// Body is a rigid body description. Once added to a [World] the world keeps
// its own copy; mutate the world through its methods, not the original value.
type Body struct {
	id   ID
	kind Kind

	// HalfExtents is used by boxes, Normal (body-local) by planes.
	HalfExtents mgl64.Vec3
	Normal      mgl64.Vec3

	Mass            float64
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Material        Material

	invMass    float64
	invInertia mgl64.Vec3 // body-local diagonal
	sleeping   bool
	idleTime   float64
}

// NewBox returns a dynamic unit-mass box centred at the origin.
func NewBox(halfExtents mgl64.Vec3) *Body {
	return &Body{
		kind:        KindBox,
		HalfExtents: halfExtents,
		Mass:        1,
		Orientation: mgl64.QuatIdent(),
		Material:    DefaultMaterial,
	}
}

// NewPlane returns a static infinite plane through the origin facing normal.
func NewPlane(normal mgl64.Vec3) *Body {
	return &Body{
		kind:        KindPlane,
		Normal:      normal,
		Orientation: mgl64.QuatIdent(),
		Material:    DefaultMaterial,
	}
}

func (b *Body) WithPosition(p mgl64.Vec3) *Body {
	b.Position = p
	return b
}

func (b *Body) WithOrientation(q mgl64.Quat) *Body {
	b.Orientation = q.Normalize()
	return b
}

func (b *Body) WithVelocity(v mgl64.Vec3) *Body {
	b.Velocity = v
	return b
}

func (b *Body) WithAngularVelocity(w mgl64.Vec3) *Body {
	b.AngularVelocity = w
	return b
}

// WithMass sets the mass; zero makes the body static.
func (b *Body) WithMass(m float64) *Body {
	b.Mass = m
	return b
}

func (b *Body) WithMaterial(m Material) *Body {
	b.Material = m
	return b
}

func (b *Body) ID() ID       { return b.id }
func (b *Body) Kind() Kind   { return b.kind }
func (b *Body) Static() bool { return b.invMass == 0 }

func (b *Body) validate() error {
	if b.Mass < 0 || math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) {
		return ErrInvalidBody
	}
	if !finiteVec(b.Position) || !finiteVec(b.Velocity) || !finiteVec(b.AngularVelocity) {
		return ErrInvalidBody
	}
	if b.Orientation.Len() < 1e-9 {
		return ErrInvalidBody
	}
	switch b.kind {
	case KindBox:
		h := b.HalfExtents
		if h.X() <= 0 || h.Y() <= 0 || h.Z() <= 0 || !finiteVec(h) {
			return ErrInvalidBody
		}
	case KindPlane:
		if b.Normal.Len() < 1e-9 || !finiteVec(b.Normal) {
			return ErrInvalidBody
		}
	default:
		return ErrInvalidBody
	}
	return nil
}

// prepare derives the cached mass properties. Planes are always static.
func (b *Body) prepare() {
	b.Orientation = b.Orientation.Normalize()
	if b.kind == KindPlane {
		b.Normal = b.Normal.Normalize()
		b.Mass = 0
	}
	if b.Mass == 0 {
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		b.Velocity = mgl64.Vec3{}
		b.AngularVelocity = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / b.Mass
	h := b.HalfExtents
	x2, y2, z2 := h.X()*h.X(), h.Y()*h.Y(), h.Z()*h.Z()
	b.invInertia = mgl64.Vec3{
		3 / (b.Mass * (y2 + z2)),
		3 / (b.Mass * (x2 + z2)),
		3 / (b.Mass * (x2 + y2)),
	}
}

// worldNormal is the plane normal in world space.
func (b *Body) worldNormal() mgl64.Vec3 {
	return b.Orientation.Rotate(b.Normal)
}

// applyInvInertia returns I⁻¹·v with the inertia tensor in world space.
func (b *Body) applyInvInertia(v mgl64.Vec3) mgl64.Vec3 {
	if b.invMass == 0 {
		return mgl64.Vec3{}
	}
	local := b.Orientation.Conjugate().Rotate(v)
	local = mgl64.Vec3{
		local.X() * b.invInertia.X(),
		local.Y() * b.invInertia.Y(),
		local.Z() * b.invInertia.Z(),
	}
	return b.Orientation.Rotate(local)
}

// velocityAt is the velocity of the material point at world offset r.
func (b *Body) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

func (b *Body) applyImpulse(p, r mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.Velocity = b.Velocity.Add(p.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(b.applyInvInertia(r.Cross(p)))
}

// corners returns the 8 box vertices in world space.
func (b *Body) corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := b.HalfExtents
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()}
				out[i] = b.Position.Add(b.Orientation.Rotate(local))
				i++
			}
		}
	}
	return out
}

func (b *Body) kineticEnergy() float64 {
	if b.invMass == 0 {
		return 0
	}
	lin := 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
	w := b.Orientation.Conjugate().Rotate(b.AngularVelocity)
	rot := 0.0
	for i := 0; i < 3; i++ {
		rot += 0.5 * w[i] * w[i] / b.invInertia[i]
	}
	return lin + rot
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func finiteQuat(q mgl64.Quat) bool {
	if math.IsNaN(q.W) || math.IsInf(q.W, 0) {
		return false
	}
	return finiteVec(q.V)
}
