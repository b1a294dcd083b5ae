package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	baumgarte            = 0.2
	penetrationSlop      = 0.005
	restitutionThreshold = 1.0
)

func effectiveMass(a, b *Body, ra, rb, dir mgl64.Vec3) float64 {
	k := a.invMass + b.invMass
	k += dir.Dot(a.applyInvInertia(ra.Cross(dir)).Cross(ra))
	k += dir.Dot(b.applyInvInertia(rb.Cross(dir)).Cross(rb))
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func (c *contact) prepare(dt float64) {
	a, b := c.a, c.b
	c.ra = c.point.Sub(a.Position)
	c.rb = c.point.Sub(b.Position)
	c.t1, c.t2 = tangents(c.normal)

	c.massN = effectiveMass(a, b, c.ra, c.rb, c.normal)
	c.massT1 = effectiveMass(a, b, c.ra, c.rb, c.t1)
	c.massT2 = effectiveMass(a, b, c.ra, c.rb, c.t2)
	c.friction = math.Sqrt(a.Material.Friction * b.Material.Friction)

	c.bias = baumgarte / dt * math.Max(c.depth-penetrationSlop, 0)
	vn := c.relativeVelocity().Dot(c.normal)
	if vn < -restitutionThreshold {
		e := math.Max(a.Material.Restitution, b.Material.Restitution)
		c.bias = math.Max(c.bias, -e*vn)
	}
}

func (c *contact) relativeVelocity() mgl64.Vec3 {
	return c.a.velocityAt(c.ra).Sub(c.b.velocityAt(c.rb))
}

func (c *contact) apply(p mgl64.Vec3) {
	c.a.applyImpulse(p, c.ra)
	c.b.applyImpulse(p.Mul(-1), c.rb)
}

func (c *contact) solve() {
	// Friction is bounded by the normal impulse of the previous iteration.
	maxF := c.friction * c.accN
	vr := c.relativeVelocity()
	c.accT1 = c.solveTangent(vr, c.t1, c.massT1, c.accT1, maxF)
	vr = c.relativeVelocity()
	c.accT2 = c.solveTangent(vr, c.t2, c.massT2, c.accT2, maxF)

	vn := c.relativeVelocity().Dot(c.normal)
	jn := c.massN * (-vn + c.bias)
	acc := math.Max(c.accN+jn, 0)
	jn = acc - c.accN
	c.accN = acc
	c.apply(c.normal.Mul(jn))
}

func (c *contact) solveTangent(vr, t mgl64.Vec3, mass, acc, maxF float64) float64 {
	jt := -vr.Dot(t) * mass
	next := mgl64.Clamp(acc+jt, -maxF, maxF)
	c.apply(t.Mul(next - acc))
	return next
}
