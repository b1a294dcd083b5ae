package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	FieldOfView = 45.0 // degrees, vertical
	NearPlane   = 0.1
	FarPlane    = 200.0
)

// Camera orbits a target at a fixed distance.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // radians around +Y
	Pitch    float32 // radians above the horizon
}

func DefaultCamera() Camera {
	return Camera{
		Target:   mgl32.Vec3{0, 1, 0},
		Distance: 18,
		Yaw:      math.Pi / 4,
		Pitch:    0.55,
	}
}

// Eye is the camera position in world space.
func (c Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	off := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(off.Mul(c.Distance))
}

// View is the world-to-camera matrix.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Orbit rotates the camera, keeping pitch strictly between the poles.
func (c Camera) Orbit(dYaw, dPitch float32) Camera {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -1.5, 1.5)
	return c
}

// Zoom scales the orbit distance, clamped to a sensible range.
func (c Camera) Zoom(factor float32) Camera {
	if factor > 0 {
		c.Distance = mgl32.Clamp(c.Distance*factor, 2, 100)
	}
	return c
}

// Perspective builds the projection for a viewport. A zero or negative
// height yields an aspect of 1 rather than a degenerate matrix.
func Perspective(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, NearPlane, FarPlane)
}
