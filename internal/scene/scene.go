// Package scene builds randomly thrown dice worlds.
package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
)

// Params describes one throw. Ranges are inclusive.
type Params struct {
	MinBoxes    int
	MaxBoxes    int
	BoxSize     float64 // edge length
	SpawnRadius float64
	MinHeight   float64
	MaxHeight   float64
	ThrowSpeed  float64
	Spin        float64
	Gravity     float64
	Friction    float64
	Restitution float64
	GroundSize  float64
	Iterations  int
	AllowSleep  bool
}

func DefaultParams() Params {
	return Params{
		MinBoxes:    3,
		MaxBoxes:    8,
		BoxSize:     1,
		SpawnRadius: 3,
		MinHeight:   3,
		MaxHeight:   9,
		ThrowSpeed:  4,
		Spin:        6,
		Gravity:     9.81,
		Friction:    0.5,
		Restitution: 0.3,
		GroundSize:  40,
		Iterations:  physics.DefaultIterations,
		AllowSleep:  true,
	}
}

func (p Params) Validate() error {
	if p.MinBoxes < 0 || p.MaxBoxes < p.MinBoxes {
		return fmt.Errorf("box count range [%d, %d] is invalid", p.MinBoxes, p.MaxBoxes)
	}
	if p.BoxSize <= 0 {
		return fmt.Errorf("box size must be positive, got %f", p.BoxSize)
	}
	if p.MaxHeight < p.MinHeight {
		return fmt.Errorf("height range [%f, %f] is invalid", p.MinHeight, p.MaxHeight)
	}
	if p.MinHeight < p.BoxSize {
		return fmt.Errorf("min height %f would spawn boxes inside the ground", p.MinHeight)
	}
	if p.SpawnRadius < 0 || p.ThrowSpeed < 0 || p.Spin < 0 {
		return fmt.Errorf("spawn radius, throw speed and spin must be non-negative")
	}
	if p.Friction < 0 || p.Restitution < 0 || p.Restitution > 1 {
		return fmt.Errorf("friction must be >= 0 and restitution in [0, 1]")
	}
	if p.GroundSize <= 0 {
		return fmt.Errorf("ground size must be positive, got %f", p.GroundSize)
	}
	return nil
}

// Generate builds a world with the ground plane first, followed by a random
// number of thrown boxes.
func Generate(p Params, rng *rand.Rand) (*physics.World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := physics.NewWorld(
		physics.WithGravity(mgl64.Vec3{0, -p.Gravity, 0}),
		physics.WithIterations(p.Iterations),
		physics.WithSleeping(p.AllowSleep),
	)
	mat := physics.Material{Friction: p.Friction, Restitution: p.Restitution}

	if _, err := w.AddBody(physics.NewPlane(mgl64.Vec3{0, 1, 0}).WithMaterial(mat)); err != nil {
		return nil, err
	}

	n := p.MinBoxes + rng.Intn(p.MaxBoxes-p.MinBoxes+1)
	half := p.BoxSize / 2
	for i := 0; i < n; i++ {
		box := physics.NewBox(mgl64.Vec3{half, half, half}).
			WithPosition(spawnPoint(p, rng, i)).
			WithOrientation(randomRotation(rng)).
			WithVelocity(throwVelocity(p, rng)).
			WithAngularVelocity(randomUnit(rng).Mul(rng.Float64() * p.Spin)).
			WithMaterial(mat)
		if _, err := w.AddBody(box); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// spawnPoint staggers heights by box index so simultaneous spawns rarely overlap.
func spawnPoint(p Params, rng *rand.Rand, i int) mgl64.Vec3 {
	angle := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(rng.Float64()) * p.SpawnRadius
	y := p.MinHeight + rng.Float64()*(p.MaxHeight-p.MinHeight) + float64(i)*p.BoxSize*1.5
	return mgl64.Vec3{r * math.Cos(angle), y, r * math.Sin(angle)}
}

// throwVelocity aims roughly back towards the centre with a random spread.
func throwVelocity(p Params, rng *rand.Rand) mgl64.Vec3 {
	dir := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64() * 0.5, rng.Float64()*2 - 1}
	if dir.Len() < 1e-6 {
		return mgl64.Vec3{}
	}
	return dir.Normalize().Mul(rng.Float64() * p.ThrowSpeed)
}

func randomRotation(rng *rand.Rand) mgl64.Quat {
	return mgl64.QuatRotate(rng.Float64()*2*math.Pi, randomUnit(rng))
}

func randomUnit(rng *rand.Rand) mgl64.Vec3 {
	for {
		v := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		if l := v.Len(); l > 1e-3 && l <= 1 {
			return v.Mul(1 / l)
		}
	}
}
