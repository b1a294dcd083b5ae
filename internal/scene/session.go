package scene

import (
	"math/rand"

	"github.com/san-kum/dicebox/internal/physics"
)

// Scene owns the current world and the RNG that produces the next throw.
type Scene struct {
	params     Params
	seed       int64
	rng        *rand.Rand
	world      *physics.World
	generation int
	throwSeed  int64
}

// New generates the first throw from seed.
func New(p Params, seed int64) (*Scene, error) {
	s := &Scene{params: p, seed: seed, rng: rand.New(rand.NewSource(seed))}
	if err := s.Restart(); err != nil {
		return nil, err
	}
	return s, nil
}

// Restart throws a fresh set of boxes. Each throw draws its own seed from the
// scene RNG so a throw can be replayed with [Replay].
func (s *Scene) Restart() error {
	throwSeed := s.rng.Int63()
	w, err := Generate(s.params, rand.New(rand.NewSource(throwSeed)))
	if err != nil {
		return err
	}
	s.world = w
	s.throwSeed = throwSeed
	s.generation++
	return nil
}

// SetParams replaces the throw parameters and restarts.
func (s *Scene) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return s.Restart()
}

func (s *Scene) Step(dt float64) error { return s.world.Step(dt) }

func (s *Scene) World() *physics.World { return s.world }
func (s *Scene) Params() Params        { return s.params }
func (s *Scene) Seed() int64           { return s.seed }
func (s *Scene) ThrowSeed() int64      { return s.throwSeed }
func (s *Scene) Generation() int       { return s.generation }

// Replay rebuilds the world of a previously recorded throw.
func Replay(p Params, throwSeed int64) (*physics.World, error) {
	return Generate(p, rand.New(rand.NewSource(throwSeed)))
}
