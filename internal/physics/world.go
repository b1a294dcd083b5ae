package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultIterations = 10
	// MaxStep is the largest single integration step; longer frames are sub-stepped.
	MaxStep     = 1.0 / 60
	MaxSubSteps = 8

	linearDamping  = 0.05
	angularDamping = 0.1

	sleepLinear  = 0.08
	sleepAngular = 0.12
	sleepDelay   = 0.5
)

// DefaultGravity points down the Y axis.
var DefaultGravity = mgl64.Vec3{0, -9.81, 0}

type World struct {
	gravity     mgl64.Vec3
	iterations  int
	sleeping    bool
	maxStep     float64
	maxSubSteps int

	bodies []*Body
	index  map[ID]*Body
	nextID ID

	contacts []*contact
	time     float64
	steps    uint64
}

type Option func(*World)

// WithGravity sets the gravity vector. Non-finite vectors are ignored.
func WithGravity(g mgl64.Vec3) Option {
	return func(w *World) {
		if finiteVec(g) {
			w.gravity = g
		}
	}
}

// WithIterations sets the number of solver passes per step (minimum 1).
func WithIterations(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.iterations = n
		}
	}
}

// WithSleeping enables or disables putting resting bodies to sleep.
func WithSleeping(enabled bool) Option {
	return func(w *World) { w.sleeping = enabled }
}

// WithMaxStep overrides the sub-step size and the maximum number of sub-steps per Step.
func WithMaxStep(dt float64, maxSub int) Option {
	return func(w *World) {
		if dt > 0 {
			w.maxStep = dt
		}
		if maxSub > 0 {
			w.maxSubSteps = maxSub
		}
	}
}

func NewWorld(opts ...Option) *World {
	w := &World{
		gravity:     DefaultGravity,
		iterations:  DefaultIterations,
		sleeping:    true,
		maxStep:     MaxStep,
		maxSubSteps: MaxSubSteps,
		index:       make(map[ID]*Body),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddBody copies b into the world and returns its new ID.
func (w *World) AddBody(b *Body) (ID, error) {
	if b == nil {
		return 0, ErrInvalidBody
	}
	if err := b.validate(); err != nil {
		return 0, err
	}
	body := *b
	body.prepare()
	w.nextID++
	body.id = w.nextID
	w.bodies = append(w.bodies, &body)
	w.index[body.id] = &body
	return body.id, nil
}

func (w *World) Len() int            { return len(w.bodies) }
func (w *World) Gravity() mgl64.Vec3 { return w.gravity }
func (w *World) Time() float64       { return w.time }
func (w *World) Steps() uint64       { return w.steps }

// SetGravity replaces the gravity vector and wakes every body. Non-finite
// vectors are ignored.
func (w *World) SetGravity(g mgl64.Vec3) {
	if !finiteVec(g) {
		return
	}
	w.gravity = g
	w.wakeAll()
}

func (w *World) Body(id ID) (BodyState, bool) {
	b, ok := w.index[id]
	if !ok {
		return BodyState{}, false
	}
	return b.snapshot(), true
}

// Bodies returns snapshots in insertion order.
func (w *World) Bodies() []BodyState {
	return Foldl(w, make([]BodyState, 0, len(w.bodies)), func(acc []BodyState, b BodyState) []BodyState {
		return append(acc, b)
	})
}

// Foldl folds f over the bodies in insertion order.
func Foldl[T any](w *World, init T, f func(T, BodyState) T) T {
	acc := init
	for _, b := range w.bodies {
		acc = f(acc, b.snapshot())
	}
	return acc
}

// Fold folds f over the bodies in reverse insertion order.
func Fold[T any](w *World, init T, f func(T, BodyState) T) T {
	acc := init
	for i := len(w.bodies) - 1; i >= 0; i-- {
		acc = f(acc, w.bodies[i].snapshot())
	}
	return acc
}

// KineticEnergy sums linear and rotational energy of all dynamic bodies.
func (w *World) KineticEnergy() float64 {
	e := 0.0
	for _, b := range w.bodies {
		e += b.kineticEnergy()
	}
	return e
}

// Settled reports whether every dynamic body is asleep. With sleeping
// disabled it falls back to the instantaneous sleep thresholds.
func (w *World) Settled() bool {
	for _, b := range w.bodies {
		if b.invMass == 0 || b.sleeping {
			continue
		}
		if w.sleeping || !b.resting() {
			return false
		}
	}
	return true
}

// MaxAdvance is the most simulated time a single Step can cover.
func (w *World) MaxAdvance() float64 { return w.maxStep * float64(w.maxSubSteps) }

// Step advances the world by dt seconds. Frames longer than the sub-step
// budget are truncated so a stalled caller cannot blow up the solver.
func (w *World) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return &StepError{Step: w.steps, Time: w.time, Wrapped: ErrInvalidTimestep}
	}
	// clamp in float: huge dt overflows the int conversion
	n := w.maxSubSteps
	if s := math.Ceil(dt / w.maxStep); s < float64(n) {
		n = int(s)
	}
	h := math.Min(dt/float64(n), w.maxStep)

	saved, t0, s0 := w.save(), w.time, w.steps
	for i := 0; i < n; i++ {
		w.substep(h)
		if id, ok := w.firstInvalid(); !ok {
			err := &StepError{Step: w.steps, Time: w.time, Body: id, Wrapped: ErrUnstable}
			w.restore(saved)
			w.time, w.steps = t0, s0
			return err
		}
	}
	return nil
}

func (w *World) substep(h float64) {
	for _, b := range w.bodies {
		if b.invMass == 0 || b.sleeping {
			continue
		}
		b.Velocity = b.Velocity.Add(w.gravity.Mul(h)).Mul(1 / (1 + h*linearDamping))
		b.AngularVelocity = b.AngularVelocity.Mul(1 / (1 + h*angularDamping))
	}

	w.detect()
	w.wakeTouched()
	for _, c := range w.contacts {
		c.prepare(h)
	}
	for it := 0; it < w.iterations; it++ {
		for _, c := range w.contacts {
			c.solve()
		}
	}

	for _, b := range w.bodies {
		if b.invMass == 0 || b.sleeping {
			continue
		}
		b.Position = b.Position.Add(b.Velocity.Mul(h))
		spin := mgl64.Quat{W: 0, V: b.AngularVelocity}
		b.Orientation = b.Orientation.Add(spin.Mul(b.Orientation).Scale(0.5 * h)).Normalize()
	}

	if w.sleeping {
		w.updateSleep(h)
	}
	w.time += h
	w.steps++
}

// wakeTouched wakes sleeping bodies that are hit by an awake one.
func (w *World) wakeTouched() {
	for _, c := range w.contacts {
		if c.a.sleeping && c.b.invMass != 0 && !c.b.sleeping {
			c.a.wake()
		}
		if c.b.sleeping && c.a.invMass != 0 && !c.a.sleeping {
			c.b.wake()
		}
	}
}

func (w *World) updateSleep(h float64) {
	for _, b := range w.bodies {
		if b.invMass == 0 || b.sleeping {
			continue
		}
		if !b.resting() {
			b.idleTime = 0
			continue
		}
		b.idleTime += h
		if b.idleTime >= sleepDelay {
			b.sleeping = true
			b.Velocity = mgl64.Vec3{}
			b.AngularVelocity = mgl64.Vec3{}
		}
	}
}

func (w *World) wakeAll() {
	for _, b := range w.bodies {
		b.wake()
	}
}

func (b *Body) wake() {
	b.sleeping = false
	b.idleTime = 0
}

func (b *Body) resting() bool {
	return b.Velocity.Len() < sleepLinear && b.AngularVelocity.Len() < sleepAngular
}

func (w *World) firstInvalid() (ID, bool) {
	for _, b := range w.bodies {
		if !finiteVec(b.Position) || !finiteVec(b.Velocity) ||
			!finiteVec(b.AngularVelocity) || !finiteQuat(b.Orientation) {
			return b.id, false
		}
	}
	return 0, true
}

func (w *World) save() []Body {
	out := make([]Body, len(w.bodies))
	for i, b := range w.bodies {
		out[i] = *b
	}
	return out
}

func (w *World) restore(saved []Body) {
	for i := range saved {
		*w.bodies[i] = saved[i]
	}
}
