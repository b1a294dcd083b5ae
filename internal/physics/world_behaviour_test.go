package physics_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dicebox/internal/physics"
)

var _ = Describe("World", func() {
	var w *physics.World

	BeforeEach(func() {
		w = physics.NewWorld()
		_, err := w.AddBody(physics.NewPlane(mgl64.Vec3{0, 1, 0}))
		Expect(err).NotTo(HaveOccurred())
	})

	stepFor := func(seconds float64) {
		for t := 0.0; t < seconds; t += 1.0 / 60 {
			Expect(w.Step(1.0 / 60)).To(Succeed())
		}
	}

	Context("with a thrown box", func() {
		var id physics.ID

		BeforeEach(func() {
			var err error
			id, err = w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).
				WithPosition(mgl64.Vec3{0, 3, 0}).
				WithOrientation(mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize())).
				WithVelocity(mgl64.Vec3{2, 1, -1}).
				WithAngularVelocity(mgl64.Vec3{4, -2, 6}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("never falls through the ground", func() {
			for i := 0; i < 360; i++ {
				Expect(w.Step(1.0 / 60)).To(Succeed())
				b, ok := w.Body(id)
				Expect(ok).To(BeTrue())
				Expect(b.Position.Y()).To(BeNumerically(">", 0.3))
			}
		})

		It("loses energy and eventually settles", func() {
			start := w.KineticEnergy()
			stepFor(8)
			Expect(w.KineticEnergy()).To(BeNumerically("<", start))
			Expect(w.Settled()).To(BeTrue())
		})

		It("keeps every box corner above the plane once at rest", func() {
			stepFor(8)
			b, _ := w.Body(id)
			for _, c := range b.Corners() {
				Expect(c.Y()).To(BeNumerically(">", -0.05))
			}
		})
	})

	Context("folding", func() {
		BeforeEach(func() {
			for i := 0; i < 4; i++ {
				_, err := w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).
					WithPosition(mgl64.Vec3{float64(i) * 2, 1, 0}))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("visits every body exactly once", func() {
			seen := physics.Foldl(w, map[physics.ID]int{}, func(acc map[physics.ID]int, b physics.BodyState) map[physics.ID]int {
				acc[b.ID]++
				return acc
			})
			Expect(seen).To(HaveLen(5))
			for _, n := range seen {
				Expect(n).To(Equal(1))
			}
		})

		It("reports the plane first in insertion order", func() {
			bodies := w.Bodies()
			Expect(bodies[0].Kind).To(Equal(physics.KindPlane))
			Expect(bodies[0].Static).To(BeTrue())
		})

		It("counts boxes with a right fold", func() {
			n := physics.Fold(w, 0, func(n int, b physics.BodyState) int {
				if b.Kind == physics.KindBox {
					n++
				}
				return n
			})
			Expect(n).To(Equal(4))
		})
	})

	Context("with invalid input", func() {
		It("wraps timestep errors in a StepError", func() {
			err := w.Step(-1)
			var stepErr *physics.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(err).To(MatchError(physics.ErrInvalidTimestep))
		})

		It("leaves the world untouched after a rejected step", func() {
			before := w.Time()
			Expect(w.Step(math.NaN())).NotTo(Succeed())
			Expect(w.Time()).To(Equal(before))
		})

		It("rolls back a step that diverges", func() {
			start := mgl64.Vec3{0, math.MaxFloat64, 0}
			id, err := w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).
				WithPosition(start).
				WithVelocity(mgl64.Vec3{0, 1e308, 0}))
			Expect(err).NotTo(HaveOccurred())

			before := w.Time()
			Expect(w.Step(1.0 / 60)).To(MatchError(physics.ErrUnstable))
			Expect(w.Time()).To(Equal(before))
			b, _ := w.Body(id)
			Expect(b.Position).To(Equal(start))
		})
	})

	Context("when gravity changes", func() {
		It("wakes sleeping boxes", func() {
			id, _ := w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithPosition(mgl64.Vec3{0, 0.5, 0}))
			stepFor(3)
			b, _ := w.Body(id)
			Expect(b.Sleeping).To(BeTrue())

			w.SetGravity(mgl64.Vec3{0, 9.81, 0})
			stepFor(0.5)
			b, _ = w.Body(id)
			Expect(b.Sleeping).To(BeFalse())
			Expect(b.Position.Y()).To(BeNumerically(">", 1))
		})
	})
})
