// Package physics is a compact rigid-body engine for boxes resting on planes.
//
// A [World] owns every [Body] added to it and advances them with [World.Step]:
//
//   - gravity is integrated into dynamic bodies
//   - box/plane and box/box contacts are detected on the current poses
//   - contacts are resolved with sequential impulses (restitution, friction,
//     positional correction)
//   - positions and orientations are integrated with the solved velocities
//
// Bodies are read back as immutable [BodyState] snapshots through [Foldl],
// [Fold] or [World.Bodies], so callers never hold pointers into the world.
//
// # Example
//
//	w := physics.NewWorld()
//	w.AddBody(physics.NewPlane(mgl64.Vec3{0, 1, 0}))
//	w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithPosition(mgl64.Vec3{0, 4, 0}))
//	for i := 0; i < 120; i++ {
//	    if err := w.Step(1.0 / 60); err != nil {
//	        return err
//	    }
//	}
//	n := physics.Foldl(w, 0, func(n int, b physics.BodyState) int { return n + 1 })
//
// # Coordinates
//
// The world is Y-up. Default gravity is (0, -9.81, 0).
//
// # Thread Safety
//
// A World is NOT safe for concurrent use. Callers that share a world between
// goroutines (the websocket hub, for example) guard it with their own mutex.
package physics
