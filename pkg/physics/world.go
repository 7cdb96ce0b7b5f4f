// pkg/physics/world.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const stepEpsilon = 1e-9

// World owns the dynamic bodies, static trimeshes and raycast vehicles.
// It is not safe for concurrent use; the frame loop is its only caller.
type World struct {
	Gravity mgl64.Vec3

	bodies      []*RigidBody
	statics     []*Trimesh
	vehicles    []*RaycastVehicle
	accumulator float64
	time        float64
}

// NewWorld creates an empty world.
func NewWorld(gravity mgl64.Vec3) *World {
	return &World{Gravity: gravity}
}

// AddBody adds a dynamic body. Adding the same body twice is a no-op.
func (w *World) AddBody(b *RigidBody) {
	for _, existing := range w.bodies {
		if existing == b {
			return
		}
	}
	w.bodies = append(w.bodies, b)
}

// AddTrimesh adds static ground collision.
func (w *World) AddTrimesh(t *Trimesh) {
	w.statics = append(w.statics, t)
}

// AddVehicle adds v and its chassis.
func (w *World) AddVehicle(v *RaycastVehicle) {
	w.AddBody(v.Chassis)
	w.vehicles = append(w.vehicles, v)
}

// Bodies returns the number of dynamic bodies.
func (w *World) Bodies() int { return len(w.bodies) }

// Statics returns the number of static trimeshes.
func (w *World) Statics() int { return len(w.statics) }

// Time is the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// Step advances the world by elapsed seconds in fixed sub-steps of fixedStep,
// running at most maxSubSteps of them. Time left over when the cap is hit is
// dropped to less than one step so the simulation never spirals.
// It returns the number of sub-steps taken.
func (w *World) Step(fixedStep, elapsed float64, maxSubSteps int) int {
	if fixedStep <= 0 || maxSubSteps <= 0 {
		return 0
	}
	if elapsed > 0 {
		w.accumulator += elapsed
	}

	steps := 0
	for w.accumulator+stepEpsilon >= fixedStep && steps < maxSubSteps {
		w.internalStep(fixedStep)
		w.accumulator -= fixedStep
		steps++
	}
	if w.accumulator < 0 {
		w.accumulator = 0
	}
	if steps == maxSubSteps {
		w.accumulator = math.Mod(w.accumulator, fixedStep)
		if w.accumulator+stepEpsilon >= fixedStep {
			w.accumulator = 0
		}
	}
	return steps
}

func (w *World) internalStep(dt float64) {
	for _, v := range w.vehicles {
		v.update(dt, w)
	}
	for _, b := range w.bodies {
		b.integrate(dt, w.Gravity)
	}
	w.time += dt
}

// Raycast returns the nearest static hit along dir within maxDist.
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64) (RayHit, bool) {
	var (
		best  RayHit
		found bool
	)
	for _, t := range w.statics {
		hit, ok := t.Raycast(origin, dir, maxDist)
		if ok && (!found || hit.Distance < best.Distance) {
			best, found = hit, true
		}
	}
	return best, found
}
