// pkg/physics/body.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultLinearDamping is the fraction of velocity lost per second.
const DefaultLinearDamping = 0.01

// RigidBody is a dynamic box. A body with zero mass is static and never integrates.
type RigidBody struct {
	Mass            float64
	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	HalfExtents     mgl64.Vec3
	LinearDamping   float64

	force mgl64.Vec3
}

// NewRigidBody creates an upright body at the origin.
func NewRigidBody(mass float64, halfExtents mgl64.Vec3) *RigidBody {
	return &RigidBody{
		Mass:          mass,
		Quaternion:    mgl64.QuatIdent(),
		HalfExtents:   halfExtents,
		LinearDamping: DefaultLinearDamping,
	}
}

// ApplyForce accumulates f for the next sub-step.
func (b *RigidBody) ApplyForce(f mgl64.Vec3) {
	b.force = b.force.Add(f)
}

// Reset teleports the body to pos/q and clears all motion.
func (b *RigidBody) Reset(pos mgl64.Vec3, q mgl64.Quat) {
	b.Position = pos
	b.Quaternion = q.Normalize()
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.force = mgl64.Vec3{}
}

// PointToWorld maps a point in body space to world space.
func (b *RigidBody) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Position.Add(b.Quaternion.Rotate(local))
}

// VectorToWorld rotates a body-space direction into world space.
func (b *RigidBody) VectorToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Quaternion.Rotate(local)
}

// VectorToLocal rotates a world-space direction into body space.
func (b *RigidBody) VectorToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.Quaternion.Inverse().Rotate(world)
}

// Static reports whether the body ignores integration.
func (b *RigidBody) Static() bool {
	return b.Mass <= 0
}

// integrate advances the body by dt with semi-implicit Euler.
func (b *RigidBody) integrate(dt float64, gravity mgl64.Vec3) {
	defer func() { b.force = mgl64.Vec3{} }()
	if b.Static() {
		return
	}

	accel := gravity.Add(b.force.Mul(1 / b.Mass))
	b.Velocity = b.Velocity.Add(accel.Mul(dt))
	if b.LinearDamping > 0 {
		b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	}
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	if b.AngularVelocity.Len() > 0 {
		spin := mgl64.Quat{W: 0, V: b.AngularVelocity}.Mul(b.Quaternion).Scale(0.5 * dt)
		b.Quaternion = b.Quaternion.Add(spin).Normalize()
	}
}
