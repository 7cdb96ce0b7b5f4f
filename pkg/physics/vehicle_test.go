package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

func newTestVehicle(t *testing.T, spawn mgl64.Vec3) (*World, *RaycastVehicle) {
	t.Helper()

	w := NewWorld(mgl64.Vec3{0, -9.82, 0})
	ground, err := NewTrimesh(flatQuad(500, 0))
	require.NoError(t, err)
	w.AddTrimesh(ground)

	chassis := NewRigidBody(1200, mgl64.Vec3{0.6, 0.15, 1.25})
	chassis.Position = spawn
	v := NewRaycastVehicle(chassis, 1)
	for _, p := range []mgl64.Vec3{{0.6, 0.15, 1.1}, {-0.6, 0.15, 1.1}, {0.6, 0.15, -1.1}, {-0.6, 0.15, -1.1}} {
		v.AddWheel(WheelOptions{
			Radius:               0.2,
			DirectionLocal:       mgl64.Vec3{0, -1, 0},
			AxleLocal:            mgl64.Vec3{-1, 0, 0},
			ConnectionLocal:      p,
			SuspensionStiffness:  60,
			SuspensionRestLength: 0.045,
			SuspensionMaxLength:  0.2,
			MaxSuspensionTravel:  0.08,
			MaxSuspensionForce:   100000,
			DampingRelaxation:    2,
			DampingCompression:   4.5,
			FrictionSlip:         2.5,
			RollInfluence:        0.05,
		})
	}
	w.AddVehicle(v)
	return w, v
}

func run(w *World, frames int) {
	for i := 0; i < frames; i++ {
		w.Step(1.0/120, frame, 10)
	}
}

func TestRaycastVehicle_Settles(t *testing.T) {
	w, v := newTestVehicle(t, mgl64.Vec3{0, 0.5, 0})

	run(w, 180)

	assert.Equal(t, 4, v.WheelsInContact())
	assert.InDelta(t, 0.054, v.Chassis.Position.Y(), 0.01)
	assert.InDelta(t, 0, v.Chassis.Velocity.Y(), 0.05)
	for _, wheel := range v.Wheels {
		assert.Greater(t, wheel.SuspensionForce, 0.0)
	}
}

func TestRaycastVehicle_Airborne(t *testing.T) {
	w, v := newTestVehicle(t, mgl64.Vec3{0, 10, 0})
	v.ApplyEngineForce(-6000, 2)

	run(w, 10)

	assert.Equal(t, 0, v.WheelsInContact())
	assert.InDelta(t, 0, v.Chassis.Velocity.Z(), 1e-9, "engine has no effect in the air")
}

func TestRaycastVehicle_Drive(t *testing.T) {
	w, v := newTestVehicle(t, mgl64.Vec3{0, 0.3, 0})
	run(w, 60)

	v.ApplyEngineForce(-6000, 2)
	v.ApplyEngineForce(-6000, 3)
	run(w, 120)

	assert.Greater(t, v.ForwardSpeed(), 10.0)
	assert.Greater(t, v.Chassis.Position.Z(), 5.0)
	assert.InDelta(t, 0, v.Chassis.Position.X(), 1e-6)

	t.Run("positive force reverses", func(t *testing.T) {
		w, v := newTestVehicle(t, mgl64.Vec3{0, 0.3, 0})
		run(w, 60)
		v.ApplyEngineForce(6000, 2)
		v.ApplyEngineForce(6000, 3)
		run(w, 60)
		assert.Less(t, v.ForwardSpeed(), -1.0)
	})
}

func TestRaycastVehicle_BrakeStops(t *testing.T) {
	w, v := newTestVehicle(t, mgl64.Vec3{0, 0.3, 0})
	run(w, 60)
	v.ApplyEngineForce(-6000, 2)
	v.ApplyEngineForce(-6000, 3)
	run(w, 120)
	require.Greater(t, v.ForwardSpeed(), 10.0)

	for i := 0; i < v.NumWheels(); i++ {
		v.ApplyEngineForce(0, i)
		v.SetBrake(3000, i)
	}
	run(w, 240)

	assert.InDelta(t, 0, v.ForwardSpeed(), 0.01)
}

func TestRaycastVehicle_SteerLeftTurnsTowardsPositiveYaw(t *testing.T) {
	w, v := newTestVehicle(t, mgl64.Vec3{0, 0.3, 0})
	run(w, 60)

	v.ApplyEngineForce(-6000, 2)
	v.ApplyEngineForce(-6000, 3)
	v.SetSteeringValue(0.4, 0)
	v.SetSteeringValue(0.4, 1)
	run(w, 30)

	assert.Greater(t, Yaw(v.Chassis.Quaternion), 0.1)
	assert.Greater(t, v.Chassis.Position.X(), 0.0)
}

func TestRaycastVehicle_IgnoresUnknownWheel(t *testing.T) {
	_, v := newTestVehicle(t, mgl64.Vec3{0, 0.3, 0})

	v.ApplyEngineForce(100, 7)
	v.SetBrake(100, -1)
	v.SetSteeringValue(1, 4)

	for _, wheel := range v.Wheels {
		assert.Zero(t, wheel.EngineForce)
		assert.Zero(t, wheel.Brake)
		assert.Zero(t, wheel.SteeringValue)
	}
}
