package vehicle

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/input"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

type wheelValues struct {
	engine, brake, steer float64
}

type recorder struct {
	wheels [4]wheelValues
}

func (r *recorder) ApplyEngineForce(force float64, i int) { r.wheels[i].engine = force }
func (r *recorder) SetBrake(brake float64, i int)         { r.wheels[i].brake = brake }
func (r *recorder) SetSteeringValue(steer float64, i int) { r.wheels[i].steer = steer }

func TestApplyControls(t *testing.T) {
	cfg := config.DefaultConfig().Physics.Controls

	tests := []struct {
		name string
		in   input.State
		want [4]wheelValues
	}{
		{"forward", input.NewState(input.Forward), [4]wheelValues{
			{}, {}, {engine: -6000}, {engine: -6000},
		}},
		{"backward", input.NewState(input.Backward), [4]wheelValues{
			{}, {}, {engine: 36000}, {engine: 36000},
		}},
		{"coasting auto-brakes the driven wheels", input.NewState(), [4]wheelValues{
			{}, {}, {brake: 10}, {brake: 10},
		}},
		{"brake overrides auto-brake", input.NewState(input.Brake), [4]wheelValues{
			{brake: 3000}, {brake: 3000}, {brake: 3000}, {brake: 3000},
		}},
		{"brake with throttle", input.NewState(input.Forward, input.Brake), [4]wheelValues{
			{brake: 3000}, {brake: 3000}, {engine: -6000, brake: 3000}, {engine: -6000, brake: 3000},
		}},
		{"left", input.NewState(input.Forward, input.Left), [4]wheelValues{
			{steer: 0.4}, {steer: 0.4}, {engine: -6000}, {engine: -6000},
		}},
		{"right", input.NewState(input.Forward, input.Right), [4]wheelValues{
			{steer: -0.4}, {steer: -0.4}, {engine: -6000}, {engine: -6000},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			// Stale values from a previous frame must not survive.
			for i := range r.wheels {
				r.wheels[i] = wheelValues{brake: 99, steer: 9}
			}
			r.wheels[2].engine, r.wheels[3].engine = 1, 1

			ApplyControls(r, tt.in, cfg, 4)
			assert.Equal(t, tt.want, r.wheels)
		})
	}
}

func flatGround(t *testing.T, world *physics.World) {
	t.Helper()
	mesh, err := physics.NewTrimesh(physics.Geometry{
		Positions: []float64{-200, 0, -200, 200, 0, -200, 200, 0, 200, -200, 0, 200},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
	})
	require.NoError(t, err)
	world.AddTrimesh(mesh)
}

func newTestRaycast(t *testing.T, ground bool) (*Raycast, *assets.Model, *WheelRig) {
	t.Helper()
	cfg := config.DefaultConfig()

	world := physics.NewWorld(cfg.Physics.Gravity)
	if ground {
		flatGround(t, world)
	}
	car := assets.NewCar()
	rig, err := NewWheelRig(car, cfg.Assets)
	require.NoError(t, err)

	v := NewRaycastVehicle(world, cfg.Physics)
	return NewRaycast(world, v, cfg.Physics, cfg.Spawn, car.Root, rig), car, rig
}

func TestRaycast_SpawnPose(t *testing.T) {
	r, car, _ := newTestRaycast(t, true)
	spawn := config.DefaultConfig().Spawn

	assert.Equal(t, spawn.Position, r.Pose().Position)
	assert.Equal(t, spawn.Position, car.Root.Position)
	assert.InDelta(t, spawn.Yaw, physics.Yaw(r.Pose().Orientation), 1e-9)
	assert.Equal(t, 4, r.Vehicle().NumWheels())
	assert.Equal(t, config.ModePhysics, r.Mode())
}

func TestRaycast_DriveForward(t *testing.T) {
	r, car, rig := newTestRaycast(t, true)

	for i := 0; i < 60; i++ {
		r.Step(input.NewState(), 1.0/60)
	}
	assert.Equal(t, 2, r.SubSteps())
	assert.Equal(t, 4, r.Vehicle().WheelsInContact())

	for i := 0; i < 120; i++ {
		res := r.Step(input.NewState(input.Forward), 1.0/60)
		require.False(t, res.Reset)
	}

	assert.Greater(t, r.Speed(), 5.0)
	// Spawn faces -X.
	assert.Less(t, r.Pose().Position.X(), -28.0)
	assert.Less(t, rig.RollAngle(), 0.0, "forward travel rolls the wheels negatively")
	assert.Equal(t, r.Pose().Position, car.Root.Position)
	assert.Equal(t, r.Pose().Orientation, car.Root.Rotation)
}

func TestRaycast_SteerVisual(t *testing.T) {
	r, _, rig := newTestRaycast(t, true)

	r.Step(input.NewState(input.Left), 1.0/60)
	assert.Equal(t, config.DefaultConfig().Physics.Controls.MaxSteerAngle, rig.SteerAngle())

	r.Step(input.NewState(input.Right), 1.0/60)
	assert.Equal(t, -config.DefaultConfig().Physics.Controls.MaxSteerAngle, rig.SteerAngle())

	r.Step(input.NewState(), 1.0/60)
	assert.Equal(t, 0.0, rig.SteerAngle())
}

func TestRaycast_RecoversAfterFalling(t *testing.T) {
	r, car, rig := newTestRaycast(t, false)
	spawn := config.DefaultConfig().Spawn

	var res FrameResult
	for i := 0; i < 600 && !res.Reset; i++ {
		res = r.Step(input.NewState(input.Forward), 1.0/60)
	}
	require.True(t, res.Reset, "chassis never fell below the threshold")
	assert.Less(t, res.FellFrom.Y(), -5.0)

	chassis := r.Vehicle().Chassis
	assert.Equal(t, spawn.Position, chassis.Position)
	assert.Equal(t, mgl64.Vec3{}, chassis.Velocity)
	assert.Equal(t, mgl64.Vec3{}, chassis.AngularVelocity)
	assert.Equal(t, spawn.Position, car.Root.Position)
	assert.Equal(t, 0.0, rig.RollAngle())
}
