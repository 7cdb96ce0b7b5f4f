package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/input"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

// ApplyControls writes one frame of input into c.
//
// Brakes are cleared first. Forward pushes the driven wheels with a negative
// engine force, backward with a positive one scaled by ReverseMultiplier, and
// no throttle applies AutoBrake to the driven wheels. The brake key then sets
// BrakeForce on all wheels, overriding the auto-brake.
func ApplyControls(c Controls, in input.State, cfg config.ControlConfig, numWheels int) {
	for i := 0; i < numWheels; i++ {
		c.SetBrake(0, i)
	}

	for _, i := range cfg.DrivenWheels {
		switch {
		case in.Forward():
			c.ApplyEngineForce(-cfg.EngineForce, i)
		case in.Backward():
			c.ApplyEngineForce(cfg.EngineForce*cfg.ReverseMultiplier, i)
		default:
			c.ApplyEngineForce(0, i)
			c.SetBrake(cfg.AutoBrake, i)
		}
	}

	if in.Brake() {
		for i := 0; i < numWheels; i++ {
			c.SetBrake(cfg.BrakeForce, i)
		}
	}

	steer := in.Steering() * cfg.SteerValue
	for _, i := range cfg.SteeredWheels {
		c.SetSteeringValue(steer, i)
	}
}

// Raycast drives the chassis of a raycast vehicle through the physics world
// and copies the result into the visual model.
type Raycast struct {
	world    *physics.World
	vehicle  *physics.RaycastVehicle
	physics  config.PhysicsConfig
	spawn    config.SpawnConfig
	wrapper  *assets.Node
	rig      *WheelRig
	substeps int
}

// NewRaycast puts the chassis at the spawn pose. wrapper and rig may be nil.
func NewRaycast(world *physics.World, v *physics.RaycastVehicle, cfg config.PhysicsConfig, spawn config.SpawnConfig, wrapper *assets.Node, rig *WheelRig) *Raycast {
	r := &Raycast{
		world:   world,
		vehicle: v,
		physics: cfg,
		spawn:   spawn,
		wrapper: wrapper,
		rig:     rig,
	}
	v.Chassis.Reset(spawn.Position, physics.YawQuat(spawn.Yaw))
	r.SyncVisual()
	return r
}

// NewRaycastVehicle builds a chassis and its wheels from cfg and adds them to world.
func NewRaycastVehicle(world *physics.World, cfg config.PhysicsConfig) *physics.RaycastVehicle {
	chassis := physics.NewRigidBody(cfg.Chassis.Mass, cfg.Chassis.HalfExtents)
	v := physics.NewRaycastVehicle(chassis, cfg.GroundFriction)
	for _, p := range cfg.WheelPositions {
		v.AddWheel(physics.WheelOptions{
			Radius:               cfg.Wheel.Radius,
			DirectionLocal:       cfg.Wheel.DirectionLocal,
			AxleLocal:            cfg.Wheel.AxleLocal,
			ConnectionLocal:      p,
			SuspensionStiffness:  cfg.Wheel.SuspensionStiffness,
			SuspensionRestLength: cfg.Wheel.SuspensionRestLength,
			SuspensionMaxLength:  cfg.Wheel.SuspensionMaxLength,
			MaxSuspensionTravel:  cfg.Wheel.MaxSuspensionTravel,
			MaxSuspensionForce:   cfg.Wheel.MaxSuspensionForce,
			DampingRelaxation:    cfg.Wheel.DampingRelaxation,
			DampingCompression:   cfg.Wheel.DampingCompression,
			FrictionSlip:         cfg.Wheel.FrictionSlip,
			RollInfluence:        cfg.Wheel.RollInfluence,
		})
	}
	world.AddVehicle(v)
	return v
}

// Mode implements Model.
func (r *Raycast) Mode() config.Mode { return config.ModePhysics }

// Vehicle exposes the underlying raycast vehicle.
func (r *Raycast) Vehicle() *physics.RaycastVehicle { return r.vehicle }

// SubSteps is the number of physics sub-steps taken by the last Step.
func (r *Raycast) SubSteps() int { return r.substeps }

// Step implements Model.
func (r *Raycast) Step(in input.State, dt float64) FrameResult {
	ApplyControls(r.vehicle, in, r.physics.Controls, r.vehicle.NumWheels())
	r.substeps = r.world.Step(r.physics.FixedStep, dt, r.physics.MaxSubSteps)

	var res FrameResult
	if fell, ok := r.Recover(); ok {
		res = FrameResult{Reset: true, FellFrom: fell}
	}

	r.SyncVisual()
	r.SyncWheelVisuals(in)
	return res
}

// Recover puts the chassis back at spawn when it has fallen below the
// threshold. It returns the position it fell from.
func (r *Raycast) Recover() (mgl64.Vec3, bool) {
	chassis := r.vehicle.Chassis
	if chassis.Position.Y() >= r.physics.FallThreshold {
		return mgl64.Vec3{}, false
	}

	fell := chassis.Position
	chassis.Reset(r.spawn.Position, physics.YawQuat(r.spawn.Yaw))
	if r.rig != nil {
		r.rig.ResetRoll()
	}
	return fell, true
}

// SyncVisual copies the chassis position and orientation onto the wrapper.
func (r *Raycast) SyncVisual() {
	if r.wrapper == nil {
		return
	}
	r.wrapper.Position = r.vehicle.Chassis.Position
	r.wrapper.Rotation = r.vehicle.Chassis.Quaternion
}

// SyncWheelVisuals rolls the wheels by the chassis speed, signed by the
// direction of travel along the chassis, and turns the front pivots.
func (r *Raycast) SyncWheelVisuals(in input.State) {
	if r.rig == nil {
		return
	}
	chassis := r.vehicle.Chassis
	local := chassis.VectorToLocal(chassis.Velocity)
	r.rig.Roll(-physics.Sign(local.Z()) * chassis.Velocity.Len() * r.physics.Controls.RollCoefficient)
	r.rig.SetSteer(steerAngle(in, r.physics.Controls.MaxSteerAngle))
}

// Pose implements Model.
func (r *Raycast) Pose() Pose {
	return Pose{Position: r.vehicle.Chassis.Position, Orientation: r.vehicle.Chassis.Quaternion}
}

// Speed implements Model.
func (r *Raycast) Speed() float64 {
	return r.vehicle.Chassis.Velocity.Len()
}
