// pkg/physics/vehicle.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WheelOptions configures one raycast wheel. Directions are in chassis space.
type WheelOptions struct {
	Radius               float64
	DirectionLocal       mgl64.Vec3
	AxleLocal            mgl64.Vec3
	ConnectionLocal      mgl64.Vec3
	SuspensionStiffness  float64
	SuspensionRestLength float64
	SuspensionMaxLength  float64
	MaxSuspensionTravel  float64
	MaxSuspensionForce   float64
	DampingRelaxation    float64
	DampingCompression   float64
	FrictionSlip         float64
	RollInfluence        float64
}

// WheelInfo is a wheel's options plus its live state.
type WheelInfo struct {
	WheelOptions

	EngineForce      float64
	Brake            float64
	SteeringValue    float64
	InContact        bool
	SuspensionLength float64
	SuspensionForce  float64
	ContactPoint     mgl64.Vec3
	ContactNormal    mgl64.Vec3
}

// RaycastVehicle suspends a chassis on wheels that probe the ground with rays.
// The chassis stays level: only yaw is driven, pitch and roll are not simulated.
//
// A positive engine force pushes the chassis towards local -Z.
type RaycastVehicle struct {
	Chassis        *RigidBody
	Wheels         []*WheelInfo
	GroundFriction float64
}

// NewRaycastVehicle creates a vehicle around chassis.
func NewRaycastVehicle(chassis *RigidBody, groundFriction float64) *RaycastVehicle {
	return &RaycastVehicle{Chassis: chassis, GroundFriction: groundFriction}
}

// AddWheel appends a wheel and returns its index.
func (v *RaycastVehicle) AddWheel(opts WheelOptions) int {
	if opts.DirectionLocal.Len() == 0 {
		opts.DirectionLocal = UnitY.Mul(-1)
	}
	opts.DirectionLocal = opts.DirectionLocal.Normalize()
	v.Wheels = append(v.Wheels, &WheelInfo{
		WheelOptions:     opts,
		SuspensionLength: opts.SuspensionRestLength,
	})
	return len(v.Wheels) - 1
}

// NumWheels returns the wheel count.
func (v *RaycastVehicle) NumWheels() int { return len(v.Wheels) }

func (v *RaycastVehicle) wheel(i int) *WheelInfo {
	if i < 0 || i >= len(v.Wheels) {
		return nil
	}
	return v.Wheels[i]
}

// ApplyEngineForce sets the engine force of wheel i. Unknown indices are ignored.
func (v *RaycastVehicle) ApplyEngineForce(force float64, i int) {
	if w := v.wheel(i); w != nil {
		w.EngineForce = force
	}
}

// SetBrake sets the brake of wheel i. Unknown indices are ignored.
func (v *RaycastVehicle) SetBrake(brake float64, i int) {
	if w := v.wheel(i); w != nil {
		w.Brake = math.Abs(brake)
	}
}

// SetSteeringValue sets the steering angle in radians of wheel i. Unknown indices are ignored.
func (v *RaycastVehicle) SetSteeringValue(steer float64, i int) {
	if w := v.wheel(i); w != nil {
		w.SteeringValue = steer
	}
}

// WheelsInContact counts the wheels whose ray found ground on the last sub-step.
func (v *RaycastVehicle) WheelsInContact() int {
	n := 0
	for _, w := range v.Wheels {
		if w.InContact {
			n++
		}
	}
	return n
}

// ForwardSpeed is the chassis velocity along its local +Z.
func (v *RaycastVehicle) ForwardSpeed() float64 {
	return v.Chassis.VectorToLocal(v.Chassis.Velocity).Z()
}

func (v *RaycastVehicle) update(dt float64, world *World) {
	if len(v.Wheels) == 0 || v.Chassis.Static() {
		return
	}
	chassis := v.Chassis
	mass := chassis.Mass

	var (
		contacts  int
		normalSum mgl64.Vec3
	)
	for _, w := range v.Wheels {
		v.updateSuspension(w, world)
		if !w.InContact {
			continue
		}
		contacts++
		normalSum = normalSum.Add(w.ContactNormal)

		vn := chassis.Velocity.Dot(w.ContactNormal)
		damping := w.DampingRelaxation
		if vn < 0 {
			damping = w.DampingCompression
		}
		force := mass * (w.SuspensionStiffness*(w.SuspensionRestLength-w.SuspensionLength) - damping*vn)
		force = math.Max(0, math.Min(force, w.MaxSuspensionForce))
		w.SuspensionForce = force
		chassis.ApplyForce(w.ContactNormal.Mul(force))
	}
	if contacts == 0 {
		return
	}

	up := normalSum.Normalize()
	forward := projectOnPlane(chassis.VectorToWorld(UnitZ), up)
	right := projectOnPlane(chassis.VectorToWorld(UnitX), up)

	var engine, brake float64
	for _, w := range v.Wheels {
		if !w.InContact {
			continue
		}
		engine -= w.EngineForce
		brake += w.Brake
	}
	chassis.ApplyForce(forward.Mul(engine))

	fwdSpeed := chassis.Velocity.Dot(forward)
	if brake > 0 && fwdSpeed != 0 {
		dv := math.Min(math.Abs(fwdSpeed), brake/mass*dt)
		chassis.Velocity = chassis.Velocity.Sub(forward.Mul(Sign(fwdSpeed) * dv))
		fwdSpeed -= Sign(fwdSpeed) * dv
	}

	grip := math.Min(1, v.frictionSlip()*v.GroundFriction*dt*20) * float64(contacts) / float64(len(v.Wheels))
	latSpeed := chassis.Velocity.Dot(right)
	chassis.Velocity = chassis.Velocity.Sub(right.Mul(latSpeed * grip))

	if wheelbase, steer := v.steerGeometry(); wheelbase > 0 {
		chassis.AngularVelocity = up.Mul(fwdSpeed * math.Tan(steer) / wheelbase)
	}
}

func (v *RaycastVehicle) updateSuspension(w *WheelInfo, world *World) {
	chassis := v.Chassis
	origin := chassis.PointToWorld(w.ConnectionLocal)
	dir := chassis.VectorToWorld(w.DirectionLocal)

	hit, ok := world.Raycast(origin, dir, w.SuspensionMaxLength+w.Radius)
	if !ok {
		w.InContact = false
		w.SuspensionLength = w.SuspensionRestLength + w.MaxSuspensionTravel
		w.SuspensionForce = 0
		return
	}

	length := hit.Distance - w.Radius
	minLength := math.Max(0, w.SuspensionRestLength-w.MaxSuspensionTravel)
	maxLength := w.SuspensionRestLength + w.MaxSuspensionTravel
	w.SuspensionLength = math.Max(minLength, math.Min(length, maxLength))
	w.InContact = true
	w.ContactPoint = hit.Point
	w.ContactNormal = hit.Normal
}

func (v *RaycastVehicle) frictionSlip() float64 {
	var sum float64
	for _, w := range v.Wheels {
		sum += w.FrictionSlip
	}
	return sum / float64(len(v.Wheels))
}

// steerGeometry returns the axle spacing and the mean steering angle of the front axle.
func (v *RaycastVehicle) steerGeometry() (float64, float64) {
	front, rear := math.Inf(-1), math.Inf(1)
	for _, w := range v.Wheels {
		front = math.Max(front, w.ConnectionLocal.Z())
		rear = math.Min(rear, w.ConnectionLocal.Z())
	}
	mid := (front + rear) / 2

	var steer float64
	n := 0
	for _, w := range v.Wheels {
		if w.ConnectionLocal.Z() > mid {
			steer += w.SteeringValue
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return front - rear, steer / float64(n)
}

func projectOnPlane(vec, normal mgl64.Vec3) mgl64.Vec3 {
	p := vec.Sub(normal.Mul(vec.Dot(normal)))
	if p.Len() == 0 {
		return p
	}
	return p.Normalize()
}
