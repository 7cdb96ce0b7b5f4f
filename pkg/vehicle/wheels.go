package vehicle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

const pivotSuffix = "Pivot"

// WheelRig drives the wheel nodes of a vehicle model.
// Wheels are in front-left, front-right, rear-left, rear-right order.
type WheelRig struct {
	Wheels        [4]*assets.Node
	Pivots        [2]*assets.Node
	SteeringWheel *assets.Node

	wheelBase    [4]mgl64.Quat
	steeringBase mgl64.Quat
	ratio        float64
	roll         float64
	steer        float64
}

// NewWheelRig looks up the wheel nodes and wraps each front wheel in a
// steering pivot. A model that was already rigged keeps its pivots.
// The steering wheel is optional.
func NewWheelRig(model *assets.Model, cfg config.AssetConfig) (*WheelRig, error) {
	names := [4]string{cfg.Wheels.FrontLeft, cfg.Wheels.FrontRight, cfg.Wheels.RearLeft, cfg.Wheels.RearRight}

	r := &WheelRig{ratio: cfg.SteeringWheelRatio}
	for i, name := range names {
		n := model.Find(name)
		if n == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingWheel, name)
		}
		r.Wheels[i] = n
		r.wheelBase[i] = n.Rotation
	}

	for i := range r.Pivots {
		r.Pivots[i] = wrapInPivot(r.Wheels[i])
	}

	if sw := model.Find(cfg.SteeringWheel); sw != nil {
		r.SteeringWheel = sw
		r.steeringBase = sw.Rotation
	}
	return r, nil
}

func wrapInPivot(wheel *assets.Node) *assets.Node {
	name := wheel.Name + pivotSuffix
	parent := wheel.Parent()
	if parent != nil && parent.Name == name {
		return parent
	}

	pivot := assets.NewNode(name)
	pivot.Position = wheel.Position
	wheel.Position = mgl64.Vec3{}
	if parent != nil {
		parent.Add(pivot)
	}
	pivot.Add(wheel)
	return pivot
}

// Roll adds delta radians of rolling rotation to every wheel.
func (r *WheelRig) Roll(delta float64) {
	r.roll += delta
	r.apply()
}

// ResetRoll puts every wheel back at zero roll.
func (r *WheelRig) ResetRoll() {
	r.roll = 0
	r.apply()
}

// SetSteer turns both front pivots, and the steering wheel if present, to angle radians.
func (r *WheelRig) SetSteer(angle float64) {
	r.steer = angle
	q := physics.YawQuat(angle)
	for _, p := range r.Pivots {
		p.Rotation = q
	}
	if r.SteeringWheel != nil {
		r.SteeringWheel.Rotation = r.steeringBase.Mul(mgl64.QuatRotate(angle*r.ratio, physics.UnitZ))
	}
}

// RollAngle is the accumulated roll in radians.
func (r *WheelRig) RollAngle() float64 { return r.roll }

// SteerAngle is the current front-wheel angle in radians.
func (r *WheelRig) SteerAngle() float64 { return r.steer }

func (r *WheelRig) apply() {
	spin := mgl64.QuatRotate(r.roll, physics.UnitX)
	for i, w := range r.Wheels {
		w.Rotation = r.wheelBase[i].Mul(spin)
	}
}
