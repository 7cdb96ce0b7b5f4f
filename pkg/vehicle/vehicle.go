// Package vehicle contains the per-frame vehicle update: the kinematic
// speed-scalar model, the raycast physics controller, and the wheel visuals
// both of them drive.
package vehicle

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/input"
)

// ErrMissingWheel is returned when a drive wheel node cannot be found.
var ErrMissingWheel = errors.New("vehicle model is missing a wheel node")

// Pose is where the vehicle is after a frame.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// FrameResult reports what happened during Step.
type FrameResult struct {
	// Reset is set when the vehicle fell off and was put back at spawn.
	Reset    bool
	FellFrom mgl64.Vec3
}

// Model is one way of moving the vehicle. Step runs a whole frame:
// controls, integration, visual sync.
type Model interface {
	Mode() config.Mode
	Step(in input.State, dt float64) FrameResult
	Pose() Pose
	// Speed is the vehicle's speed in metres per second.
	Speed() float64
}

// Controls is the part of a raycast vehicle the controller writes to.
type Controls interface {
	ApplyEngineForce(force float64, wheel int)
	SetBrake(brake float64, wheel int)
	SetSteeringValue(steer float64, wheel int)
}

// steerAngle maps left/right input to the visual front-wheel angle.
func steerAngle(in input.State, max float64) float64 {
	return in.Steering() * max
}
