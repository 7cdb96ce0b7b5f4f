// Package camera places the chase camera behind the vehicle.
package camera

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

// Pose is where the camera sits and what it looks at.
type Pose struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

// Rig is a stateless chase camera. It snaps to its pose every frame.
type Rig struct {
	Offset     mgl64.Vec3 // in vehicle space
	LookHeight float64
}

// NewRig creates a rig from the camera configuration.
func NewRig(cfg config.CameraConfig) Rig {
	return Rig{Offset: cfg.Offset, LookHeight: cfg.LookHeight}
}

// Follow returns the camera pose for a vehicle at position with orientation.
func (r Rig) Follow(position mgl64.Vec3, orientation mgl64.Quat) Pose {
	return Pose{
		Position: position.Add(orientation.Rotate(r.Offset)),
		Target:   position.Add(physics.UnitY.Mul(r.LookHeight)),
	}
}

// FollowHeading is Follow for a heading-only orientation.
func (r Rig) FollowHeading(position mgl64.Vec3, heading float64) Pose {
	return r.Follow(position, physics.YawQuat(heading))
}

// LookAt returns the view matrix for p.
func (p Pose) LookAt() mgl64.Mat4 {
	return mgl64.LookAtV(p.Position, p.Target, physics.UnitY)
}
