// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World axes. The vehicle's local forward is +Z, up is +Y.
var (
	UnitX = mgl64.Vec3{1, 0, 0}
	UnitY = mgl64.Vec3{0, 1, 0}
	UnitZ = mgl64.Vec3{0, 0, 1}
)

// YawQuat returns the rotation of yaw radians about +Y.
func YawQuat(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, UnitY)
}

// Yaw extracts the heading of q, measured from +Z towards +X.
func Yaw(q mgl64.Quat) float64 {
	f := q.Rotate(UnitZ)
	return math.Atan2(f.X(), f.Z())
}

// ForwardFromYaw returns the unit forward vector (sin θ, 0, cos θ).
func ForwardFromYaw(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}

// Sign returns -1, 0 or 1.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
