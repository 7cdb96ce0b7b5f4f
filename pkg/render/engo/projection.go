// pkg/render/engo/projection.go
package engo

import (
	"math"

	"github.com/EngoEngine/engo"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultPixelsPerMetre is the map scale at zoom 1.
const DefaultPixelsPerMetre = 6

// Projection flattens the world onto the screen as seen from above.
// World +Z points up the screen and world +X points left, so the map
// is not mirrored.
type Projection struct {
	PixelsPerMetre float32
}

// Point maps a world position to engo world pixels. Height is dropped.
func (p Projection) Point(pos mgl64.Vec3) engo.Point {
	return engo.Point{
		X: float32(-pos.X()) * p.PixelsPerMetre,
		Y: float32(-pos.Z()) * p.PixelsPerMetre,
	}
}

// World maps engo world pixels back to a position on the y=0 plane.
func (p Projection) World(pt engo.Point) mgl64.Vec3 {
	if p.PixelsPerMetre == 0 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{
		float64(-pt.X / p.PixelsPerMetre),
		0,
		float64(-pt.Y / p.PixelsPerMetre),
	}
}

// Rotation converts a heading about +Y to engo's clockwise degrees.
func (p Projection) Rotation(heading float64) float32 {
	return float32(-heading * 180 / math.Pi)
}

// Length converts metres to pixels.
func (p Projection) Length(metres float64) float32 {
	return float32(metres) * p.PixelsPerMetre
}
