// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"
)

// CameraSystem keeps the top-down view centred on the car. It snaps to the
// chase-camera target every frame.
type CameraSystem struct {
	projection Projection

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32

	// Current camera state, in engo world pixels
	currentPos engo.Point
	targetSet  bool
}

// NewCameraSystem creates a new camera system
func NewCameraSystem(projection Projection) *CameraSystem {
	return &CameraSystem{
		projection: projection,
		zoom:       1.0,
		minZoom:    0.25,
		maxZoom:    4.0,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {
}

// Priority orders the system within the engo world.
func (cs *CameraSystem) Priority() int { return priorityCamera }

// Update applies zoom input and hands the view to engo's camera.
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()
	cs.applyCameraTransform()
}

// handleZoomInput processes zoom-related input
func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1 + scrollY*0.1))
	}
	if engo.Input.Button(buttonResetZoom).JustPressed() {
		cs.SetZoom(1.0)
	}
}

// applyCameraTransform hands the camera position and zoom to engo's camera.
func (cs *CameraSystem) applyCameraTransform() {
	if engo.Mailbox == nil {
		return
	}
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.XAxis, Value: cs.currentPos.X})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.YAxis, Value: cs.currentPos.Y})
	engo.Mailbox.Dispatch(common.CameraMessage{Axis: common.ZAxis, Value: 1 / cs.zoom})
}

// SetTarget centres the view on target immediately.
func (cs *CameraSystem) SetTarget(target mgl64.Vec3) {
	cs.currentPos = cs.projection.Point(target)
	cs.targetSet = true
}

// ClearTarget clears the camera target
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

// clampZoom ensures zoom is within valid bounds
func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// GetCurrentPosition returns the world position at the centre of the view.
func (cs *CameraSystem) GetCurrentPosition() mgl64.Vec3 {
	return cs.projection.World(cs.currentPos)
}

// WorldToScreen converts a world position to window pixels.
func (cs *CameraSystem) WorldToScreen(world mgl64.Vec3) engo.Point {
	p := cs.projection.Point(world)
	return engo.Point{
		X: (p.X-cs.currentPos.X)*cs.zoom + engo.GameWidth()/2,
		Y: (p.Y-cs.currentPos.Y)*cs.zoom + engo.GameHeight()/2,
	}
}

// ScreenToWorld converts window pixels to a world position on the ground.
func (cs *CameraSystem) ScreenToWorld(screen engo.Point) mgl64.Vec3 {
	return cs.projection.World(engo.Point{
		X: (screen.X-engo.GameWidth()/2)/cs.zoom + cs.currentPos.X,
		Y: (screen.Y-engo.GameHeight()/2)/cs.zoom + cs.currentPos.Y,
	})
}
