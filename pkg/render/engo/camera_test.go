// pkg/render/engo/camera_test.go
package engo

import (
	"math"
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewCameraSystem(t *testing.T) {
	camera := NewCameraSystem(Projection{PixelsPerMetre: DefaultPixelsPerMetre})

	if camera.zoom != 1.0 {
		t.Errorf("Expected default zoom 1.0, got %f", camera.zoom)
	}
	if camera.minZoom != 0.25 || camera.maxZoom != 4.0 {
		t.Errorf("Expected zoom limits [0.25, 4], got [%f, %f]", camera.minZoom, camera.maxZoom)
	}
	if camera.targetSet {
		t.Error("Expected targetSet to be false by default")
	}
}

func TestCameraSystem_SetTarget_SnapsEveryFrame(t *testing.T) {
	camera := NewCameraSystem(Projection{PixelsPerMetre: 10})

	for _, target := range []mgl64.Vec3{{-23, 1, 2.2}, {0, 0, 0}, {10, 0, 10}} {
		camera.SetTarget(target)
		if !camera.targetSet {
			t.Fatal("Expected targetSet to be true after setting target")
		}
		got := camera.GetCurrentPosition()
		if math.Abs(got.X()-target.X()) > 1e-4 || math.Abs(got.Z()-target.Z()) > 1e-4 {
			t.Errorf("Expected camera to snap to %v, got %v", target, got)
		}
	}

	camera.SetTarget(mgl64.Vec3{0, 0, -50})
	if !closeTo(camera.currentPos.Y, 500) || !closeTo(camera.currentPos.X, 0) {
		t.Errorf("Expected view centred at (0, 500) px, got %v", camera.currentPos)
	}

	camera.ClearTarget()
	if camera.targetSet {
		t.Error("Expected targetSet to be false after clearing target")
	}
}

func TestCameraSystem_clampZoom(t *testing.T) {
	camera := NewCameraSystem(Projection{PixelsPerMetre: 1})

	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"within limits", 2, 2},
		{"below minimum", 0.01, 0.25},
		{"above maximum", 10, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera.SetZoom(tt.in)
			if camera.GetZoom() != tt.want {
				t.Errorf("SetZoom(%f) gave %f, want %f", tt.in, camera.GetZoom(), tt.want)
			}
		})
	}
}

func TestCameraSystem_CoordinateTransformation_Consistency(t *testing.T) {
	camera := NewCameraSystem(Projection{PixelsPerMetre: 6})
	camera.SetTarget(mgl64.Vec3{10, 0, 20})
	camera.SetZoom(2)

	for _, pos := range []mgl64.Vec3{{10, 0, 20}, {0, 0, 0}, {-40, 0, 52.2}} {
		back := camera.ScreenToWorld(camera.WorldToScreen(pos))
		if math.Abs(back.X()-pos.X()) > 1e-3 || math.Abs(back.Z()-pos.Z()) > 1e-3 {
			t.Errorf("round trip of %v gave %v", pos, back)
		}
	}
}

func TestCameraSystem_ECSInterface(t *testing.T) {
	camera := NewCameraSystem(Projection{PixelsPerMetre: 1})

	camera.Remove(ecs.NewBasic())
	if camera.Priority() != priorityCamera {
		t.Errorf("Priority() = %d", camera.Priority())
	}
}
