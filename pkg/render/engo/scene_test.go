// pkg/render/engo/scene_test.go
package engo

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/logging"
)

func newSceneSession(t *testing.T) *engine.Session {
	t.Helper()
	s := engine.NewSession(config.DefaultConfig(), logging.NewLoggerWithWriter(io.Discard))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := assets.LoadBundle(ctx, assets.NewBuiltinLoader(), assets.BuiltinCar, assets.BuiltinTrack)
	if err := s.AttachFuture(ctx, f); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	return s
}

func TestNewDriveScene(t *testing.T) {
	s := newSceneSession(t)

	scene := NewDriveScene(s, 0)
	if scene.session != s {
		t.Error("Expected session to be set correctly")
	}
	if scene.projection.PixelsPerMetre != DefaultPixelsPerMetre {
		t.Errorf("Expected default scale, got %v", scene.projection.PixelsPerMetre)
	}
	if scene.assets == nil {
		t.Error("Expected asset manager to be initialized")
	}

	if got := NewDriveScene(s, 12).projection.PixelsPerMetre; got != 12 {
		t.Errorf("Expected scale 12, got %v", got)
	}
}

func TestDriveScene_Type(t *testing.T) {
	scene := NewDriveScene(newSceneSession(t), 0)
	if scene.Type() != "DriveScene" {
		t.Errorf("Type() = %q", scene.Type())
	}
	scene.Preload()
}

func TestDriveScene_FrameStepsSession(t *testing.T) {
	s := newSceneSession(t)
	scene := NewDriveScene(s, 0)
	scene.camera = NewCameraSystem(scene.projection)
	sys := &sessionSystem{scene: scene}

	for i := 0; i < 10; i++ {
		sys.Update(1.0 / 60)
	}

	if got := s.Telemetry().Frame; got != 10 {
		t.Errorf("Expected 10 frames, got %d", got)
	}
	if !scene.camera.targetSet {
		t.Error("Expected the camera to follow the car")
	}
	if sys.Priority() <= scene.camera.Priority() {
		t.Error("Expected the session to step before the camera")
	}
}

func TestDriveScene_Exit(t *testing.T) {
	s := newSceneSession(t)
	scene := NewDriveScene(s, 0)
	s.KeyDown("w")

	scene.Exit()

	if s.Status() != engine.StatusStopped {
		t.Errorf("Expected session to be stopped, got %v", s.Status())
	}
	if s.Update(1.0 / 60) {
		t.Error("Expected no updates after Exit")
	}
}
