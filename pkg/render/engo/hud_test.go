// pkg/render/engo/hud_test.go
package engo

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/event"
)

func TestNewHUDSystem_ShowsZeroSpeed(t *testing.T) {
	hud := NewHUDSystem(nil)
	if got := hud.Text(); got != "Speed: 0 km/h" {
		t.Errorf("Text() = %q", got)
	}
}

func TestHUDSystem_SetTelemetry(t *testing.T) {
	hud := NewHUDSystem(nil)
	hud.SetTelemetry(engine.Telemetry{SpeedKMH: 87.2, Mode: config.ModePhysics})

	want := "Speed: 87 km/h\nMode: physics"
	if got := hud.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestHUDSystem_NoticesFromEvents(t *testing.T) {
	bus := event.NewEventBus()
	hud := NewHUDSystem(bus)
	defer hud.Close()

	bus.Publish(event.NewResetEvent(nil, mgl64.Vec3{0, -12, 0}, mgl64.Vec3{-23, 1, 2.2}))
	bus.Publish(event.NewAssetEvent(event.MeshSkipped, nil, "builtin:track", "Broken", nil))

	notices := hud.Notices()
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}
	if !strings.Contains(hud.Text(), "Off track at y=-12.0") {
		t.Errorf("reset notice missing from %q", hud.Text())
	}
	if !strings.Contains(hud.Text(), "Skipped track mesh Broken") {
		t.Errorf("mesh notice missing from %q", hud.Text())
	}
}

func TestHUDSystem_NoticesExpire(t *testing.T) {
	hud := NewHUDSystem(nil)
	hud.AddNotice("hello")

	hud.Update(1)
	if n := hud.Notices(); len(n) != 1 || n[0].TTL != noticeDuration-1 {
		t.Fatalf("after 1s notices = %v", n)
	}

	hud.Update(noticeDuration)
	if n := hud.Notices(); len(n) != 0 {
		t.Errorf("expected notices to expire, got %v", n)
	}
}

func TestHUDSystem_CloseUnsubscribes(t *testing.T) {
	bus := event.NewEventBus()
	hud := NewHUDSystem(bus)
	hud.Close()

	bus.Publish(event.NewResetEvent(nil, mgl64.Vec3{}, mgl64.Vec3{}))
	if n := hud.Notices(); len(n) != 0 {
		t.Errorf("closed HUD still received events: %v", n)
	}
}

func TestHUDSystem_AttachTextNeedsFont(t *testing.T) {
	hud := NewHUDSystem(nil)
	hud.AttachText(nil, nil)
	if hud.text != nil {
		t.Error("expected no text entity without a render system and font")
	}
}
