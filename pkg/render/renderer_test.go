// pkg/render/renderer_test.go
package render

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/logging"
)

// recordingRenderer remembers the calls of the last frame.
type recordingRenderer struct {
	calls  []string
	meshes int
	last   engine.Telemetry
}

func (r *recordingRenderer) Clear() { r.calls = []string{"clear"} }
func (r *recordingRenderer) RenderTrack(meshes []assets.MeshInstance) {
	r.calls = append(r.calls, "track")
	r.meshes = len(meshes)
}
func (r *recordingRenderer) RenderVehicle(t engine.Telemetry) {
	r.calls = append(r.calls, "vehicle")
	r.last = t
}
func (r *recordingRenderer) RenderHUD(engine.Telemetry) { r.calls = append(r.calls, "hud") }
func (r *recordingRenderer) Present()                   { r.calls = append(r.calls, "present") }

func newSession(t *testing.T) *engine.Session {
	t.Helper()
	return engine.NewSession(config.DefaultConfig(), logging.NewLoggerWithWriter(io.Discard))
}

func attachBuiltin(t *testing.T, s *engine.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.AttachFuture(ctx, assets.LoadBundle(ctx, assets.NewBuiltinLoader(), assets.BuiltinCar, assets.BuiltinTrack)); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
}

func TestFrameFunc_DrawsOnlyFrameBeforeAttach(t *testing.T) {
	s := newSession(t)
	rec := &recordingRenderer{}
	draw := FrameFunc(rec)

	if !draw(s) {
		t.Fatal("FrameFunc should never stop the loop")
	}
	if got := strings.Join(rec.calls, ","); got != "clear,present" {
		t.Errorf("calls before attach = %q, want clear,present", got)
	}
}

func TestFrameFunc_DrawsTrackVehicleAndHUD(t *testing.T) {
	s := newSession(t)
	attachBuiltin(t, s)
	rec := &recordingRenderer{}

	frames := s.RunFrames(context.Background(), 3, 1.0/60, nil, FrameFunc(rec))
	if frames != 3 {
		t.Fatalf("RunFrames = %d, want 3", frames)
	}
	if got := strings.Join(rec.calls, ","); got != "clear,track,vehicle,hud,present" {
		t.Errorf("calls = %q", got)
	}
	if rec.meshes == 0 {
		t.Error("expected track meshes to be drawn")
	}
	if rec.last.Frame != 3 {
		t.Errorf("vehicle drawn for frame %d, want 3", rec.last.Frame)
	}
}

func TestNullRenderer_LogsCalls(t *testing.T) {
	t.Setenv("TRACKDRIVE_LOG_LEVEL", "DEBUG")
	var buf bytes.Buffer
	r := NewNullRenderer(logging.NewLoggerWithWriter(&buf))

	r.Clear()
	r.RenderTrack([]assets.MeshInstance{{Node: "Road", Geometry: *assets.NewTrack().Find(assets.RoadName).Mesh}})
	r.RenderHUD(engine.Telemetry{SpeedKMH: 42})
	r.Present()

	out := buf.String()
	for _, want := range []string{"Clear called", "RenderTrack called", "Speed: 42 km/h", "Present called"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got: %s", want, out)
		}
	}
}

func TestNullRenderer_QuietAtInfoLevel(t *testing.T) {
	t.Setenv("TRACKDRIVE_LOG_LEVEL", "INFO")
	var buf bytes.Buffer
	r := NewNullRenderer(logging.NewLoggerWithWriter(&buf))

	r.Clear()
	r.RenderVehicle(engine.Telemetry{})
	r.Present()

	if buf.Len() != 0 {
		t.Errorf("expected no output at INFO, got: %s", buf.String())
	}
}
