// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/engine"
	"github.com/opd-ai/go-trackdrive/pkg/logging"
)

// Renderer draws one frame of a session: the track, the vehicle and the speedometer.
type Renderer interface {
	Clear()
	RenderTrack(meshes []assets.MeshInstance)
	RenderVehicle(t engine.Telemetry)
	RenderHUD(t engine.Telemetry)
	Present()
}

// FrameFunc adapts r into an engine.FrameFunc. Track meshes are flattened
// once, the first frame a bundle is attached. Before that only the HUD is drawn.
func FrameFunc(r Renderer) engine.FrameFunc {
	var track []assets.MeshInstance
	return func(s *engine.Session) bool {
		r.Clear()
		if track == nil {
			if b := s.Bundle(); b != nil {
				track = b.Track.WorldMeshes()
			}
		}
		if s.Ready() {
			t := s.Telemetry()
			r.RenderTrack(track)
			r.RenderVehicle(t)
			r.RenderHUD(t)
		}
		r.Present()
		return true
	}
}

// NullRenderer draws nothing and logs what it was asked to draw.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderTrack implements Renderer.
func (d *NullRenderer) RenderTrack(meshes []assets.MeshInstance) {
	triangles := 0
	for _, m := range meshes {
		triangles += len(m.Geometry.Indices) / 3
	}
	d.logger.Debug(context.Background(), "RenderTrack called",
		"meshes", len(meshes),
		"triangles", triangles,
	)
}

// RenderVehicle implements Renderer.
func (d *NullRenderer) RenderVehicle(t engine.Telemetry) {
	d.logger.Debug(context.Background(), "RenderVehicle called",
		"frame", t.Frame,
		"x", t.Position.X(),
		"y", t.Position.Y(),
		"z", t.Position.Z(),
		"heading", t.Heading,
	)
}

// RenderHUD implements Renderer.
func (d *NullRenderer) RenderHUD(t engine.Telemetry) {
	d.logger.Debug(context.Background(), t.String(),
		"frame", t.Frame,
		"mode", string(t.Mode),
		"resets", t.Resets,
	)
}
