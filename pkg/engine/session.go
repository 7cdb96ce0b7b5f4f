// pkg/engine/session.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/camera"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/event"
	"github.com/opd-ai/go-trackdrive/pkg/input"
	"github.com/opd-ai/go-trackdrive/pkg/logging"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
	"github.com/opd-ai/go-trackdrive/pkg/vehicle"
)

// Status is the lifecycle state of a session.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session owns everything one drivable vehicle needs: input, the vehicle
// model, the camera and the telemetry. Sessions share nothing, so several
// can run side by side.
type Session struct {
	ID       string
	Config   *config.Config
	EventBus *event.Bus

	mu         sync.RWMutex
	status     Status
	started    bool
	ctx        context.Context
	logger     *logging.Logger
	collector  *input.Collector
	bundle     *assets.Bundle
	model      vehicle.Model
	world      *physics.World
	rig        camera.Rig
	camera     camera.Pose
	frame      uint64
	resets     int
	skipped    []string
	telemetry  Telemetry
	lastUpdate time.Time
}

// NewSession creates a session in the loading state. A nil logger logs to stderr.
func NewSession(cfg *config.Config, logger *logging.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewLogger()
	}

	id := logging.GenerateSessionID()
	return &Session{
		ID:        id,
		Config:    cfg,
		EventBus:  event.NewEventBus(),
		status:    StatusLoading,
		ctx:       logging.WithSessionID(context.Background(), id),
		logger:    logger,
		collector: input.NewCollector(nil),
		rig:       camera.NewRig(cfg.Camera),
	}
}

// Context carries the session ID for log correlation.
func (s *Session) Context() context.Context { return s.ctx }

// Logger returns the session logger.
func (s *Session) Logger() *logging.Logger { return s.logger }

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Ready reports whether assets are attached.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// AttachFuture waits for f and attaches the bundle it resolves to.
func (s *Session) AttachFuture(ctx context.Context, f *assets.Future) error {
	bundle, err := f.Wait(ctx)
	if err != nil {
		s.logger.Error(s.ctx, "Asset loading failed", err)
		s.EventBus.Publish(event.NewAssetEvent(event.AssetLoadFailed, s, "", "", err))
		return fmt.Errorf("attach assets: %w", err)
	}
	return s.Attach(bundle)
}

// Attach builds the vehicle model and, in physics mode, the collision world
// from bundle. Track meshes that fail validation are skipped with a warning.
func (s *Session) Attach(bundle *assets.Bundle) error {
	if bundle == nil || bundle.Vehicle == nil || bundle.Track == nil {
		return fmt.Errorf("attach assets: incomplete bundle")
	}

	s.mu.Lock()
	events, err := s.attachLocked(bundle)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("attach assets: %w", err)
	}

	for _, e := range events {
		s.EventBus.Publish(e)
	}
	return nil
}

func (s *Session) attachLocked(bundle *assets.Bundle) ([]event.Event, error) {
	if s.model != nil {
		return nil, errors.New("already attached")
	}

	cfg := s.Config
	if scale := cfg.Assets.TrackScale; scale > 0 {
		bundle.Track.Root.Scale = mgl64.Vec3{scale, scale, scale}
	}

	rig, err := vehicle.NewWheelRig(bundle.Vehicle, cfg.Assets)
	if err != nil {
		return nil, err
	}

	var events []event.Event
	switch cfg.Mode {
	case config.ModeKinematic:
		s.model = vehicle.NewKinematic(cfg.Kinematic, cfg.Spawn, cfg.Loop.TargetFPS, bundle.Vehicle.Root, rig)
	default:
		s.world = physics.NewWorld(cfg.Physics.Gravity)
		events = s.addTrackCollision(bundle.Track)
		v := vehicle.NewRaycastVehicle(s.world, cfg.Physics)
		s.model = vehicle.NewRaycast(s.world, v, cfg.Physics, cfg.Spawn, bundle.Vehicle.Root, rig)
	}

	s.bundle = bundle
	s.status = StatusReady
	if s.started {
		s.status = StatusRunning
	}
	pose := s.model.Pose()
	s.camera = s.rig.Follow(pose.Position, pose.Orientation)
	s.telemetry = s.snapshotLocked(pose)

	s.logger.Info(s.ctx, "Assets attached",
		"mode", string(cfg.Mode),
		"vehicle", bundle.Vehicle.Name,
		"track", bundle.Track.Name,
		"skipped_meshes", len(s.skipped),
	)
	events = append(events, event.NewAssetEvent(event.AssetsLoaded, s, bundle.Track.Name, bundle.Vehicle.Name, nil))
	return events, nil
}

// addTrackCollision turns every valid track mesh into static ground and
// returns a MeshSkipped event for each rejected one.
func (s *Session) addTrackCollision(track *assets.Model) []event.Event {
	var events []event.Event
	added := 0
	for _, mesh := range track.WorldMeshes() {
		shape, err := physics.NewTrimesh(mesh.Geometry)
		if err != nil {
			s.skipped = append(s.skipped, mesh.Node)
			s.logger.Warn(s.ctx, "Skipping track mesh", "mesh", mesh.Node, "error", err.Error())
			events = append(events, event.NewAssetEvent(event.MeshSkipped, s, track.Name, mesh.Node, err))
			continue
		}
		s.world.AddTrimesh(shape)
		added++
	}
	if added == 0 {
		s.logger.Warn(s.ctx, "Track has no collision meshes", "track", track.Name)
	}
	return events
}

// SkippedMeshes lists the track meshes rejected during Attach.
func (s *Session) SkippedMeshes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.skipped...)
}

// Bundle returns the attached assets, or nil while loading.
func (s *Session) Bundle() *assets.Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// World returns the physics world, or nil outside physics mode.
func (s *Session) World() *physics.World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world
}

// Model returns the vehicle model, or nil while loading.
func (s *Session) Model() vehicle.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// KeyDown forwards a key-down event to the input collector.
func (s *Session) KeyDown(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collector.KeyDown(key)
}

// KeyUp forwards a key-up event to the input collector.
func (s *Session) KeyUp(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collector.KeyUp(key)
}

// SetInput replaces the held actions, for scripted drivers.
func (s *Session) SetInput(state input.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range input.Actions() {
		if state.Pressed(a) {
			s.collector.Press(a)
		} else {
			s.collector.Release(a)
		}
	}
}

// ReleaseAll clears every held action.
func (s *Session) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collector.ReleaseAll()
}

// Start marks the session running.
func (s *Session) Start() {
	s.mu.Lock()
	s.started = true
	if s.status == StatusReady {
		s.status = StatusRunning
	}
	s.lastUpdate = time.Now()
	s.mu.Unlock()

	s.logger.Info(s.ctx, "Session started", "mode", string(s.Config.Mode))
	s.EventBus.Publish(&event.BaseEvent{EventType: event.SessionStarted, Source: s})
}

// Stop marks the session stopped. Further updates are ignored.
func (s *Session) Stop() {
	s.mu.Lock()
	s.status = StatusStopped
	frames := s.frame
	s.mu.Unlock()

	s.logger.Info(s.ctx, "Session stopped", "frames", frames)
	s.EventBus.Publish(&event.BaseEvent{EventType: event.SessionStopped, Source: s})
}

// Tick runs Update with the wall-clock time since the previous tick.
func (s *Session) Tick() bool {
	return s.Update(s.calculateDeltaTime())
}

func (s *Session) calculateDeltaTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.lastUpdate.IsZero() {
		s.lastUpdate = now
		return 0
	}
	dt := now.Sub(s.lastUpdate).Seconds()
	s.lastUpdate = now
	return dt
}

// Update runs one frame: input snapshot, vehicle step, camera, telemetry.
// It does nothing and returns false until assets are attached.
func (s *Session) Update(dt float64) bool {
	s.mu.Lock()
	if s.model == nil || s.status == StatusStopped {
		s.mu.Unlock()
		return false
	}

	dt = math.Max(0, math.Min(dt, s.Config.Loop.MaxFrameDelta))
	in := s.collector.Snapshot()
	res := s.model.Step(in, dt)
	if res.Reset {
		s.resets++
	}

	pose := s.model.Pose()
	s.camera = s.rig.Follow(pose.Position, pose.Orientation)
	s.frame++
	s.telemetry = s.snapshotLocked(pose)
	telemetry := s.telemetry
	s.mu.Unlock()

	if res.Reset {
		s.logger.Info(s.ctx, "Vehicle fell off the track, resetting",
			"fell_from_y", res.FellFrom.Y(),
			"resets", telemetry.Resets,
		)
		s.EventBus.Publish(event.NewResetEvent(s, res.FellFrom, s.Config.Spawn.Position))
	}
	s.EventBus.Publish(event.NewTelemetryEvent(s, telemetry.Frame, telemetry.SpeedKMH, telemetry.Position, telemetry.Heading))
	return true
}

// Camera returns the chase camera pose of the last frame.
func (s *Session) Camera() camera.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// Telemetry returns the readout of the last frame.
func (s *Session) Telemetry() Telemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.telemetry
}
