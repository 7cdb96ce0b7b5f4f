package engine

import (
	"context"
	"time"

	"github.com/opd-ai/go-trackdrive/pkg/input"
)

// FrameFunc is called after every frame, e.g. to render. Returning false stops the loop.
type FrameFunc func(s *Session) bool

// Run ticks the session at the configured frame rate until ctx is done or
// onFrame returns false. When script is non-nil its input for the next frame
// is applied before each tick. Frames before the assets are attached still
// call onFrame so a loading screen can be drawn.
func (s *Session) Run(ctx context.Context, script input.Script, onFrame FrameFunc) error {
	fps := s.Config.Loop.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	s.Start()
	defer s.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if script != nil {
				s.SetInput(script.At(int(s.Telemetry().Frame)))
			}
			s.Tick()
			if onFrame != nil && !onFrame(s) {
				return nil
			}
		}
	}
}

// RunFrames runs up to n frames of fixed length dt without waiting on a
// clock, feeding input from script when it is non-nil. It stops early when
// ctx is done. Headless drivers and tests use it for deterministic playback.
// It returns the frames simulated.
func (s *Session) RunFrames(ctx context.Context, n int, dt float64, script input.Script, onFrame FrameFunc) int {
	s.Start()
	defer s.Stop()

	ran := 0
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		if script != nil {
			s.SetInput(script.At(i))
		}
		if s.Update(dt) {
			ran++
		}
		if onFrame != nil && !onFrame(s) {
			break
		}
	}
	return ran
}
