package engine

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
	"github.com/opd-ai/go-trackdrive/pkg/vehicle"
)

// Telemetry is the per-frame readout shown by the speedometer.
type Telemetry struct {
	Frame    uint64
	Mode     config.Mode
	SpeedKMH float64
	Position mgl64.Vec3
	Heading  float64 // radians about +Y
	Resets   int
}

// String formats the speedometer line, e.g. "Speed: 87 km/h".
func (t Telemetry) String() string {
	return fmt.Sprintf("Speed: %.0f km/h", t.SpeedKMH)
}

// SpeedKMH converts a speed in m/s to the capped display value.
func SpeedKMH(speed float64, cfg config.TelemetryConfig) float64 {
	return math.Min(math.Abs(speed)*cfg.SpeedToKMH, cfg.MaxDisplayKMH)
}

func (s *Session) snapshotLocked(pose vehicle.Pose) Telemetry {
	return Telemetry{
		Frame:    s.frame,
		Mode:     s.model.Mode(),
		SpeedKMH: SpeedKMH(s.model.Speed(), s.Config.Telemetry),
		Position: pose.Position,
		Heading:  physics.Yaw(pose.Orientation),
		Resets:   s.resets,
	}
}
