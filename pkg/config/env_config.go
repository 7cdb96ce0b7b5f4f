package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfigFromEnv returns DefaultConfig with TRACKDRIVE_* overrides applied.
func LoadConfigFromEnv() (*Config, error) {
	config := DefaultConfig()
	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields of config from environment variables.
// Unset variables leave the corresponding field untouched.
func ApplyEnv(config *Config) error {
	if v := os.Getenv("TRACKDRIVE_MODE"); v != "" {
		config.Mode = Mode(v)
	}
	if v := os.Getenv("TRACKDRIVE_VEHICLE_ASSET"); v != "" {
		config.Assets.Vehicle = v
	}
	if v := os.Getenv("TRACKDRIVE_TRACK_ASSET"); v != "" {
		config.Assets.Track = v
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"TRACKDRIVE_FIXED_STEP", &config.Physics.FixedStep},
		{"TRACKDRIVE_FALL_THRESHOLD", &config.Physics.FallThreshold},
		{"TRACKDRIVE_ENGINE_FORCE", &config.Physics.Controls.EngineForce},
		{"TRACKDRIVE_BRAKE_FORCE", &config.Physics.Controls.BrakeForce},
		{"TRACKDRIVE_MAX_SPEED", &config.Kinematic.MaxSpeed},
		{"TRACKDRIVE_ACCELERATION", &config.Kinematic.Acceleration},
		{"TRACKDRIVE_FRICTION", &config.Kinematic.Friction},
	}
	for _, f := range floats {
		if err := getEnvFloat(f.name, f.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"TRACKDRIVE_MAX_SUBSTEPS", &config.Physics.MaxSubSteps},
		{"TRACKDRIVE_ASSET_RETRIES", &config.Assets.Loading.Retries},
		{"TRACKDRIVE_TARGET_FPS", &config.Loop.TargetFPS},
	}
	for _, i := range ints {
		if err := getEnvInt(i.name, i.dst); err != nil {
			return err
		}
	}

	return nil
}

func getEnvFloat(name string, dst *float64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = parsed
	return nil
}

func getEnvInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = parsed
	return nil
}

// Validate reports the first tuning value that would make a session misbehave.
func Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	switch config.Mode {
	case ModePhysics, ModeKinematic:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, config.Mode)
	}

	k := config.Kinematic
	if k.MaxSpeed <= 0 {
		return fmt.Errorf("%w: kinematic maxSpeed must be positive, got %v", ErrInvalidConfig, k.MaxSpeed)
	}
	if k.MaxReverseSpeed > 0 {
		return fmt.Errorf("%w: kinematic maxReverseSpeed must not be positive, got %v", ErrInvalidConfig, k.MaxReverseSpeed)
	}
	if k.Acceleration < 0 || k.Braking < 0 || k.Friction < 0 {
		return fmt.Errorf("%w: kinematic rates must not be negative", ErrInvalidConfig)
	}
	if k.ScrubFactor <= 0 || k.ScrubFactor > 1 {
		return fmt.Errorf("%w: kinematic scrubFactor must be in (0, 1], got %v", ErrInvalidConfig, k.ScrubFactor)
	}

	p := config.Physics
	if p.FixedStep <= 0 {
		return fmt.Errorf("%w: physics fixedStep must be positive, got %v", ErrInvalidConfig, p.FixedStep)
	}
	if p.MaxSubSteps < 1 {
		return fmt.Errorf("%w: physics maxSubSteps must be at least 1, got %d", ErrInvalidConfig, p.MaxSubSteps)
	}
	if p.Chassis.Mass <= 0 {
		return fmt.Errorf("%w: chassis mass must be positive, got %v", ErrInvalidConfig, p.Chassis.Mass)
	}
	if p.Wheel.Radius <= 0 {
		return fmt.Errorf("%w: wheel radius must be positive, got %v", ErrInvalidConfig, p.Wheel.Radius)
	}
	if len(p.WheelPositions) != 4 {
		return fmt.Errorf("%w: expected 4 wheel positions, got %d", ErrInvalidConfig, len(p.WheelPositions))
	}
	for _, idx := range append(append([]int(nil), p.Controls.DrivenWheels...), p.Controls.SteeredWheels...) {
		if idx < 0 || idx >= len(p.WheelPositions) {
			return fmt.Errorf("%w: wheel index %d out of range", ErrInvalidConfig, idx)
		}
	}

	l := config.Assets.Loading
	if l.Retries < 0 || l.RetryDelay < 0 {
		return fmt.Errorf("%w: asset loading retries and retryDelay must not be negative", ErrInvalidConfig)
	}

	if config.Telemetry.SpeedToKMH <= 0 || config.Telemetry.MaxDisplayKMH <= 0 {
		return fmt.Errorf("%w: telemetry factors must be positive", ErrInvalidConfig)
	}
	if config.Loop.TargetFPS <= 0 {
		return fmt.Errorf("%w: loop targetFps must be positive, got %d", ErrInvalidConfig, config.Loop.TargetFPS)
	}
	if config.Loop.MaxFrameDelta <= 0 {
		return fmt.Errorf("%w: loop maxFrameDelta must be positive, got %v", ErrInvalidConfig, config.Loop.MaxFrameDelta)
	}

	return nil
}
