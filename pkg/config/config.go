// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Mode selects which vehicle model drives a session.
type Mode string

const (
	// ModePhysics drives the chassis through the raycast vehicle.
	ModePhysics Mode = "physics"
	// ModeKinematic integrates a speed scalar and heading directly.
	ModeKinematic Mode = "kinematic"
)

// Config contains the full tuning of a driving session
type Config struct {
	Mode      Mode            `json:"mode" yaml:"mode"`
	Spawn     SpawnConfig     `json:"spawn" yaml:"spawn"`
	Kinematic KinematicConfig `json:"kinematic" yaml:"kinematic"`
	Physics   PhysicsConfig   `json:"physics" yaml:"physics"`
	Camera    CameraConfig    `json:"camera" yaml:"camera"`
	Assets    AssetConfig     `json:"assets" yaml:"assets"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Loop      LoopConfig      `json:"loop" yaml:"loop"`
}

// SpawnConfig is the pose the vehicle starts in and is reset to.
type SpawnConfig struct {
	Position mgl64.Vec3 `json:"position" yaml:"position"`
	Yaw      float64    `json:"yaw" yaml:"yaw"` // radians about +Y
}

// KinematicConfig tunes the speed-scalar model. All rates are per frame.
type KinematicConfig struct {
	Acceleration    float64 `json:"acceleration" yaml:"acceleration"`
	Braking         float64 `json:"braking" yaml:"braking"`
	Friction        float64 `json:"friction" yaml:"friction"`
	MaxSpeed        float64 `json:"maxSpeed" yaml:"maxSpeed"`
	MaxReverseSpeed float64 `json:"maxReverseSpeed" yaml:"maxReverseSpeed"` // negative
	TurnSpeed       float64 `json:"turnSpeed" yaml:"turnSpeed"`
	TurnBias        float64 `json:"turnBias" yaml:"turnBias"`
	ScrubFactor     float64 `json:"scrubFactor" yaml:"scrubFactor"`
	RollCoefficient float64 `json:"rollCoefficient" yaml:"rollCoefficient"`
	MaxSteerAngle   float64 `json:"maxSteerAngle" yaml:"maxSteerAngle"`
}

// PhysicsConfig contains the rigid-body world and raycast vehicle tuning
type PhysicsConfig struct {
	Gravity        mgl64.Vec3    `json:"gravity" yaml:"gravity"`
	FixedStep      float64       `json:"fixedStep" yaml:"fixedStep"`
	MaxSubSteps    int           `json:"maxSubSteps" yaml:"maxSubSteps"`
	GroundFriction float64       `json:"groundFriction" yaml:"groundFriction"`
	FallThreshold  float64       `json:"fallThreshold" yaml:"fallThreshold"`
	Chassis        ChassisConfig `json:"chassis" yaml:"chassis"`
	Wheel          WheelConfig   `json:"wheel" yaml:"wheel"`
	WheelPositions []mgl64.Vec3  `json:"wheelPositions" yaml:"wheelPositions"`
	Controls       ControlConfig `json:"controls" yaml:"controls"`
}

// ChassisConfig describes the chassis rigid body.
type ChassisConfig struct {
	Mass        float64    `json:"mass" yaml:"mass"`
	HalfExtents mgl64.Vec3 `json:"halfExtents" yaml:"halfExtents"`
}

// WheelConfig holds the options shared by every raycast wheel.
type WheelConfig struct {
	Radius               float64    `json:"radius" yaml:"radius"`
	DirectionLocal       mgl64.Vec3 `json:"directionLocal" yaml:"directionLocal"`
	AxleLocal            mgl64.Vec3 `json:"axleLocal" yaml:"axleLocal"`
	SuspensionStiffness  float64    `json:"suspensionStiffness" yaml:"suspensionStiffness"`
	SuspensionRestLength float64    `json:"suspensionRestLength" yaml:"suspensionRestLength"`
	SuspensionMaxLength  float64    `json:"suspensionMaxLength" yaml:"suspensionMaxLength"`
	MaxSuspensionTravel  float64    `json:"maxSuspensionTravel" yaml:"maxSuspensionTravel"`
	MaxSuspensionForce   float64    `json:"maxSuspensionForce" yaml:"maxSuspensionForce"`
	DampingRelaxation    float64    `json:"dampingRelaxation" yaml:"dampingRelaxation"`
	DampingCompression   float64    `json:"dampingCompression" yaml:"dampingCompression"`
	FrictionSlip         float64    `json:"frictionSlip" yaml:"frictionSlip"`
	RollInfluence        float64    `json:"rollInfluence" yaml:"rollInfluence"`
}

// ControlConfig maps input onto engine, brake and steering values.
type ControlConfig struct {
	EngineForce       float64 `json:"engineForce" yaml:"engineForce"`
	ReverseMultiplier float64 `json:"reverseMultiplier" yaml:"reverseMultiplier"`
	BrakeForce        float64 `json:"brakeForce" yaml:"brakeForce"`
	AutoBrake         float64 `json:"autoBrake" yaml:"autoBrake"`
	SteerValue        float64 `json:"steerValue" yaml:"steerValue"`
	DrivenWheels      []int   `json:"drivenWheels" yaml:"drivenWheels"`
	SteeredWheels     []int   `json:"steeredWheels" yaml:"steeredWheels"`
	MaxSteerAngle     float64 `json:"maxSteerAngle" yaml:"maxSteerAngle"`
	RollCoefficient   float64 `json:"rollCoefficient" yaml:"rollCoefficient"`
}

// CameraConfig positions the chase camera relative to the vehicle.
type CameraConfig struct {
	Offset     mgl64.Vec3 `json:"offset" yaml:"offset"`
	LookHeight float64    `json:"lookHeight" yaml:"lookHeight"`
}

// AssetConfig names the assets and the sub-transforms looked up inside them.
type AssetConfig struct {
	Vehicle            string         `json:"vehicle" yaml:"vehicle"`
	Track              string         `json:"track" yaml:"track"`
	TrackScale         float64        `json:"trackScale" yaml:"trackScale"`
	Wheels             WheelNodeNames `json:"wheels" yaml:"wheels"`
	SteeringWheel      string         `json:"steeringWheel" yaml:"steeringWheel"`
	SteeringWheelRatio float64        `json:"steeringWheelRatio" yaml:"steeringWheelRatio"`
	Loading            LoadingConfig  `json:"loading" yaml:"loading"`
}

// LoadingConfig controls how failed asset loads are retried. Durations are seconds.
type LoadingConfig struct {
	Retries             int     `json:"retries" yaml:"retries"`
	RetryDelay          float64 `json:"retryDelay" yaml:"retryDelay"`
	MaxConsecutiveFails int     `json:"maxConsecutiveFails" yaml:"maxConsecutiveFails"`
	BreakerTimeout      float64 `json:"breakerTimeout" yaml:"breakerTimeout"`
}

// WheelNodeNames are the exact node names of the four wheels.
type WheelNodeNames struct {
	FrontLeft  string `json:"frontLeft" yaml:"frontLeft"`
	FrontRight string `json:"frontRight" yaml:"frontRight"`
	RearLeft   string `json:"rearLeft" yaml:"rearLeft"`
	RearRight  string `json:"rearRight" yaml:"rearRight"`
}

// TelemetryConfig controls the speed readout.
type TelemetryConfig struct {
	SpeedToKMH    float64 `json:"speedToKmh" yaml:"speedToKmh"`
	MaxDisplayKMH float64 `json:"maxDisplayKmh" yaml:"maxDisplayKmh"`
}

// LoopConfig controls the frame loop.
type LoopConfig struct {
	TargetFPS     int     `json:"targetFps" yaml:"targetFps"`
	MaxFrameDelta float64 `json:"maxFrameDelta" yaml:"maxFrameDelta"`
}

// LoadConfig loads a configuration from a JSON or YAML file.
// Fields missing from the file keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves a configuration to a file, choosing YAML or JSON by extension.
func SaveConfig(config *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// DefaultConfig returns the tuning of the shipped F1 demo.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModePhysics,
		Spawn: SpawnConfig{
			Position: mgl64.Vec3{-23, 1.0, 2.2},
			Yaw:      -math.Pi / 2,
		},
		Kinematic: KinematicConfig{
			Acceleration:    0.01,
			Braking:         0.015,
			Friction:        0.006,
			MaxSpeed:        1.0,
			MaxReverseSpeed: -0.3,
			TurnSpeed:       0.02,
			TurnBias:        0,
			ScrubFactor:     0.995,
			RollCoefficient: 5,
			MaxSteerAngle:   math.Pi / 6,
		},
		Physics: PhysicsConfig{
			Gravity:        mgl64.Vec3{0, -9.82, 0},
			FixedStep:      1.0 / 120.0,
			MaxSubSteps:    10,
			GroundFriction: 1,
			FallThreshold:  -5,
			Chassis: ChassisConfig{
				Mass:        1200,
				HalfExtents: mgl64.Vec3{0.6, 0.15, 1.25},
			},
			Wheel: WheelConfig{
				Radius:               0.2,
				DirectionLocal:       mgl64.Vec3{0, -1, 0},
				AxleLocal:            mgl64.Vec3{-1, 0, 0},
				SuspensionStiffness:  60,
				SuspensionRestLength: 0.045,
				SuspensionMaxLength:  0.2,
				MaxSuspensionTravel:  0.08,
				MaxSuspensionForce:   100000,
				DampingRelaxation:    2.0,
				DampingCompression:   4.5,
				FrictionSlip:         2.5,
				RollInfluence:        0.05,
			},
			WheelPositions: []mgl64.Vec3{
				{0.6, 0.15, 1.1},
				{-0.6, 0.15, 1.1},
				{0.6, 0.15, -1.1},
				{-0.6, 0.15, -1.1},
			},
			Controls: ControlConfig{
				EngineForce:       6000,
				ReverseMultiplier: 6,
				BrakeForce:        3000,
				AutoBrake:         10,
				SteerValue:        0.4,
				DrivenWheels:      []int{2, 3},
				SteeredWheels:     []int{0, 1},
				MaxSteerAngle:     math.Pi / 6,
				RollCoefficient:   0.1,
			},
		},
		Camera: CameraConfig{
			Offset:     mgl64.Vec3{0, 3.5, -10},
			LookHeight: 0.5,
		},
		Assets: AssetConfig{
			Vehicle:    "builtin:car",
			Track:      "builtin:track",
			TrackScale: 1,
			Wheels: WheelNodeNames{
				FrontLeft:  "WheelFront000",
				FrontRight: "WheelFront001",
				RearLeft:   "WheelFront002",
				RearRight:  "WheelFront003",
			},
			SteeringWheel:      "SteeringWheel",
			SteeringWheelRatio: 3,
			Loading: LoadingConfig{
				Retries:             2,
				RetryDelay:          0.5,
				MaxConsecutiveFails: 5,
				BreakerTimeout:      30,
			},
		},
		Telemetry: TelemetryConfig{
			SpeedToKMH:    3.6,
			MaxDisplayKMH: 360,
		},
		Loop: LoopConfig{
			TargetFPS:     60,
			MaxFrameDelta: 0.1,
		},
	}
}
