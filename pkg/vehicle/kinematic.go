package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-trackdrive/pkg/assets"
	"github.com/opd-ai/go-trackdrive/pkg/config"
	"github.com/opd-ai/go-trackdrive/pkg/input"
	"github.com/opd-ai/go-trackdrive/pkg/physics"
)

// frictionEpsilon absorbs rounding so repeated decay lands on zero.
const frictionEpsilon = 1e-9

// KinematicState is the whole simulated state of the kinematic model.
type KinematicState struct {
	Speed   float64 // distance per frame, signed
	Heading float64 // radians about +Y, unbounded
}

// Integrate advances s by one frame of input. Increments are per frame, not per second.
func Integrate(cfg config.KinematicConfig, s KinematicState, in input.State) KinematicState {
	switch {
	case in.Forward():
		s.Speed += cfg.Acceleration
	case in.Backward():
		s.Speed -= cfg.Braking
	default:
		if math.Abs(s.Speed) <= cfg.Friction+frictionEpsilon {
			s.Speed = 0
		} else {
			s.Speed -= physics.Sign(s.Speed) * cfg.Friction
		}
	}
	s.Speed = math.Max(cfg.MaxReverseSpeed, math.Min(s.Speed, cfg.MaxSpeed))

	steer := in.Steering()
	if s.Speed == 0 || steer == 0 {
		return s
	}

	turn := cfg.TurnSpeed*(1-math.Min(math.Abs(s.Speed)/cfg.MaxSpeed, 2)) + cfg.TurnBias
	if s.Speed > 0 {
		s.Heading += steer * turn
	} else {
		s.Heading -= steer * turn / 5
	}
	s.Speed *= cfg.ScrubFactor
	return s
}

// PositionDelta is the displacement for one frame at state s.
func PositionDelta(s KinematicState) mgl64.Vec3 {
	return physics.ForwardFromYaw(s.Heading).Mul(s.Speed)
}

// Kinematic moves the vehicle wrapper directly from the integrated state.
// There is no collision in this mode.
type Kinematic struct {
	cfg      config.KinematicConfig
	state    KinematicState
	position mgl64.Vec3
	wrapper  *assets.Node
	rig      *WheelRig
	fps      float64
}

// NewKinematic places the wrapper at the spawn pose. fps is the nominal frame
// rate used to report the per-frame speed per second. rig may be nil.
func NewKinematic(cfg config.KinematicConfig, spawn config.SpawnConfig, fps int, wrapper *assets.Node, rig *WheelRig) *Kinematic {
	if fps <= 0 {
		fps = 60
	}
	k := &Kinematic{
		cfg:      cfg,
		state:    KinematicState{Heading: spawn.Yaw},
		position: spawn.Position,
		wrapper:  wrapper,
		rig:      rig,
		fps:      float64(fps),
	}
	k.syncVisual()
	return k
}

// Mode implements Model.
func (k *Kinematic) Mode() config.Mode { return config.ModeKinematic }

// State returns the current speed and heading.
func (k *Kinematic) State() KinematicState { return k.state }

// Step implements Model. Integration is per frame, so the frame time is unused.
func (k *Kinematic) Step(in input.State, _ float64) FrameResult {
	k.state = Integrate(k.cfg, k.state, in)
	k.position = k.position.Add(PositionDelta(k.state))

	k.syncVisual()
	if k.rig != nil {
		k.rig.Roll(k.state.Speed * k.cfg.RollCoefficient)
		k.rig.SetSteer(steerAngle(in, k.cfg.MaxSteerAngle))
	}
	return FrameResult{}
}

// Pose implements Model. The orientation carries heading only.
func (k *Kinematic) Pose() Pose {
	return Pose{Position: k.position, Orientation: physics.YawQuat(k.state.Heading)}
}

// Speed implements Model. The per-frame speed is scaled by the nominal frame
// rate, so the readout does not depend on frame timing.
func (k *Kinematic) Speed() float64 {
	return math.Abs(k.state.Speed) * k.fps
}

func (k *Kinematic) syncVisual() {
	if k.wrapper == nil {
		return
	}
	k.wrapper.Position = k.position
	k.wrapper.Rotation = physics.YawQuat(k.state.Heading)
}
