// Package camera owns the virtual camera: its pose, the autopilot and
// free-look update rules, and the perspective projection onto a viewport.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mode selects how the camera is steered.
type Mode int

const (
	// ModeAuto tracks the flight path and faces the direction of travel.
	ModeAuto Mode = iota
	// ModeFree follows the path position while the user steers heading.
	ModeFree
)

// String returns the mode label shown in the HUD.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "AUTO"
	case ModeFree:
		return "FREE"
	default:
		return "UNKNOWN"
	}
}

// ParseMode parses a mode name. Unknown names select ModeAuto.
func ParseMode(s string) Mode {
	switch s {
	case "free", "FREE", "Free":
		return ModeFree
	default:
		return ModeAuto
	}
}

// Pose is the camera position and orientation. Yaw is measured from +Z
// toward +X; pitch is positive looking up.
type Pose struct {
	Position r3.Vec
	Yaw      float64 // radians
	Pitch    float64 // radians, within [-PitchLimit, PitchLimit]
	Mode     Mode
}

// Forward returns the unit view direction.
func (p Pose) Forward() r3.Vec {
	cp := math.Cos(p.Pitch)
	return r3.Vec{
		X: math.Sin(p.Yaw) * cp,
		Y: math.Sin(p.Pitch),
		Z: math.Cos(p.Yaw) * cp,
	}
}

// DefaultPose is a start position behind and above the origin, looking +Z.
func DefaultPose() Pose {
	return Pose{
		Position: r3.Vec{X: 0, Y: 0.25, Z: -2.8},
		Mode:     ModeAuto,
	}
}

// InputDelta accumulates drag deltas between frames. It decays while being
// consumed, which gives released drags momentum.
type InputDelta struct {
	Yaw   float64
	Pitch float64
}

// Zero reports whether no rotation is pending.
func (d InputDelta) Zero() bool {
	return d.Yaw == 0 && d.Pitch == 0
}
