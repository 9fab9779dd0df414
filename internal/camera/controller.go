package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Config tunes the camera. Damping factors are per-frame interpolation
// weights: larger is snappier, smaller is laggier.
type Config struct {
	AutoDamping     float64 // position and orientation smoothing in AUTO
	FreeDamping     float64 // position smoothing in FREE
	LookAhead       float64 // progress offset used for the travel tangent
	AutoOffset      r3.Vec  // camera offset from the craft in AUTO
	FreeOffset      r3.Vec  // camera offset from the craft in FREE
	InputDecay      float64 // per-frame decay of pending drag rotation
	DragSensitivity float64 // radians per pixel of drag
	PitchLimit      float64 // |pitch| bound in radians
}

// DefaultConfig returns the tuning of the canvas flight.
func DefaultConfig() Config {
	return Config{
		AutoDamping:     0.06,
		FreeDamping:     0.02,
		LookAhead:       0.02,
		AutoOffset:      r3.Vec{X: 0, Y: 0.25, Z: -0.75},
		FreeOffset:      r3.Vec{X: 0, Y: 0.25, Z: -0.95},
		InputDecay:      0.9,
		DragSensitivity: 0.004,
		PitchLimit:      1.0,
	}
}

// normalized fills unusable values with defaults so a partial config from a
// file cannot stall or destabilize the smoothing loops.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.AutoDamping <= 0 || c.AutoDamping > 1 {
		c.AutoDamping = d.AutoDamping
	}
	if c.FreeDamping <= 0 || c.FreeDamping > 1 {
		c.FreeDamping = d.FreeDamping
	}
	if c.LookAhead <= 0 {
		c.LookAhead = d.LookAhead
	}
	if c.InputDecay <= 0 || c.InputDecay >= 1 {
		c.InputDecay = d.InputDecay
	}
	if c.DragSensitivity <= 0 {
		c.DragSensitivity = d.DragSensitivity
	}
	if c.PitchLimit <= 0 || c.PitchLimit > math.Pi/2 {
		c.PitchLimit = d.PitchLimit
	}
	return c
}

// Controller owns the camera pose and the pending drag input. It is the only
// writer of both. Not safe for concurrent use; the host serializes input
// handlers and frame ticks.
type Controller struct {
	cfg  Config
	pose Pose

	input    InputDelta
	dragging bool
	dragX    float64
	dragY    float64
}

// NewController returns a controller starting at initial.
func NewController(cfg Config, initial Pose) *Controller {
	cfg = cfg.normalized()
	initial.Pitch = clamp(initial.Pitch, -cfg.PitchLimit, cfg.PitchLimit)
	return &Controller{cfg: cfg, pose: initial}
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Pose returns a copy of the current pose.
func (c *Controller) Pose() Pose {
	return c.pose
}

// Mode returns the active steering mode.
func (c *Controller) Mode() Mode {
	return c.pose.Mode
}

// Input returns the pending drag rotation.
func (c *Controller) Input() InputDelta {
	return c.input
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// Update advances the pose by one frame. here is the craft position and ahead
// the path position LookAhead further on.
func (c *Controller) Update(here, ahead r3.Vec) {
	switch c.pose.Mode {
	case ModeFree:
		c.updateFree(here)
	default:
		c.updateAuto(here, ahead)
	}
}

// updateAuto chases a point behind and above the craft and turns toward the
// direction of travel.
func (c *Controller) updateAuto(here, ahead r3.Vec) {
	k := c.cfg.AutoDamping
	c.pose.Position = lerpVec(c.pose.Position, r3.Add(here, c.cfg.AutoOffset), k)

	d := r3.Sub(ahead, here)
	if r3.Norm(d) < 1e-12 {
		// Stationary at arrival: hold the current heading.
		return
	}
	targetYaw := math.Atan2(d.X, d.Z)
	targetPitch := math.Atan2(d.Y, math.Hypot(d.X, d.Z))

	c.pose.Yaw = lerpAngle(c.pose.Yaw, targetYaw, k)
	c.pose.Pitch = clamp(lerp(c.pose.Pitch, targetPitch, k), -c.cfg.PitchLimit, c.cfg.PitchLimit)
}

// updateFree applies pending drag rotation, decays it, and trails the craft
// loosely.
func (c *Controller) updateFree(here r3.Vec) {
	if !c.input.Zero() {
		c.pose.Yaw += c.input.Yaw
		c.pose.Pitch = clamp(c.pose.Pitch+c.input.Pitch, -c.cfg.PitchLimit, c.cfg.PitchLimit)
		c.input.Yaw *= c.cfg.InputDecay
		c.input.Pitch *= c.cfg.InputDecay
	}

	c.pose.Position = lerpVec(c.pose.Position, r3.Add(here, c.cfg.FreeOffset), c.cfg.FreeDamping)
}

// ToggleMode switches between AUTO and FREE.
func (c *Controller) ToggleMode() Mode {
	if c.pose.Mode == ModeAuto {
		c.SetMode(ModeFree)
	} else {
		c.SetMode(ModeAuto)
	}
	return c.pose.Mode
}

// SetMode selects a mode. Entering AUTO ends any drag and drops pending
// rotation; the pose itself is left for the smoothing to carry over.
func (c *Controller) SetMode(m Mode) {
	c.pose.Mode = m
	if m == ModeAuto {
		c.dragging = false
		c.input = InputDelta{}
	}
}

// DragStart arms a drag at screen position (x, y). Ignored outside FREE.
func (c *Controller) DragStart(x, y float64) {
	if c.pose.Mode != ModeFree {
		return
	}
	c.dragging = true
	c.dragX, c.dragY = x, y
}

// DragMove accumulates rotation for the pointer moving to (x, y).
func (c *Controller) DragMove(x, y float64) {
	if !c.dragging {
		return
	}
	c.input.Yaw += (x - c.dragX) * c.cfg.DragSensitivity
	c.input.Pitch += (y - c.dragY) * c.cfg.DragSensitivity
	c.dragX, c.dragY = x, y
}

// DragEnd releases the drag. Pending rotation keeps decaying.
func (c *Controller) DragEnd() {
	c.dragging = false
}

// Nudge adds rotation directly, for keyboard look controls.
func (c *Controller) Nudge(yaw, pitch float64) {
	if c.pose.Mode != ModeFree {
		return
	}
	c.input.Yaw += yaw
	c.input.Pitch += pitch
}
