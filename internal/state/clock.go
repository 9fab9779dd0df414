package state

import (
	"math"
	"time"
)

// SimulationState is the flight progress as seen by consumers.
type SimulationState struct {
	Progress float64 `json:"progress"` // [0, 1]
	Speed    float64 `json:"speed"`    // progress per second before modulation
	Running  bool    `json:"running"`
}

// ClockConfig holds configuration for the simulation clock.
type ClockConfig struct {
	InitialSpeed float64
	MinSpeed     float64
	MaxSpeed     float64
	SpeedStep    float64       // factor applied by IncreaseSpeed/DecreaseSpeed
	MaxStep      time.Duration // largest dt honoured by one Advance
}

// DefaultClockConfig returns the pacing of the canvas flight.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		InitialSpeed: 0.08,
		MinSpeed:     0.01,
		MaxSpeed:     0.6,
		SpeedStep:    1.25,
		MaxStep:      50 * time.Millisecond,
	}
}

func (c ClockConfig) normalized() ClockConfig {
	d := DefaultClockConfig()
	if c.MinSpeed <= 0 {
		c.MinSpeed = d.MinSpeed
	}
	if c.MaxSpeed < c.MinSpeed {
		c.MaxSpeed = math.Max(d.MaxSpeed, c.MinSpeed)
	}
	if c.SpeedStep <= 1 {
		c.SpeedStep = d.SpeedStep
	}
	if c.MaxStep <= 0 {
		c.MaxStep = d.MaxStep
	}
	if c.InitialSpeed <= 0 {
		c.InitialSpeed = d.InitialSpeed
	}
	c.InitialSpeed = clampSpeed(c.InitialSpeed, c.MinSpeed, c.MaxSpeed)
	return c
}

// Modulation is the cruise wobble applied to speed at time now. It stays
// within [-0.1, 1] and is cosmetic pacing only.
func Modulation(now time.Duration) float64 {
	ms := float64(now) / float64(time.Millisecond)
	return 0.45 + 0.55*math.Sin(0.0007*ms+1.2)
}

// Clock advances progress along the path. It is the only writer of
// SimulationState. Not safe for concurrent use.
type Clock struct {
	cfg ClockConfig
	st  SimulationState
}

// NewClock returns a running clock at progress 0.
func NewClock(cfg ClockConfig) *Clock {
	cfg = cfg.normalized()
	return &Clock{
		cfg: cfg,
		st:  SimulationState{Speed: cfg.InitialSpeed, Running: true},
	}
}

// Config returns the effective configuration.
func (c *Clock) Config() ClockConfig {
	return c.cfg
}

// State returns a copy of the simulation state.
func (c *Clock) State() SimulationState {
	return c.st
}

// Arrived reports whether the flight reached the end of the path.
func (c *Clock) Arrived() bool {
	return c.st.Progress >= 1
}

// Advance moves progress forward by dt at wall time now. It returns true on
// the frame that reaches the destination.
func (c *Clock) Advance(dt, now time.Duration) bool {
	if !c.st.Running {
		return false
	}
	if dt < 0 {
		dt = 0
	}
	if dt > c.cfg.MaxStep {
		dt = c.cfg.MaxStep
	}

	step := c.st.Speed * dt.Seconds() * Modulation(now)
	if step > 0 {
		c.st.Progress += step
	}

	if c.st.Progress >= 1 {
		c.st.Progress = 1
		c.st.Running = false
		return true
	}
	return false
}

// TogglePlayPause pauses a running flight or resumes a paused one. A flight
// that has arrived stays stopped; Restart is the only way out.
func (c *Clock) TogglePlayPause() bool {
	if c.Arrived() {
		return false
	}
	c.st.Running = !c.st.Running
	return c.st.Running
}

// Restart returns to the start of the path and resumes.
func (c *Clock) Restart() {
	c.st.Progress = 0
	c.st.Running = true
}

// IncreaseSpeed multiplies speed by the step factor, bounded by MaxSpeed.
func (c *Clock) IncreaseSpeed() float64 {
	c.st.Speed = clampSpeed(c.st.Speed*c.cfg.SpeedStep, c.cfg.MinSpeed, c.cfg.MaxSpeed)
	return c.st.Speed
}

// DecreaseSpeed divides speed by the step factor, bounded by MinSpeed.
func (c *Clock) DecreaseSpeed() float64 {
	c.st.Speed = clampSpeed(c.st.Speed/c.cfg.SpeedStep, c.cfg.MinSpeed, c.cfg.MaxSpeed)
	return c.st.Speed
}

func clampSpeed(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
