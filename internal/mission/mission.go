// Package mission defines the immutable flight plan: waypoints, phases and the
// presentation constants that scale engine values for display.
package mission

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MinWaypoints is the smallest waypoint count the spline can evaluate with
// distinct control points at both ends.
const MinWaypoints = 4

var (
	ErrTooFewWaypoints = errors.New("mission needs at least 4 waypoints")
	ErrInvalidWaypoint = errors.New("invalid waypoint")
	ErrInvalidPhases   = errors.New("invalid phase table")
	ErrInvalidDisplay  = errors.New("invalid display constants")
)

// BodyKind categorizes waypoints for rendering.
type BodyKind int

const (
	KindPlanet BodyKind = iota
	KindMoon
)

// String returns the body kind name.
func (k BodyKind) String() string {
	switch k {
	case KindPlanet:
		return "planet"
	case KindMoon:
		return "moon"
	default:
		return "unknown"
	}
}

// ParseBodyKind parses a body kind name. Unknown names default to planet.
func ParseBodyKind(s string) BodyKind {
	switch s {
	case "moon", "MOON", "Moon":
		return KindMoon
	default:
		return KindPlanet
	}
}

// HSL is a waypoint colour. Hue is in degrees, Sat and Light in percent.
type HSL struct {
	Hue   float64
	Sat   float64
	Light float64
}

// Waypoint is a named point of interest the flight path passes through.
type Waypoint struct {
	Name     string
	Position r3.Vec
	Radius   float64 // world units
	Color    HSL
	Kind     BodyKind
	HasRings bool
}

// Display holds presentation-scaling constants. They are not physical
// derivations.
type Display struct {
	MissionDistanceKm float64 // distance shown at progress 0
	VelocityScale     float64 // km/s per unit of clock speed
	MinVelocityKmS    float64
	MaxVelocityKmS    float64
}

// DefaultDisplay returns the display constants of the canonical mission.
func DefaultDisplay() Display {
	return Display{
		MissionDistanceKm: 225e6,
		VelocityScale:     12000,
		MinVelocityKmS:    36,
		MaxVelocityKmS:    48000,
	}
}

// RemainingKm returns the display distance left at progress t.
func (d Display) RemainingKm(t float64) float64 {
	return math.Max(0, (1-t)*d.MissionDistanceKm)
}

// VelocityKmS returns the display velocity for a clock speed.
func (d Display) VelocityKmS(speed float64) float64 {
	return clamp(speed*d.VelocityScale, d.MinVelocityKmS, d.MaxVelocityKmS)
}

// Mission is the process-wide flight plan. Build it with New so the
// invariants hold; it is never mutated afterwards.
type Mission struct {
	Name      string
	waypoints []Waypoint
	phases    PhaseTable
	display   Display
}

// New validates the waypoints, phases and display constants and returns an
// immutable mission.
func New(name string, waypoints []Waypoint, phases []Phase, display Display) (Mission, error) {
	if err := ValidateWaypoints(waypoints); err != nil {
		return Mission{}, err
	}
	table, err := NewPhaseTable(phases)
	if err != nil {
		return Mission{}, err
	}
	if display.MinVelocityKmS > display.MaxVelocityKmS {
		return Mission{}, fmt.Errorf("%w: min velocity %.1f > max velocity %.1f",
			ErrInvalidDisplay, display.MinVelocityKmS, display.MaxVelocityKmS)
	}
	if display.MissionDistanceKm < 0 || display.VelocityScale < 0 {
		return Mission{}, fmt.Errorf("%w: negative scale", ErrInvalidDisplay)
	}

	wps := make([]Waypoint, len(waypoints))
	copy(wps, waypoints)
	return Mission{
		Name:      name,
		waypoints: wps,
		phases:    table,
		display:   display,
	}, nil
}

// ValidateWaypoints checks the waypoint preconditions.
func ValidateWaypoints(waypoints []Waypoint) error {
	if len(waypoints) < MinWaypoints {
		return fmt.Errorf("%w: got %d", ErrTooFewWaypoints, len(waypoints))
	}
	for i, wp := range waypoints {
		if wp.Name == "" {
			return fmt.Errorf("%w: waypoint %d has no name", ErrInvalidWaypoint, i)
		}
		if wp.Radius <= 0 {
			return fmt.Errorf("%w: %s radius %.3f", ErrInvalidWaypoint, wp.Name, wp.Radius)
		}
		if !finite(wp.Position.X) || !finite(wp.Position.Y) || !finite(wp.Position.Z) {
			return fmt.Errorf("%w: %s position is not finite", ErrInvalidWaypoint, wp.Name)
		}
	}
	return nil
}

// Waypoints returns a copy of the ordered waypoints.
func (m Mission) Waypoints() []Waypoint {
	out := make([]Waypoint, len(m.waypoints))
	copy(out, m.waypoints)
	return out
}

// Positions returns the waypoint positions in order.
func (m Mission) Positions() []r3.Vec {
	out := make([]r3.Vec, len(m.waypoints))
	for i, wp := range m.waypoints {
		out[i] = wp.Position
	}
	return out
}

// Destination returns the last waypoint.
func (m Mission) Destination() Waypoint {
	if len(m.waypoints) == 0 {
		return Waypoint{}
	}
	return m.waypoints[len(m.waypoints)-1]
}

// Phases returns the validated phase table.
func (m Mission) Phases() PhaseTable {
	return m.phases
}

// Display returns the presentation constants.
func (m Mission) Display() Display {
	return m.display
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
