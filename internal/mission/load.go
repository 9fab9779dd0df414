package mission

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"
)

// EnvPrefix is the environment variable prefix for config overrides, e.g.
// LSFLIGHT_DISPLAY_VELOCITY_SCALE.
const EnvPrefix = "LSFLIGHT"

// waypointEntry is the on-disk waypoint shape.
type waypointEntry struct {
	Name     string    `mapstructure:"name"`
	Position []float64 `mapstructure:"position"`
	Radius   float64   `mapstructure:"radius"`
	Color    []float64 `mapstructure:"color"`
	Kind     string    `mapstructure:"kind"`
	Rings    bool      `mapstructure:"rings"`
}

type phaseEntry struct {
	Label string  `mapstructure:"label"`
	T0    float64 `mapstructure:"t0"`
	T1    float64 `mapstructure:"t1"`
}

// NewViper returns a viper instance reading path (any format viper supports,
// chosen by extension) with LSFLIGHT_ environment overrides. An empty path
// yields an instance holding only defaults and environment values.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read mission config %s: %w", path, err)
	}
	return v, nil
}

// SetDefaults registers the built-in display constants and name.
func SetDefaults(v *viper.Viper) {
	d := DefaultDisplay()
	v.SetDefault("name", DefaultName)
	v.SetDefault("display.mission_distance_km", d.MissionDistanceKm)
	v.SetDefault("display.velocity_scale", d.VelocityScale)
	v.SetDefault("display.min_velocity_kms", d.MinVelocityKmS)
	v.SetDefault("display.max_velocity_kms", d.MaxVelocityKmS)
}

// FromViper builds a mission from a loaded config. Missing waypoints or
// phases fall back to the built-in tables.
func FromViper(v *viper.Viper) (Mission, error) {
	waypoints := DefaultWaypoints()
	if v.IsSet("waypoints") {
		var raw []waypointEntry
		if err := v.UnmarshalKey("waypoints", &raw); err != nil {
			return Mission{}, fmt.Errorf("decode waypoints: %w", err)
		}
		converted, err := convertWaypoints(raw)
		if err != nil {
			return Mission{}, err
		}
		waypoints = converted
	}

	phases := DefaultPhases()
	if v.IsSet("phases") {
		var raw []phaseEntry
		if err := v.UnmarshalKey("phases", &raw); err != nil {
			return Mission{}, fmt.Errorf("decode phases: %w", err)
		}
		phases = make([]Phase, len(raw))
		for i, s := range raw {
			phases[i] = Phase{Label: s.Label, T0: s.T0, T1: s.T1}
		}
	}

	display := Display{
		MissionDistanceKm: v.GetFloat64("display.mission_distance_km"),
		VelocityScale:     v.GetFloat64("display.velocity_scale"),
		MinVelocityKmS:    v.GetFloat64("display.min_velocity_kms"),
		MaxVelocityKmS:    v.GetFloat64("display.max_velocity_kms"),
	}

	return New(v.GetString("name"), waypoints, phases, display)
}

// Load reads a mission file. See NewViper for the accepted formats.
func Load(path string) (Mission, error) {
	v, err := NewViper(path)
	if err != nil {
		return Mission{}, err
	}
	return FromViper(v)
}

func convertWaypoints(raw []waypointEntry) ([]Waypoint, error) {
	out := make([]Waypoint, 0, len(raw))
	for i, s := range raw {
		if len(s.Position) != 3 {
			return nil, fmt.Errorf("%w: waypoint %d (%s) position needs 3 components, got %d",
				ErrInvalidWaypoint, i, s.Name, len(s.Position))
		}
		var color HSL
		switch len(s.Color) {
		case 0:
			color = HSL{Hue: 0, Sat: 0, Light: 70}
		case 3:
			color = HSL{Hue: s.Color[0], Sat: s.Color[1], Light: s.Color[2]}
		default:
			return nil, fmt.Errorf("%w: waypoint %d (%s) color needs hue,sat,light",
				ErrInvalidWaypoint, i, s.Name)
		}
		out = append(out, Waypoint{
			Name:     s.Name,
			Position: r3.Vec{X: s.Position[0], Y: s.Position[1], Z: s.Position[2]},
			Radius:   s.Radius,
			Color:    color,
			Kind:     ParseBodyKind(s.Kind),
			HasRings: s.Rings,
		})
	}
	return out, nil
}
