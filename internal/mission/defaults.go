package mission

import "gonum.org/v1/gonum/spatial/r3"

// DefaultName is the name of the built-in mission.
const DefaultName = "Earth to Mars via Jupiter and Neptune"

// DefaultWaypoints returns the built-in route. All waypoints sit at positive Z
// so the camera flies along +Z.
func DefaultWaypoints() []Waypoint {
	return []Waypoint{
		{Name: "Earth", Position: r3.Vec{X: 0, Y: 0, Z: 0}, Radius: 0.18, Color: HSL{220, 90, 64}, Kind: KindPlanet},
		{Name: "Moon", Position: r3.Vec{X: 0.6, Y: 0.02, Z: 0.4}, Radius: 0.05, Color: HSL{220, 20, 85}, Kind: KindMoon},
		{Name: "Jupiter", Position: r3.Vec{X: 5.5, Y: -0.2, Z: 3.0}, Radius: 0.35, Color: HSL{30, 60, 65}, Kind: KindPlanet},
		{Name: "Neptune", Position: r3.Vec{X: 9.0, Y: 0.4, Z: 5.0}, Radius: 0.28, Color: HSL{210, 70, 60}, Kind: KindPlanet, HasRings: true},
		{Name: "Mars", Position: r3.Vec{X: 12.0, Y: 0.05, Z: 7.0}, Radius: 0.16, Color: HSL{10, 65, 60}, Kind: KindPlanet},
	}
}

// DefaultPhases returns the phase table matching DefaultWaypoints.
func DefaultPhases() []Phase {
	return []Phase{
		{Label: "Earth orbit", T0: 0.00, T1: 0.18},
		{Label: "Moon fly-by", T0: 0.18, T1: 0.32},
		{Label: "Cruise to Jupiter", T0: 0.32, T1: 0.58},
		{Label: "Jupiter fly-by", T0: 0.58, T1: 0.68},
		{Label: "Cruise to Neptune", T0: 0.68, T1: 0.86},
		{Label: "Neptune & rings", T0: 0.86, T1: 0.93},
		{Label: "Mars orbit insertion", T0: 0.93, T1: 1.00},
	}
}

// Default returns the built-in mission. The built-in tables are valid, so a
// failure here is a programming error.
func Default() Mission {
	m, err := New(DefaultName, DefaultWaypoints(), DefaultPhases(), DefaultDisplay())
	if err != nil {
		panic(err)
	}
	return m
}
