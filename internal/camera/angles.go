package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// normalizeAngle wraps an angle to [-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// lerpAngle interpolates from a toward b along the shortest arc. The result is
// not wrapped, so a free-look yaw that has spun several turns unwinds from
// where it is.
func lerpAngle(a, b, t float64) float64 {
	return a + normalizeAngle(b-a)*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
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
