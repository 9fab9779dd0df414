package scene

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Star is a background point on a spherical shell around the origin.
type Star struct {
	Position r3.Vec
	Mag      float64 // [0, 1), brighter when larger
}

// StarPoint is a star projected inside the viewport.
type StarPoint struct {
	X, Y       float64
	Mag        float64
	Brightness float64 // draw alpha in [0.35, 1)
}

// Starfield positions are squeezed onto a distant patch ahead of the origin
// so the field reads as a backdrop rather than geometry the craft flies by.
const (
	starSqueeze = 0.02
	starDepth   = 50.0
)

// GenerateStars places n stars uniformly on directions with radius in
// [minR, maxR). The same seed always yields the same field.
func GenerateStars(n int, seed uint64, minR, maxR float64) []Star {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	stars := make([]Star, n)
	for i := range stars {
		r := minR + rng.Float64()*(maxR-minR)
		u := rng.Float64() * 2 * math.Pi
		v := math.Acos(2*rng.Float64() - 1)
		stars[i] = Star{
			Position: r3.Vec{
				X: r * math.Sin(v) * math.Cos(u),
				Y: r * math.Cos(v),
				Z: r * math.Sin(v) * math.Sin(u),
			},
			Mag: rng.Float64(),
		}
	}
	return stars
}

// backdrop maps a star to the world point it is drawn at.
func (s Star) backdrop() r3.Vec {
	return r3.Vec{
		X: s.Position.X * starSqueeze,
		Y: s.Position.Y * starSqueeze,
		Z: starDepth + s.Position.Z*starSqueeze,
	}
}
