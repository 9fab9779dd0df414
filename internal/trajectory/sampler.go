// Package trajectory turns an ordered waypoint list into a continuous flight
// path parameterized by normalized progress.
package trajectory

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-flightpath/internal/mission"
)

// Sampler evaluates a Catmull-Rom spline through fixed control points. It is
// immutable and safe to share.
type Sampler struct {
	points []r3.Vec
}

// New builds a sampler over points. At least mission.MinWaypoints points are
// required so both end segments have distinct neighbours.
func New(points []r3.Vec) (*Sampler, error) {
	if len(points) < mission.MinWaypoints {
		return nil, fmt.Errorf("trajectory: %w: got %d", mission.ErrTooFewWaypoints, len(points))
	}
	cp := make([]r3.Vec, len(points))
	copy(cp, points)
	return &Sampler{points: cp}, nil
}

// FromMission builds a sampler through the mission's waypoint positions.
func FromMission(m mission.Mission) (*Sampler, error) {
	return New(m.Positions())
}

// Len returns the number of control points.
func (s *Sampler) Len() int {
	return len(s.points)
}

// Sample returns the path position at progress t. t is clamped to [0, 1] so
// look-ahead callers may overshoot.
func (s *Sampler) Sample(t float64) r3.Vec {
	t = clamp01(t)
	n := len(s.points)
	last := n - 1

	seg := int(math.Floor(t * float64(last)))
	if seg > n-2 {
		seg = n - 2
	}
	lt := t*float64(last) - float64(seg)

	a := s.points[max(0, seg-1)]
	b := s.points[seg]
	c := s.points[seg+1]
	d := s.points[min(last, seg+2)]

	u := Ease(lt)
	if u >= 1 {
		// The basis reduces to c here; skip the arithmetic so arrival is exact.
		return c
	}
	return r3.Vec{
		X: catmullRom(a.X, b.X, c.X, d.X, u),
		Y: catmullRom(a.Y, b.Y, c.Y, d.Y, u),
		Z: catmullRom(a.Z, b.Z, c.Z, d.Z, u),
	}
}

// Ahead samples the path dt past t, clamped to the end of the path.
func (s *Sampler) Ahead(t, dt float64) r3.Vec {
	return s.Sample(t + dt)
}

// Preview returns steps+1 points covering [t, t+span], clamped at arrival.
func (s *Sampler) Preview(t, span float64, steps int) []r3.Vec {
	if steps < 1 {
		return []r3.Vec{s.Sample(t)}
	}
	out := make([]r3.Vec, steps+1)
	for i := 0; i <= steps; i++ {
		out[i] = s.Sample(t + float64(i)/float64(steps)*span)
	}
	return out
}

// Heading returns the unit direction of travel between t and t+eps. It is the
// zero vector when the two samples coincide, e.g. at arrival.
func (s *Sampler) Heading(t, eps float64) r3.Vec {
	d := r3.Sub(s.Sample(t+eps), s.Sample(t))
	if r3.Norm(d) < 1e-12 {
		return r3.Vec{}
	}
	return r3.Unit(d)
}

// Ease is a symmetric cubic ease-in-out with Ease(0)=0, Ease(0.5)=0.5 and
// Ease(1)=1.
func Ease(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}

// catmullRom evaluates the uniform Catmull-Rom basis on one axis.
func catmullRom(a, b, c, d, u float64) float64 {
	u2 := u * u
	u3 := u2 * u
	return 0.5 * (2*b +
		(-a+c)*u +
		(2*a-5*b+4*c-d)*u2 +
		(-a+3*b-3*c+d)*u3)
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
