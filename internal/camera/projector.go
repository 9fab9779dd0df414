package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DepthEpsilon is the nearest usable view depth. Points at or behind it are
// clamped to it for the arithmetic and flagged not visible.
const DepthEpsilon = 0.01

// DefaultFOV is the perspective divisor of the canvas flight.
const DefaultFOV = 1.2

// Viewport describes the render surface.
type Viewport struct {
	Width  float64
	Height float64
	FOV    float64
	// CellAspect is the height/width ratio of one surface unit. Pixels are
	// 1; terminal cells are roughly 2.
	CellAspect float64
}

// NewViewport returns a square-pixel viewport with the default FOV.
func NewViewport(width, height float64) Viewport {
	return Viewport{Width: width, Height: height, FOV: DefaultFOV, CellAspect: 1}
}

func (vp Viewport) fov() float64 {
	if vp.FOV <= 0 {
		return DefaultFOV
	}
	return vp.FOV
}

func (vp Viewport) aspect() float64 {
	if vp.CellAspect <= 0 {
		return 1
	}
	return vp.CellAspect
}

// Projection is a point mapped onto the viewport.
type Projection struct {
	X, Y    float64 // surface coordinates, origin top-left, Y down
	Scale   float64 // 1/(depth·fov); multiply world sizes by Scale·Width
	Depth   float64 // distance along the view axis, never below DepthEpsilon
	Visible bool    // false when the point is at or behind the camera
}

// Radius converts a world radius at this projection to surface units.
func (p Projection) Radius(worldRadius float64, vp Viewport) float64 {
	return worldRadius * p.Scale * vp.Width
}

// OnScreen reports whether the point is visible and inside the viewport.
func (p Projection) OnScreen(vp Viewport) bool {
	return p.Visible && p.X >= 0 && p.X < vp.Width && p.Y >= 0 && p.Y < vp.Height
}

// ToCamera expresses a world point in camera space: +Z along the view
// direction, +Y up, +X right.
func ToCamera(p r3.Vec, pose Pose) r3.Vec {
	v := r3.Sub(p, pose.Position)

	// Undo yaw about the vertical axis.
	cy, sy := math.Cos(pose.Yaw), math.Sin(pose.Yaw)
	x := v.X*cy - v.Z*sy
	z := v.X*sy + v.Z*cy

	// Undo pitch about the horizontal axis.
	cp, sp := math.Cos(pose.Pitch), math.Sin(pose.Pitch)
	y := v.Y*cp - z*sp
	z = v.Y*sp + z*cp

	return r3.Vec{X: x, Y: y, Z: z}
}

// Project maps a world point onto the viewport as seen from pose.
// Screen Y grows downward, so world-up points are drawn above the centre.
func Project(p r3.Vec, pose Pose, vp Viewport) Projection {
	v := ToCamera(p, pose)

	visible := v.Z > DepthEpsilon
	depth := v.Z
	if !visible || math.IsNaN(depth) {
		depth = DepthEpsilon
		visible = false
	}

	fov := vp.fov()
	halfW := vp.Width / 2
	halfH := vp.Height / 2
	scale := 1 / (depth * fov)

	return Projection{
		X:       v.X*scale*halfW + halfW,
		Y:       halfH - v.Y*scale*halfW/vp.aspect(),
		Scale:   scale,
		Depth:   depth,
		Visible: visible,
	}
}
