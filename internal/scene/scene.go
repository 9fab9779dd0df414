// Package scene assembles the per-frame render payload: the craft, the
// trajectory preview, depth-sorted bodies and the starfield, all projected
// through the current camera pose.
package scene

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/state"
	"github.com/litescript/ls-flightpath/internal/trajectory"
)

// Config holds presentation constants for frame assembly.
type Config struct {
	PreviewSpan      float64 // progress covered by the look-ahead polyline
	PreviewSteps     int     // polyline segments; the preview has steps+1 points
	MarkerAhead      float64 // progress offset for the craft heading tick
	CraftSize        float64 // craft marker world radius
	MinCraftRadiusPx float64
	StarCount        int
	StarSeed         uint64
	StarMinRadius    float64
	StarMaxRadius    float64
	BodyWobble       float64 // amplitude of the cosmetic z wobble
	MinBodyRadiusPx  float64 // bodies smaller than this are not drawn
	LabelLift        float64 // label anchor height in body radii
}

// DefaultConfig returns the presentation of the canvas flight.
func DefaultConfig() Config {
	return Config{
		PreviewSpan:      0.22,
		PreviewSteps:     120,
		MarkerAhead:      0.01,
		CraftSize:        0.02,
		MinCraftRadiusPx: 2,
		StarCount:        900,
		StarSeed:         1,
		StarMinRadius:    30,
		StarMaxRadius:    150,
		BodyWobble:       0.15,
		MinBodyRadiusPx:  2,
		LabelLift:        1.05,
	}
}

// normalized fills unusable values with defaults, field by field. A zero
// StarSeed and BodyWobble are valid settings and are kept.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.PreviewSpan <= 0 {
		c.PreviewSpan = d.PreviewSpan
	}
	if c.PreviewSteps < 1 {
		c.PreviewSteps = d.PreviewSteps
	}
	if c.MarkerAhead <= 0 {
		c.MarkerAhead = d.MarkerAhead
	}
	if c.CraftSize <= 0 {
		c.CraftSize = d.CraftSize
	}
	if c.MinCraftRadiusPx <= 0 {
		c.MinCraftRadiusPx = d.MinCraftRadiusPx
	}
	if c.StarCount <= 0 {
		c.StarCount = d.StarCount
	}
	if c.StarMinRadius <= 0 || c.StarMaxRadius <= c.StarMinRadius {
		c.StarMinRadius, c.StarMaxRadius = d.StarMinRadius, d.StarMaxRadius
	}
	if c.MinBodyRadiusPx <= 0 {
		c.MinBodyRadiusPx = d.MinBodyRadiusPx
	}
	if c.LabelLift <= 0 {
		c.LabelLift = d.LabelLift
	}
	return c
}

// Craft is the spacecraft marker.
type Craft struct {
	World      r3.Vec
	Screen     camera.Projection
	RadiusPx   float64
	HeadingRad float64 // screen-space direction of travel, 0 = +X, Y down
}

// Body is a waypoint as drawn this frame.
type Body struct {
	Name     string
	Kind     mission.BodyKind
	Color    mission.HSL
	HasRings bool
	Banded   bool // gas-giant style banding
	World    r3.Vec
	Screen   camera.Projection
	RadiusPx float64
	Visible  bool
	LabelX   float64
	LabelY   float64
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Now      time.Duration
	Camera   camera.Pose
	Viewport camera.Viewport

	Progress   float64
	Speed      float64
	Running    bool
	Arrived    bool
	Phase      string
	PhaseIndex int
	Mode       camera.Mode

	Craft   Craft
	Preview []camera.Projection
	Bodies  []Body // far to near
	Stars   []StarPoint

	RemainingKm float64
	VelocityKmS float64
	Destination string
}

// VisibleBodies counts bodies flagged for drawing.
func (f Frame) VisibleBodies() int {
	n := 0
	for _, b := range f.Bodies {
		if b.Visible {
			n++
		}
	}
	return n
}

// Input is the read-only state an assembly pass consumes.
type Input struct {
	State    state.SimulationState
	Pose     camera.Pose
	Viewport camera.Viewport
	Now      time.Duration
}

// Assembler turns simulation state into frames. It holds only immutable
// configuration and the generated starfield.
type Assembler struct {
	cfg     Config
	mission mission.Mission
	sampler *trajectory.Sampler
	stars   []Star
}

// NewAssembler creates an assembler for m. sampler must be built from the
// same mission.
func NewAssembler(m mission.Mission, sampler *trajectory.Sampler, cfg Config) *Assembler {
	cfg = cfg.normalized()
	return &Assembler{
		cfg:     cfg,
		mission: m,
		sampler: sampler,
		stars:   GenerateStars(cfg.StarCount, cfg.StarSeed, cfg.StarMinRadius, cfg.StarMaxRadius),
	}
}

// Config returns the assembler configuration.
func (a *Assembler) Config() Config {
	return a.cfg
}

// Assemble builds the frame for in.
func (a *Assembler) Assemble(in Input) Frame {
	t := in.State.Progress
	phases := a.mission.Phases()
	display := a.mission.Display()

	f := Frame{
		Now:         in.Now,
		Camera:      in.Pose,
		Viewport:    in.Viewport,
		Progress:    t,
		Speed:       in.State.Speed,
		Running:     in.State.Running,
		Arrived:     t >= 1,
		Phase:       phases.Classify(t),
		PhaseIndex:  phases.Index(t),
		Mode:        in.Pose.Mode,
		RemainingKm: display.RemainingKm(t),
		VelocityKmS: display.VelocityKmS(in.State.Speed),
		Destination: a.mission.Destination().Name,
	}

	f.Stars = a.projectStars(in.Pose, in.Viewport)
	f.Preview = a.projectPreview(t, in.Pose, in.Viewport)
	f.Bodies = a.projectBodies(in.Pose, in.Viewport, in.Now)
	f.Craft = a.projectCraft(t, in.Pose, in.Viewport)
	return f
}

func (a *Assembler) projectStars(pose camera.Pose, vp camera.Viewport) []StarPoint {
	out := make([]StarPoint, 0, len(a.stars))
	for _, s := range a.stars {
		p := camera.Project(s.backdrop(), pose, vp)
		if !p.OnScreen(vp) {
			continue
		}
		out = append(out, StarPoint{
			X:          p.X,
			Y:          p.Y,
			Mag:        s.Mag,
			Brightness: 0.35 + s.Mag*0.65,
		})
	}
	return out
}

func (a *Assembler) projectPreview(t float64, pose camera.Pose, vp camera.Viewport) []camera.Projection {
	points := a.sampler.Preview(t, a.cfg.PreviewSpan, a.cfg.PreviewSteps)
	out := make([]camera.Projection, len(points))
	for i, p := range points {
		out[i] = camera.Project(p, pose, vp)
	}
	return out
}

func (a *Assembler) projectBodies(pose camera.Pose, vp camera.Viewport, now time.Duration) []Body {
	ms := float64(now) / float64(time.Millisecond)
	waypoints := a.mission.Waypoints()

	bodies := make([]Body, 0, len(waypoints))
	for _, wp := range waypoints {
		pos := wp.Position
		pos.Z += a.cfg.BodyWobble * math.Sin(ms*0.0002+wp.Position.X*1.3)

		scr := camera.Project(pos, pose, vp)
		r := scr.Radius(wp.Radius, vp)
		bodies = append(bodies, Body{
			Name:     wp.Name,
			Kind:     wp.Kind,
			Color:    wp.Color,
			HasRings: wp.HasRings,
			Banded:   wp.Color.Hue < 60 || wp.Color.Hue > 180,
			World:    pos,
			Screen:   scr,
			RadiusPx: r,
			Visible:  scr.Visible && r >= a.cfg.MinBodyRadiusPx,
			LabelX:   scr.X,
			LabelY:   scr.Y - r*a.cfg.LabelLift,
		})
	}

	// Painter's order: farthest first.
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].Screen.Depth > bodies[j].Screen.Depth
	})
	return bodies
}

func (a *Assembler) projectCraft(t float64, pose camera.Pose, vp camera.Viewport) Craft {
	here := a.sampler.Sample(t)
	scr := camera.Project(here, pose, vp)
	ahead := camera.Project(a.sampler.Ahead(t, a.cfg.MarkerAhead), pose, vp)

	heading := 0.0
	if dx, dy := ahead.X-scr.X, ahead.Y-scr.Y; dx != 0 || dy != 0 {
		heading = math.Atan2(dy, dx)
	}
	return Craft{
		World:      here,
		Screen:     scr,
		RadiusPx:   math.Max(a.cfg.MinCraftRadiusPx, scr.Radius(a.cfg.CraftSize, vp)),
		HeadingRad: heading,
	}
}
