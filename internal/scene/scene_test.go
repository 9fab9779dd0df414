package scene

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/state"
	"github.com/litescript/ls-flightpath/internal/trajectory"
)

func newTestAssembler(t *testing.T) (*Assembler, mission.Mission) {
	t.Helper()
	m := mission.Default()
	s, err := trajectory.FromMission(m)
	if err != nil {
		t.Fatalf("FromMission: %v", err)
	}
	return NewAssembler(m, s, DefaultConfig()), m
}

func testInput(progress float64) Input {
	return Input{
		State:    state.SimulationState{Progress: progress, Speed: 0.08, Running: true},
		Pose:     camera.DefaultPose(),
		Viewport: camera.NewViewport(800, 600),
	}
}

func TestNewAssembler_ZeroConfigUsesDefaults(t *testing.T) {
	m := mission.Default()
	s, err := trajectory.FromMission(m)
	if err != nil {
		t.Fatalf("FromMission: %v", err)
	}

	a := NewAssembler(m, s, Config{})
	want := DefaultConfig()
	want.StarSeed = 0
	want.BodyWobble = 0
	if got := a.Config(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}

	f := a.Assemble(testInput(0.5))
	if len(f.Preview) != want.PreviewSteps+1 {
		t.Errorf("preview points = %d, want %d", len(f.Preview), want.PreviewSteps+1)
	}
	if len(f.Stars) == 0 {
		t.Error("zero config produced an empty starfield")
	}
}

func TestNewAssembler_KeepsValidFields(t *testing.T) {
	m := mission.Default()
	s, _ := trajectory.FromMission(m)

	cfg := DefaultConfig()
	cfg.PreviewSpan = 0.1
	cfg.StarCount = 10
	cfg.LabelLift = -1

	got := NewAssembler(m, s, cfg).Config()
	if got.PreviewSpan != 0.1 || got.StarCount != 10 {
		t.Errorf("valid fields replaced: %+v", got)
	}
	if got.LabelLift != DefaultConfig().LabelLift {
		t.Errorf("LabelLift = %v, want default", got.LabelLift)
	}
}

func TestAssemble_Basics(t *testing.T) {
	a, m := newTestAssembler(t)
	f := a.Assemble(testInput(0.5))

	if f.Phase != "Cruise to Jupiter" {
		t.Errorf("Phase = %q, want Cruise to Jupiter", f.Phase)
	}
	if f.PhaseIndex != 2 {
		t.Errorf("PhaseIndex = %d, want 2", f.PhaseIndex)
	}
	if !scalar.EqualWithinAbs(f.RemainingKm, 112.5e6, 1e-3) {
		t.Errorf("RemainingKm = %v, want 112.5e6", f.RemainingKm)
	}
	if !scalar.EqualWithinAbs(f.VelocityKmS, 960, 1e-9) {
		t.Errorf("VelocityKmS = %v, want 960", f.VelocityKmS)
	}
	if f.Arrived {
		t.Error("Arrived should be false mid-flight")
	}
	if f.Destination != "Mars" {
		t.Errorf("Destination = %q, want Mars", f.Destination)
	}
	if len(f.Bodies) != len(m.Waypoints()) {
		t.Errorf("Bodies = %d, want %d", len(f.Bodies), len(m.Waypoints()))
	}
}

func TestAssemble_PreviewPolyline(t *testing.T) {
	a, _ := newTestAssembler(t)
	s, _ := trajectory.FromMission(mission.Default())

	in := testInput(0.3)
	f := a.Assemble(in)

	if len(f.Preview) != 121 {
		t.Fatalf("Preview has %d points, want 121", len(f.Preview))
	}
	first := camera.Project(s.Sample(0.3), in.Pose, in.Viewport)
	last := camera.Project(s.Sample(0.52), in.Pose, in.Viewport)
	if f.Preview[0] != first {
		t.Errorf("Preview[0] = %+v, want %+v", f.Preview[0], first)
	}
	if !scalar.EqualWithinAbs(f.Preview[120].X, last.X, 1e-9) || !scalar.EqualWithinAbs(f.Preview[120].Y, last.Y, 1e-9) {
		t.Errorf("Preview[120] = %+v, want %+v", f.Preview[120], last)
	}
}

func TestAssemble_BodiesFarToNear(t *testing.T) {
	a, _ := newTestAssembler(t)
	f := a.Assemble(testInput(0))

	for i := 1; i < len(f.Bodies); i++ {
		if f.Bodies[i-1].Screen.Depth < f.Bodies[i].Screen.Depth {
			t.Errorf("bodies[%d] depth %v nearer than bodies[%d] depth %v",
				i-1, f.Bodies[i-1].Screen.Depth, i, f.Bodies[i].Screen.Depth)
		}
	}

	// From the default pose Earth is the nearest body and is drawn last.
	nearest := f.Bodies[len(f.Bodies)-1]
	if nearest.Name != "Earth" {
		t.Errorf("nearest body = %q, want Earth", nearest.Name)
	}
	if !nearest.Visible {
		t.Error("Earth should be visible from the default pose")
	}
	if !scalar.EqualWithinAbs(nearest.LabelY, nearest.Screen.Y-nearest.RadiusPx*1.05, 1e-9) {
		t.Errorf("LabelY = %v, want anchored above the disc", nearest.LabelY)
	}
}

func TestAssemble_BodyVisibility(t *testing.T) {
	a, _ := newTestAssembler(t)

	// Looking away from every waypoint.
	in := testInput(0)
	in.Pose.Yaw = math.Pi
	f := a.Assemble(in)
	for _, b := range f.Bodies {
		if b.Visible || b.Screen.Visible {
			t.Errorf("%s visible behind the camera", b.Name)
		}
	}

	// A tiny viewport shrinks every disc below the draw threshold.
	in = testInput(0)
	in.Viewport = camera.NewViewport(10, 8)
	f = a.Assemble(in)
	for _, b := range f.Bodies {
		if b.Visible {
			t.Errorf("%s drawn at %.2fpx, below the 2px threshold", b.Name, b.RadiusPx)
		}
	}
	if f.VisibleBodies() != 0 {
		t.Errorf("VisibleBodies = %d, want 0", f.VisibleBodies())
	}
}

func TestAssemble_Wobble(t *testing.T) {
	a, m := newTestAssembler(t)

	in := testInput(0)
	in.Now = 2 * time.Second
	f := a.Assemble(in)

	byName := make(map[string]Body)
	for _, b := range f.Bodies {
		byName[b.Name] = b
	}
	for _, wp := range m.Waypoints() {
		b := byName[wp.Name]
		want := wp.Position.Z + 0.15*math.Sin(2000*0.0002+wp.Position.X*1.3)
		if !scalar.EqualWithinAbs(b.World.Z, want, 1e-12) {
			t.Errorf("%s z = %v, want %v", wp.Name, b.World.Z, want)
		}
		if b.World.X != wp.Position.X || b.World.Y != wp.Position.Y {
			t.Errorf("%s wobble moved x/y", wp.Name)
		}
	}
}

func TestAssemble_Craft(t *testing.T) {
	a, _ := newTestAssembler(t)
	f := a.Assemble(testInput(0))

	if f.Craft.World.X != 0 || f.Craft.World.Y != 0 || f.Craft.World.Z != 0 {
		t.Errorf("Craft.World = %v, want Earth", f.Craft.World)
	}
	if !f.Craft.Screen.Visible {
		t.Fatal("craft should be visible from the default pose")
	}
	if f.Craft.RadiusPx < 2 {
		t.Errorf("Craft.RadiusPx = %v, want at least 2", f.Craft.RadiusPx)
	}
	// The route heads toward +X first, which is to the right on screen.
	if math.Cos(f.Craft.HeadingRad) <= 0 {
		t.Errorf("HeadingRad = %v, want pointing right", f.Craft.HeadingRad)
	}
}

func TestAssemble_Arrival(t *testing.T) {
	a, _ := newTestAssembler(t)
	in := testInput(1)
	in.State.Running = false
	f := a.Assemble(in)

	if !f.Arrived {
		t.Error("Arrived should be true at progress 1")
	}
	if f.Phase != "Mars orbit insertion" {
		t.Errorf("Phase = %q, want Mars orbit insertion", f.Phase)
	}
	if f.RemainingKm != 0 {
		t.Errorf("RemainingKm = %v, want 0", f.RemainingKm)
	}
	if f.Craft.HeadingRad != 0 {
		t.Errorf("HeadingRad = %v at arrival, want 0", f.Craft.HeadingRad)
	}
}

func TestGenerateStars(t *testing.T) {
	a := GenerateStars(900, 7, 30, 150)
	b := GenerateStars(900, 7, 30, 150)
	c := GenerateStars(900, 8, 30, 150)

	if len(a) != 900 {
		t.Fatalf("len = %d, want 900", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("star %d differs for the same seed", i)
		}
		r := math.Sqrt(a[i].Position.X*a[i].Position.X + a[i].Position.Y*a[i].Position.Y + a[i].Position.Z*a[i].Position.Z)
		if r < 30-1e-9 || r >= 150+1e-9 {
			t.Errorf("star %d radius %v outside [30, 150)", i, r)
		}
		if a[i].Mag < 0 || a[i].Mag >= 1 {
			t.Errorf("star %d mag %v outside [0, 1)", i, a[i].Mag)
		}
	}
	if a[0] == c[0] {
		t.Error("different seeds produced the same first star")
	}
	if GenerateStars(0, 1, 30, 150) != nil {
		t.Error("zero stars should return nil")
	}
}

func TestAssemble_StarsOnScreen(t *testing.T) {
	a, _ := newTestAssembler(t)
	in := testInput(0.1)
	f := a.Assemble(in)

	if len(f.Stars) == 0 {
		t.Fatal("no stars on screen looking down +Z")
	}
	for _, s := range f.Stars {
		if s.X < 0 || s.X >= in.Viewport.Width || s.Y < 0 || s.Y >= in.Viewport.Height {
			t.Errorf("star at (%v, %v) outside the viewport", s.X, s.Y)
		}
		if s.Brightness < 0.35 || s.Brightness >= 1 {
			t.Errorf("Brightness = %v outside [0.35, 1)", s.Brightness)
		}
	}
}
