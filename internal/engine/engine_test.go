package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/logging"
	"github.com/litescript/ls-flightpath/internal/metrics"
	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/state"
)

const step = 50 * time.Millisecond

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock.InitialSpeed = 0.6
	e, err := New(mission.Default(), cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// fly ticks at a fixed step until arrival and returns the last time.
func fly(t *testing.T, e *Engine, from time.Duration) time.Duration {
	t.Helper()
	now := from
	for i := 0; i < 100000; i++ {
		f := e.Tick(now)
		if f.Arrived {
			return now
		}
		now += step
	}
	t.Fatal("flight never arrived")
	return now
}

func countEvents(events []state.Event, typ state.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestNew_RejectsBadMission(t *testing.T) {
	_, err := New(mission.Mission{}, DefaultConfig())
	if !errors.Is(err, mission.ErrTooFewWaypoints) {
		t.Errorf("New(empty) error = %v, want ErrTooFewWaypoints", err)
	}
}

func TestEngine_EndToEndFiveWaypoints(t *testing.T) {
	e := newTestEngine(t)
	wps := e.Mission().Waypoints()

	f := e.Tick(0)
	if f.Craft.World != wps[0].Position {
		t.Errorf("craft at t=0 = %v, want %v", f.Craft.World, wps[0].Position)
	}
	if f.Phase != "Earth orbit" {
		t.Errorf("Phase at t=0 = %q, want Earth orbit", f.Phase)
	}

	end := fly(t, e, step)
	f = e.Tick(end + step)

	if f.Progress != 1 || f.Running {
		t.Errorf("final state progress=%v running=%v, want 1/false", f.Progress, f.Running)
	}
	if f.Craft.World != wps[4].Position {
		t.Errorf("craft at t=1 = %v, want %v", f.Craft.World, wps[4].Position)
	}
	if f.Phase != "Mars orbit insertion" {
		t.Errorf("Phase at t=1 = %q, want Mars orbit insertion", f.Phase)
	}
}

func TestEngine_JournalsPhasesAndArrival(t *testing.T) {
	e := newTestEngine(t)
	end := fly(t, e, 0)
	e.Tick(end + step) // terminal ticks add nothing

	events := e.Journal().Events()
	if n := countEvents(events, state.EventArrived); n != 1 {
		t.Errorf("ARRIVED events = %d, want 1", n)
	}

	var phases []string
	for _, ev := range events {
		if ev.Type == state.EventPhaseChange {
			phases = append(phases, ev.Phase)
		}
	}
	want := []string{"Moon fly-by", "Cruise to Jupiter", "Jupiter fly-by", "Cruise to Neptune", "Neptune & rings", "Mars orbit insertion"}
	if strings.Join(phases, "|") != strings.Join(want, "|") {
		t.Errorf("phase changes = %v, want %v", phases, want)
	}

	last := events[len(events)-1]
	if last.Type != state.EventArrived || last.Detail != "Mars" || last.Progress != 1 {
		t.Errorf("last event = %+v, want ARRIVED at Mars", last)
	}
}

func TestEngine_PlayPause(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(0)
	e.Tick(step)

	e.TogglePlayPause()
	before := e.State().Progress
	e.Tick(2 * step)
	e.Tick(3 * step)
	if e.State().Progress != before {
		t.Errorf("progress moved while paused: %v -> %v", before, e.State().Progress)
	}

	e.TogglePlayPause()
	e.Tick(4 * step)
	if e.State().Progress <= before {
		t.Error("progress did not resume")
	}

	events := e.Journal().Events()
	if countEvents(events, state.EventPaused) != 1 || countEvents(events, state.EventResumed) != 1 {
		t.Errorf("events = %+v, want one PAUSED and one RESUMED", events)
	}
}

func TestEngine_ArrivalIsTerminalUntilRestart(t *testing.T) {
	e := newTestEngine(t)
	end := fly(t, e, 0)

	e.TogglePlayPause()
	e.Tick(end + step)
	if st := e.State(); st.Running || st.Progress != 1 {
		t.Errorf("after play at arrival state = %+v, want stopped at 1", st)
	}
	if n := countEvents(e.Journal().Events(), state.EventResumed); n != 0 {
		t.Errorf("RESUMED events = %d after arrival, want 0", n)
	}

	e.Restart()
	f := e.Tick(end + 2*step)
	if !f.Running || f.Progress >= 1 || f.Arrived {
		t.Errorf("after restart frame = progress %v running %v", f.Progress, f.Running)
	}
	if f.Phase != "Earth orbit" {
		t.Errorf("Phase after restart = %q, want Earth orbit", f.Phase)
	}

	events := e.Journal().Events()
	last := events[len(events)-1]
	if last.Type != state.EventRestart {
		t.Errorf("last event = %s, want RESTART with no spurious phase change", last.Type)
	}
}

func TestEngine_RestartStartsFreshJournal(t *testing.T) {
	e := newTestEngine(t)
	end := fly(t, e, 0)
	if countEvents(e.Journal().Events(), state.EventArrived) != 1 {
		t.Fatal("want one ARRIVED before restart")
	}

	e.Restart()
	events := e.Journal().Events()
	if len(events) != 1 || events[0].Type != state.EventRestart {
		t.Fatalf("events after restart = %+v, want only RESTART", events)
	}

	fly(t, e, end+step)
	if n := countEvents(e.Journal().Events(), state.EventArrived); n != 1 {
		t.Errorf("ARRIVED events on second flight = %d, want 1", n)
	}
}

func TestEngine_SpeedCommands(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(mission.Default(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		e.IncreaseSpeed()
	}
	want := 0.08 * 1.25 * 1.25 * 1.25
	if got := e.State().Speed; got < want-1e-12 || got > want+1e-12 {
		t.Errorf("Speed = %v, want %v", got, want)
	}

	for i := 0; i < 40; i++ {
		e.IncreaseSpeed()
	}
	if got := e.State().Speed; got != 0.6 {
		t.Errorf("Speed = %v, want 0.6", got)
	}

	// Requests at the bound change nothing and are not journaled.
	changes := countEvents(e.Journal().Events(), state.EventSpeedChange)
	e.IncreaseSpeed()
	if got := countEvents(e.Journal().Events(), state.EventSpeedChange); got != changes {
		t.Errorf("SPEED_CHANGE journaled at the bound: %d -> %d", changes, got)
	}
}

func TestEngine_CameraModeAndDrag(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(0)

	if mode := e.ToggleCameraMode(); mode != camera.ModeFree {
		t.Fatalf("ToggleCameraMode = %v, want FREE", mode)
	}
	yaw := e.Pose().Yaw

	e.DragStart(100, 100)
	e.DragMove(125, 100)
	e.DragEnd()
	e.Tick(step)

	if got := e.Pose().Yaw - yaw; got < 0.1-1e-9 || got > 0.1+1e-9 {
		t.Errorf("yaw change = %v, want 0.1", got)
	}

	if mode := e.ToggleCameraMode(); mode != camera.ModeAuto {
		t.Errorf("ToggleCameraMode = %v, want AUTO", mode)
	}
	if n := countEvents(e.Journal().Events(), state.EventCameraMode); n != 2 {
		t.Errorf("CAMERA_MODE events = %d, want 2", n)
	}
}

func TestEngine_Dragging(t *testing.T) {
	e := newTestEngine(t)
	e.DragStart(10, 10)
	if e.Dragging() {
		t.Error("drag armed in AUTO")
	}

	e.ToggleCameraMode()
	e.DragStart(10, 10)
	if !e.Dragging() {
		t.Error("drag not armed in FREE")
	}
	e.DragEnd()
	if e.Dragging() {
		t.Error("still dragging after DragEnd")
	}
}

func TestEngine_NudgeOnlyInFree(t *testing.T) {
	e := newTestEngine(t)
	e.Tick(0)

	yaw := e.Pose().Yaw
	e.Nudge(0.2, 0)
	e.Tick(step)
	if got := e.Pose().Yaw - yaw; got > 0.2-1e-9 && got < 0.2+1e-9 {
		t.Error("nudge applied in AUTO")
	}

	e.ToggleCameraMode()
	yaw = e.Pose().Yaw
	e.Nudge(0.2, 0)
	e.Tick(2 * step)
	if got := e.Pose().Yaw - yaw; got < 0.2-1e-9 || got > 0.2+1e-9 {
		t.Errorf("yaw change = %v, want 0.2", got)
	}
}

func TestEngine_Resize(t *testing.T) {
	e := newTestEngine(t)
	e.Resize(1200, 400)
	e.Resize(0, 100)

	vp := e.Viewport()
	if vp.Width != 1200 || vp.Height != 400 {
		t.Errorf("Viewport = %vx%v, want 1200x400", vp.Width, vp.Height)
	}
	if vp.FOV != camera.DefaultFOV {
		t.Errorf("Resize changed FOV to %v", vp.FOV)
	}

	f := e.Tick(0)
	if f.Viewport.Width != 1200 {
		t.Errorf("frame viewport width = %v, want 1200", f.Viewport.Width)
	}
}

func TestEngine_AutoCameraFollowsCraft(t *testing.T) {
	e, err := New(mission.Default(), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Duration(0)
	for i := 0; i < 100; i++ {
		e.Tick(now)
		now += step
	}

	pose := e.Pose()
	craft := e.Sampler().Sample(e.State().Progress)
	dist := r3.Norm(r3.Sub(pose.Position, craft))
	if dist > 4 {
		t.Errorf("camera %v is %.2f from craft %v", pose.Position, dist, craft)
	}
	if pose.Pitch < -1 || pose.Pitch > 1 {
		t.Errorf("Pitch = %v outside [-1, 1]", pose.Pitch)
	}
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	e := newTestEngine(t, WithMetrics(c))
	fly(t, e, 0)

	if got := testutil.ToFloat64(c.FramesTotal); got != float64(e.Frames()) {
		t.Errorf("frames_total = %v, want %d", got, e.Frames())
	}
	if got := testutil.ToFloat64(c.Progress); got != 1 {
		t.Errorf("progress_ratio = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.EventsTotal.WithLabelValues("PHASE_CHANGE")); got != 6 {
		t.Errorf("events_total{PHASE_CHANGE} = %v, want 6", got)
	}
	if got := testutil.ToFloat64(c.EventsTotal.WithLabelValues("ARRIVED")); got != 1 {
		t.Errorf("events_total{ARRIVED} = %v, want 1", got)
	}
}

func TestEngine_Logger(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.LevelInfo)
	l.SetOutput(&buf)

	e := newTestEngine(t, WithLogger(l.With("engine")))
	fly(t, e, 0)

	out := buf.String()
	if !strings.Contains(out, "engine: Mission") {
		t.Errorf("missing mission log line:\n%s", out)
	}
	if !strings.Contains(out, "Arrived at Mars") {
		t.Errorf("missing arrival log line:\n%s", out)
	}
}

func TestEngine_DebugLogsPhaseChanges(t *testing.T) {
	var info, debug bytes.Buffer
	li := logging.New(logging.LevelInfo)
	li.SetOutput(&info)
	ld := logging.New(logging.LevelDebug)
	ld.SetOutput(&debug)

	fly(t, newTestEngine(t, WithLogger(li)), 0)
	fly(t, newTestEngine(t, WithLogger(ld)), 0)

	if strings.Contains(info.String(), "Phase ") {
		t.Errorf("phase changes logged at info:\n%s", info.String())
	}
	if !strings.Contains(debug.String(), `Phase "Mars orbit insertion"`) {
		t.Errorf("missing debug phase line:\n%s", debug.String())
	}
}

func TestApplyViper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flight.yaml")
	yaml := `
camera:
  mode: free
  auto_damping: 0.1
  fov: 1.5
clock:
  initial_speed: 0.2
  max_step: 100ms
scene:
  star_count: 50
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v, err := mission.NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	cfg := ApplyViper(DefaultConfig(), v)

	if cfg.InitialPose.Mode != camera.ModeFree {
		t.Errorf("InitialPose.Mode = %v, want FREE", cfg.InitialPose.Mode)
	}
	if cfg.Camera.AutoDamping != 0.1 {
		t.Errorf("AutoDamping = %v, want 0.1", cfg.Camera.AutoDamping)
	}
	if cfg.Camera.FreeDamping != 0.02 {
		t.Errorf("FreeDamping = %v, want default 0.02", cfg.Camera.FreeDamping)
	}
	if cfg.Viewport.FOV != 1.5 {
		t.Errorf("FOV = %v, want 1.5", cfg.Viewport.FOV)
	}
	if cfg.Clock.InitialSpeed != 0.2 || cfg.Clock.MaxStep != 100*time.Millisecond {
		t.Errorf("Clock = %+v", cfg.Clock)
	}
	if cfg.Scene.StarCount != 50 {
		t.Errorf("StarCount = %d, want 50", cfg.Scene.StarCount)
	}
}
