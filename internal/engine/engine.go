// Package engine drives the flight: it owns the clock, the camera, the path
// sampler and the scene assembler, and turns each tick into a frame.
package engine

import (
	"fmt"
	"time"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/logging"
	"github.com/litescript/ls-flightpath/internal/metrics"
	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/scene"
	"github.com/litescript/ls-flightpath/internal/state"
	"github.com/litescript/ls-flightpath/internal/trajectory"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records per-frame telemetry in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

// Engine runs one flight. Commands take effect on the next Tick. It is not
// safe for concurrent use: the host serializes commands and ticks.
type Engine struct {
	mission mission.Mission
	sampler *trajectory.Sampler
	clock   *state.Clock
	camera  *camera.Controller
	asm     *scene.Assembler
	journal *state.Journal
	vp      camera.Viewport

	log     *logging.Logger
	metrics *metrics.Collector

	last     time.Duration
	ticked   bool
	phaseIdx int
	frames   uint64
}

// New builds an engine for m.
func New(m mission.Mission, cfg Config, opts ...Option) (*Engine, error) {
	sampler, err := trajectory.FromMission(m)
	if err != nil {
		return nil, fmt.Errorf("build path: %w", err)
	}
	if m.Phases().Len() == 0 {
		return nil, fmt.Errorf("mission %q: %w", m.Name, mission.ErrInvalidPhases)
	}
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = camera.NewViewport(800, 600)
	}

	e := &Engine{
		mission: m,
		sampler: sampler,
		clock:   state.NewClock(cfg.Clock),
		camera:  camera.NewController(cfg.Camera, cfg.InitialPose),
		asm:     scene.NewAssembler(m, sampler, cfg.Scene),
		journal: state.NewJournal(cfg.JournalSize),
		vp:      cfg.Viewport,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.phaseIdx = m.Phases().Index(0)

	e.log.Info("Mission %q: %d waypoints, %d phases, destination %s",
		m.Name, sampler.Len(), m.Phases().Len(), m.Destination().Name)
	return e, nil
}

// Tick advances the flight to wall time now and returns the frame to draw.
// The first tick only establishes the time base.
func (e *Engine) Tick(now time.Duration) scene.Frame {
	start := time.Now()

	dt := time.Duration(0)
	if e.ticked {
		dt = now - e.last
	}
	e.last = now
	e.ticked = true

	arrived := e.clock.Advance(dt, now)
	st := e.clock.State()

	phases := e.mission.Phases()
	if idx := phases.Index(st.Progress); idx != e.phaseIdx {
		e.phaseIdx = idx
		e.record(state.EventPhaseChange, "")
		if e.log.Enabled(logging.LevelDebug) {
			e.log.Debug("Phase %q at %.3f", phases.Classify(st.Progress), st.Progress)
		}
	}
	if arrived {
		dest := e.mission.Destination().Name
		e.record(state.EventArrived, dest)
		e.log.Info("Arrived at %s after %s", dest, now.Round(time.Millisecond))
	}

	here := e.sampler.Sample(st.Progress)
	ahead := e.sampler.Ahead(st.Progress, e.camera.Config().LookAhead)
	e.camera.Update(here, ahead)

	f := e.asm.Assemble(scene.Input{
		State:    st,
		Pose:     e.camera.Pose(),
		Viewport: e.vp,
		Now:      now,
	})
	e.frames++

	e.metrics.ObserveFrame(metrics.FrameSample{
		Progress:      f.Progress,
		Speed:         f.Speed,
		Running:       f.Running,
		Mode:          f.Mode.String(),
		VisibleBodies: f.VisibleBodies(),
		VisibleStars:  len(f.Stars),
	}, time.Since(start))
	return f
}

// TogglePlayPause pauses or resumes. After arrival it does nothing.
func (e *Engine) TogglePlayPause() {
	if e.clock.Arrived() {
		e.log.Debug("Play/pause ignored after arrival")
		return
	}
	if e.clock.TogglePlayPause() {
		e.record(state.EventResumed, "")
	} else {
		e.record(state.EventPaused, "")
	}
}

// Restart returns to the start of the path and resumes. The journal starts
// over with the RESTART event.
func (e *Engine) Restart() {
	e.clock.Restart()
	e.journal.Reset()
	e.phaseIdx = e.mission.Phases().Index(0)
	e.record(state.EventRestart, "")
	e.log.Info("Flight restarted")
}

// ToggleCameraMode switches between AUTO and FREE.
func (e *Engine) ToggleCameraMode() camera.Mode {
	mode := e.camera.ToggleMode()
	e.record(state.EventCameraMode, mode.String())
	e.log.Info("Camera mode %s", mode)
	return mode
}

// IncreaseSpeed speeds the flight up one step.
func (e *Engine) IncreaseSpeed() float64 {
	return e.changeSpeed(e.clock.IncreaseSpeed)
}

// DecreaseSpeed slows the flight down one step.
func (e *Engine) DecreaseSpeed() float64 {
	return e.changeSpeed(e.clock.DecreaseSpeed)
}

func (e *Engine) changeSpeed(step func() float64) float64 {
	before := e.clock.State().Speed
	after := step()
	if after != before {
		e.record(state.EventSpeedChange, fmt.Sprintf("%.3f -> %.3f", before, after))
	}
	return after
}

// DragStart begins a free-look drag at surface position (x, y).
func (e *Engine) DragStart(x, y float64) {
	e.camera.DragStart(x, y)
}

// DragMove continues a drag.
func (e *Engine) DragMove(x, y float64) {
	e.camera.DragMove(x, y)
}

// DragEnd releases the drag.
func (e *Engine) DragEnd() {
	e.camera.DragEnd()
}

// Nudge turns the free-look camera by the given angles in radians.
func (e *Engine) Nudge(yaw, pitch float64) {
	e.camera.Nudge(yaw, pitch)
}

// Resize updates the viewport dimensions. Non-positive sizes are ignored.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	e.vp.Width = width
	e.vp.Height = height
}

// Dragging reports whether a free-look drag is in progress.
func (e *Engine) Dragging() bool {
	return e.camera.Dragging()
}

// State returns the simulation state.
func (e *Engine) State() state.SimulationState {
	return e.clock.State()
}

// Pose returns the camera pose.
func (e *Engine) Pose() camera.Pose {
	return e.camera.Pose()
}

// Journal returns the flight event journal.
func (e *Engine) Journal() *state.Journal {
	return e.journal
}

// Mission returns the mission being flown.
func (e *Engine) Mission() mission.Mission {
	return e.mission
}

// Sampler returns the path sampler.
func (e *Engine) Sampler() *trajectory.Sampler {
	return e.sampler
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() camera.Viewport {
	return e.vp
}

// Frames returns the number of frames assembled.
func (e *Engine) Frames() uint64 {
	return e.frames
}

// Elapsed returns the wall time of the last tick.
func (e *Engine) Elapsed() time.Duration {
	return e.last
}

func (e *Engine) record(t state.EventType, detail string) {
	st := e.clock.State()
	e.journal.Add(state.Event{
		Type:     t,
		At:       e.last,
		Progress: st.Progress,
		Phase:    e.mission.Phases().Classify(st.Progress),
		Detail:   detail,
	})
	e.metrics.IncEvent(string(t))
}
