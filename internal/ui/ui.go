// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/engine"
	"github.com/litescript/ls-flightpath/internal/scene"
	"github.com/litescript/ls-flightpath/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewFlight ViewMode = iota
	ViewTimeline
)

const viewCount = 2

// Lines taken by the title bar and footer around the active view.
const chromeLines = 2

// Radians turned per arrow key press in free-look.
const nudgeStep = 0.05

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 30

// Msg types for Bubble Tea
type (
	// FrameMsg triggers one engine tick at the carried wall time.
	FrameMsg time.Time
)

// Config holds UI options.
type Config struct {
	FPS     int
	ShowHUD bool
}

// Model is the root Bubble Tea model.
type Model struct {
	engine *engine.Engine

	viewMode ViewMode
	width    int
	height   int
	ready    bool

	fps      int
	start    time.Time
	started  bool
	frame    scene.Frame
	hasFrame bool
	animTick int

	flight   FlightViewModel
	timeline TimelineViewModel
}

// New creates a UI over e.
func New(e *engine.Engine, cfg Config) Model {
	fps := cfg.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	flight := NewFlightViewModel()
	if !cfg.ShowHUD {
		flight = flight.ToggleHUD()
	}
	return Model{
		engine:   e,
		viewMode: ViewFlight,
		fps:      fps,
		flight:   flight,
		timeline: NewTimelineViewModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.fps)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case FrameMsg:
		now := time.Time(msg)
		if !m.started {
			m.start = now
			m.started = true
		}
		m.frame = m.engine.Tick(now.Sub(m.start))
		m.hasFrame = true
		m.animTick++
		return m, frameCmd(m.fps)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1":
		m.viewMode = ViewFlight
	case "2":
		m.viewMode = ViewTimeline
	case "tab":
		m.viewMode = (m.viewMode + 1) % viewCount
	case " ", "space":
		m.engine.TogglePlayPause()
	case "r":
		m.engine.Restart()
	case "c":
		m.engine.ToggleCameraMode()
	case "+", "=":
		m.engine.IncreaseSpeed()
	case "-", "_":
		m.engine.DecreaseSpeed()
	case "h":
		m.flight = m.flight.ToggleHUD()
		m.resize()
	case "left":
		m.engine.Nudge(-nudgeStep, 0)
	case "right":
		m.engine.Nudge(nudgeStep, 0)
	case "up":
		m.engine.Nudge(0, nudgeStep)
	case "down":
		m.engine.Nudge(0, -nudgeStep)
	}
	return m, nil
}

// handleMouse turns left-button drags on the flight view into camera drags.
// Cell positions are converted to viewport pixels so drag sensitivity is
// independent of the terminal size.
func (m Model) handleMouse(msg tea.MouseMsg) {
	if m.viewMode != ViewFlight {
		return
	}
	x := (float64(msg.X) + 0.5) * cellWidthPx
	y := (float64(msg.Y-1) + 0.5) * cellHeightPx

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.engine.DragStart(x, y)
		}
	case tea.MouseActionMotion:
		m.engine.DragMove(x, y)
	case tea.MouseActionRelease:
		m.engine.DragEnd()
	}
}

// resize propagates the terminal size to the views and the engine viewport.
func (m *Model) resize() {
	contentHeight := max(m.height-chromeLines, 0)
	m.flight = m.flight.SetSize(m.width, contentHeight)
	m.timeline = m.timeline.SetSize(m.width, contentHeight)

	cols, rows := m.flight.CanvasSize()
	if cols > 0 && rows > 0 {
		m.engine.Resize(float64(cols)*cellWidthPx, float64(rows)*cellHeightPx)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if !m.hasFrame {
		return m.renderFrame("  Waiting for first frame...")
	}

	var content string
	switch m.viewMode {
	case ViewTimeline:
		content = m.timeline.View(m.engine.Mission(), m.frame, m.engine.Journal())
	default:
		content = m.flight.View(m.frame)
	}
	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	return m.renderTitle() + "\n" + content + "\n" + m.renderFooter()
}

// renderTitle draws the gradient name, version and the view tabs on one line.
func (m Model) renderTitle() string {
	name := []rune("LS-FLIGHTPATH")
	var b strings.Builder
	b.WriteString(" ")
	for i, r := range name {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(i, len(name))))
		b.WriteString(style.Render(string(r)))
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf(" v%s  ", version.Version)))
	b.WriteString(m.renderTabs())
	return b.String()
}

// Gradient stops for the title: blue, purple, magenta, pink.
var titleStops = []string{"#3B82F6", "#8B5CF6", "#D946EF", "#EC4899"}

// gradientColor returns the hex colour at position col of width along the
// title gradient.
func gradientColor(col, width int) string {
	if width <= 1 {
		return titleStops[0]
	}
	t := float64(col) / float64(width-1)
	seg := t * float64(len(titleStops)-1)
	i := int(seg)
	if i >= len(titleStops)-1 {
		i = len(titleStops) - 2
	}
	a, _ := colorful.Hex(titleStops[i])
	b, _ := colorful.Hex(titleStops[i+1])
	return a.BlendLuv(b, seg-float64(i)).Clamped().Hex()
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Flight", "[2] Timeline"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	st := m.engine.State()
	var status string
	switch {
	case st.Progress >= 1:
		status = accentStyle.Render("■") + dimStyle.Render(" arrived")
	case !st.Running:
		status = accentStyle.Render("‖") + dimStyle.Render(" paused")
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" T+%s", formatDuration(m.engine.Elapsed())))
	}

	var help string
	switch m.viewMode {
	case ViewTimeline:
		help = dimStyle.Render("space: play/pause | r: restart | +/-: speed | tab: switch view | q: quit")
	default:
		help = "space: play/pause | r: restart | c: camera | +/-: speed | h: HUD"
		if m.engine.Pose().Mode == camera.ModeFree {
			if m.engine.Dragging() {
				help += " | release to coast"
			} else {
				help += " | drag/arrows: look"
			}
		}
		help = dimStyle.Render(help + " | q: quit")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

// ViewMode returns the active view.
func (m Model) ViewMode() ViewMode {
	return m.viewMode
}

// Frame returns the last frame drawn.
func (m Model) Frame() scene.Frame {
	return m.frame
}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
