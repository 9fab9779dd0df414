package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/scene"
)

const (
	// Nominal pixel size of one terminal cell. The engine renders into a
	// pixel viewport of cols·cellWidthPx by rows·cellHeightPx.
	cellWidthPx  = 8.0
	cellHeightPx = 16.0

	// Length of the heading tick beyond the craft marker
	headingTickPx = 30.0

	hudLines = 2

	// Craft
	glyphCraft   = '◆'
	colorCraft   = "229" // bright gold
	colorHeading = "#d0c8ff"

	// Star glyphs by brightness
	glyphStarBright  = '✶'
	glyphStarMedium  = '✸'
	glyphStarDim     = '·'
	glyphStarVeryDim = '·'

	colorStarBright  = "255"
	colorStarMedium  = "250"
	colorStarDim     = "244"
	colorStarVeryDim = "240"

	glyphPreview  = '·'
	glyphSmall    = '●'
	glyphRing     = '·'
	colorLabel    = "250"
	colorAccent   = "#9D4EDD"
	colorFarTrail = "#3C3C5A"
)

// Light direction for disc shading: upper left, toward the viewer.
var lightDir = [3]float64{-0.45, -0.55, 0.70}

var (
	hudDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	hudValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hudPhaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	hudPausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	hudArriveStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
)

// FlightViewModel renders the flight as seen from the camera.
type FlightViewModel struct {
	width   int
	height  int
	showHUD bool
}

// NewFlightViewModel creates a flight view with the HUD shown.
func NewFlightViewModel() FlightViewModel {
	return FlightViewModel{showHUD: true}
}

// SetSize updates the view dimensions.
func (m FlightViewModel) SetSize(width, height int) FlightViewModel {
	m.width = width
	m.height = height
	return m
}

// ToggleHUD shows or hides the HUD lines.
func (m FlightViewModel) ToggleHUD() FlightViewModel {
	m.showHUD = !m.showHUD
	return m
}

// ShowHUD reports whether the HUD is drawn.
func (m FlightViewModel) ShowHUD() bool {
	return m.showHUD
}

// CanvasSize returns the cell dimensions of the drawing area.
func (m FlightViewModel) CanvasSize() (int, int) {
	h := m.height
	if m.showHUD {
		h -= hudLines
	}
	return max(m.width, 0), max(h, 0)
}

// View renders frame f.
func (m FlightViewModel) View(f scene.Frame) string {
	if m.width < 20 || m.height < 8 {
		return "Flight view requires larger terminal"
	}

	w, h := m.CanvasSize()
	var b strings.Builder
	b.WriteString(drawFrame(f, w, h).render())
	if m.showHUD {
		b.WriteString("\n")
		b.WriteString(renderHUD(f, w))
	}
	return b.String()
}

// grid maps viewport pixels to canvas cells.
type grid struct {
	cw, ch float64
}

func (g grid) cell(x, y float64) (int, int) {
	return toCell(x / g.cw), toCell(y / g.ch)
}

func (g grid) center(cx, cy int) (float64, float64) {
	return (float64(cx) + 0.5) * g.cw, (float64(cy) + 0.5) * g.ch
}

// span returns the clamped cell range covering [lo, hi] on an axis of n
// cells of size size.
func span(lo, hi, size float64, n int) (int, int) {
	a := math.Min(float64(n), math.Max(0, math.Floor(lo/size)))
	b := math.Max(-1, math.Min(float64(n-1), math.Floor(hi/size)))
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, -1
	}
	return int(a), int(b)
}

// toCell floors v, saturating far outside any terminal.
func toCell(v float64) int {
	const limit = 1 << 20
	switch {
	case math.IsNaN(v):
		return -limit
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	}
	return int(math.Floor(v))
}

// drawFrame paints f onto a width×height canvas: stars, the path preview,
// bodies far to near, the craft and finally labels.
func drawFrame(f scene.Frame, width, height int) *canvas {
	c := newCanvas(width, height)
	if width == 0 || height == 0 || f.Viewport.Width <= 0 || f.Viewport.Height <= 0 {
		return c
	}
	g := grid{cw: f.Viewport.Width / float64(width), ch: f.Viewport.Height / float64(height)}

	for _, s := range f.Stars {
		x, y := g.cell(s.X, s.Y)
		glyph, color := starGlyph(s.Brightness)
		c.set(x, y, glyph, color)
	}

	drawPreview(c, g, f)

	for _, b := range f.Bodies {
		if b.Visible {
			drawBody(c, g, b)
		}
	}

	drawCraft(c, g, f.Craft)
	drawLabels(c, g, f.Bodies)
	return c
}

func starGlyph(brightness float64) (rune, lipgloss.Color) {
	switch {
	case brightness >= 0.9:
		return glyphStarBright, colorStarBright
	case brightness >= 0.75:
		return glyphStarMedium, colorStarMedium
	case brightness >= 0.55:
		return glyphStarDim, colorStarDim
	default:
		return glyphStarVeryDim, colorStarVeryDim
	}
}

// drawPreview draws the path ahead, fading with distance along it.
func drawPreview(c *canvas, g grid, f scene.Frame) {
	n := len(f.Preview)
	if n < 2 {
		return
	}
	near, _ := colorful.Hex(colorAccent)
	far, _ := colorful.Hex(colorFarTrail)
	maxLen := 2 * (c.width + c.height)

	for i := 1; i < n; i++ {
		a, b := f.Preview[i-1], f.Preview[i]
		if !a.Visible || !b.Visible {
			continue
		}
		x0, y0 := g.cell(a.X, a.Y)
		x1, y1 := g.cell(b.X, b.Y)
		if abs(x1-x0)+abs(y1-y0) > maxLen {
			continue
		}
		t := float64(i) / float64(n-1)
		color := lipgloss.Color(near.BlendLab(far, t).Clamped().Hex())
		c.line(x0, y0, x1, y1, glyphPreview, color)
	}
}

// hslColor converts a waypoint colour with lightness l in percent.
func hslColor(c mission.HSL, l float64) lipgloss.Color {
	l = math.Max(0, math.Min(100, l))
	return lipgloss.Color(colorful.Hsl(c.Hue, c.Sat/100, l/100).Clamped().Hex())
}

// drawBody draws a shaded disc, with bands and rings when the body has
// them. Bodies smaller than a cell become a single glyph.
func drawBody(c *canvas, g grid, b scene.Body) {
	x, y, r := b.Screen.X, b.Screen.Y, b.RadiusPx
	if r < math.Max(g.cw, g.ch)/2 {
		cx, cy := g.cell(x, y)
		c.set(cx, cy, glyphSmall, hslColor(b.Color, b.Color.Light))
		return
	}

	if b.HasRings {
		drawRing(c, g, b, true)
	}

	x0, x1 := span(x-r, x+r, g.cw, c.width)
	y0, y1 := span(y-r, y+r, g.ch, c.height)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			px, py := g.center(cx, cy)
			nx, ny := (px-x)/r, (py-y)/r
			d2 := nx*nx + ny*ny
			if d2 > 1 {
				continue
			}
			nz := math.Sqrt(1 - d2)
			lambert := math.Max(0, nx*lightDir[0]+ny*lightDir[1]+nz*lightDir[2])
			l := b.Color.Light * (0.3 + 0.9*lambert)
			if b.Banded {
				l *= 1 - 0.18*(0.5+0.5*math.Sin(ny*9))
			}
			glyph := '█'
			if d2 > 0.85 {
				glyph = '▓'
			}
			c.set(cx, cy, glyph, hslColor(b.Color, l))
		}
	}

	if b.HasRings {
		drawRing(c, g, b, false)
	}
}

// drawRing draws one half of a tilted ring ellipse. The back half is drawn
// before the disc so the body hides it.
func drawRing(c *canvas, g grid, b scene.Body, back bool) {
	const tilt = 0.7
	x, y, r := b.Screen.X, b.Screen.Y, b.RadiusPx
	ra, rb := r*1.9, r*0.55
	cos, sin := math.Cos(tilt), math.Sin(tilt)
	color := hslColor(mission.HSL{Hue: b.Color.Hue, Sat: b.Color.Sat * 0.6}, b.Color.Light+15)

	x0, x1 := span(x-ra, x+ra, g.cw, c.width)
	y0, y1 := span(y-ra, y+ra, g.ch, c.height)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			px, py := g.center(cx, cy)
			dx, dy := px-x, py-y
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if (v < 0) != back {
				continue
			}
			e := (u*u)/(ra*ra) + (v*v)/(rb*rb)
			if math.Abs(e-1) > 0.3 {
				continue
			}
			c.set(cx, cy, glyphRing, color)
		}
	}
}

// drawCraft draws the marker and a tick pointing along the direction of
// travel.
func drawCraft(c *canvas, g grid, craft scene.Craft) {
	if !craft.Screen.Visible {
		return
	}
	x, y := craft.Screen.X, craft.Screen.Y
	step := math.Min(g.cw, g.ch) / 2
	tick := headingGlyph(craft.HeadingRad)
	dx, dy := math.Cos(craft.HeadingRad), math.Sin(craft.HeadingRad)

	for d := craft.RadiusPx; d <= craft.RadiusPx+headingTickPx; d += step {
		cx, cy := g.cell(x+dx*d, y+dy*d)
		c.set(cx, cy, tick, colorHeading)
	}

	cx, cy := g.cell(x, y)
	c.set(cx, cy, glyphCraft, colorCraft)
}

// headingGlyph picks a line glyph for a screen angle with Y growing down.
func headingGlyph(rad float64) rune {
	dx, dy := math.Cos(rad), math.Sin(rad)
	switch {
	case math.Abs(dy) < 0.38:
		return '─'
	case math.Abs(dx) < 0.38:
		return '│'
	case dx*dy > 0:
		return '╲'
	default:
		return '╱'
	}
}

// drawLabels centres each visible body's name above it.
func drawLabels(c *canvas, g grid, bodies []scene.Body) {
	for _, b := range bodies {
		if !b.Visible {
			continue
		}
		lx, ly := g.cell(b.LabelX, b.LabelY)
		_, by := g.cell(b.Screen.X, b.Screen.Y)
		if ly >= by {
			ly = by - 1
		}
		name := []rune(b.Name)
		c.text(lx-len(name)/2, ly, string(name), colorLabel)
	}
}

// renderHUD renders the two status lines under the canvas.
func renderHUD(f scene.Frame, width int) string {
	sep := hudDimStyle.Render(" │ ")

	line1 := hudPhaseStyle.Render("▶ "+f.Phase) + sep +
		hudDimStyle.Render("DIST ") + hudValueStyle.Render(scene.FormatThousands(f.RemainingKm)+" km") + sep +
		hudDimStyle.Render("VEL ") + hudValueStyle.Render(scene.FormatThousands(f.VelocityKmS)+" km/s") + sep +
		hudDimStyle.Render("CAM ") + hudValueStyle.Render(f.Mode.String()) + sep +
		hudDimStyle.Render("SPD ") + hudValueStyle.Render(fmt.Sprintf("%.3f", f.Speed))

	barWidth := max(10, min(60, width-30))
	line2 := renderProgressBar(f.Progress, barWidth) +
		hudValueStyle.Render(fmt.Sprintf(" %5.1f%%", f.Progress*100))
	if badge := renderBadge(f); badge != "" {
		line2 += "  " + badge
	}
	return " " + line1 + "\n " + line2
}

// renderBadge returns the arrival or pause badge, or "" while flying.
func renderBadge(f scene.Frame) string {
	switch {
	case f.Arrived:
		return hudArriveStyle.Render("ARRIVED: " + strings.ToUpper(f.Destination))
	case !f.Running:
		return hudPausedStyle.Render("PAUSED")
	}
	return ""
}

// renderProgressBar draws a bracketed bar with progress in [0, 1].
func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))
	return "[" + style.Render(bar) + "]"
}
