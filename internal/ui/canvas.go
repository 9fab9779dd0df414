package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Background colour of empty canvas cells.
const colorBackground = "236"

// canvas is a grid of glyphs with a foreground colour per cell.
type canvas struct {
	width  int
	height int
	glyphs [][]rune
	colors [][]lipgloss.Color
}

func newCanvas(width, height int) *canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &canvas{
		width:  width,
		height: height,
		glyphs: make([][]rune, height),
		colors: make([][]lipgloss.Color, height),
	}
	for y := 0; y < height; y++ {
		c.glyphs[y] = make([]rune, width)
		c.colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			c.glyphs[y][x] = ' '
			c.colors[y][x] = colorBackground
		}
	}
	return c
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

func (c *canvas) set(x, y int, r rune, color lipgloss.Color) {
	if !c.inside(x, y) {
		return
	}
	c.glyphs[y][x] = r
	c.colors[y][x] = color
}

func (c *canvas) at(x, y int) (rune, lipgloss.Color) {
	if !c.inside(x, y) {
		return 0, ""
	}
	return c.glyphs[y][x], c.colors[y][x]
}

// text writes s starting at (x, y), clipping at the edges.
func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

// line draws a straight segment between two cells.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, color lipgloss.Color) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.set(x0, y0, r, color)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (dx*i+sign(dx)*steps/2)/steps
		y := y0 + (dy*i+sign(dy)*steps/2)/steps
		c.set(x, y, r, color)
	}
}

// render turns the grid into styled text. Runs of one colour share a style.
func (c *canvas) render() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		x := 0
		for x < c.width {
			color := c.colors[y][x]
			end := x
			for end < c.width && c.colors[y][end] == color {
				end++
			}
			style := lipgloss.NewStyle().Foreground(color)
			b.WriteString(style.Render(string(c.glyphs[y][x:end])))
			x = end
		}
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// plain returns the glyphs without styling.
func (c *canvas) plain() string {
	lines := make([]string, c.height)
	for y := range c.glyphs {
		lines[y] = string(c.glyphs[y])
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
