package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/scene"
	"github.com/litescript/ls-flightpath/internal/state"
)

// Styles for the timeline
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	doneRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// TimelineViewModel lists the mission phases, the waypoints and the recent
// flight log.
type TimelineViewModel struct {
	width  int
	height int
}

// NewTimelineViewModel creates a timeline view.
func NewTimelineViewModel() TimelineViewModel {
	return TimelineViewModel{}
}

// SetSize updates the view dimensions.
func (m TimelineViewModel) SetSize(width, height int) TimelineViewModel {
	m.width = width
	m.height = height
	return m
}

// View renders the timeline for mission ms at frame f.
func (m TimelineViewModel) View(ms mission.Mission, f scene.Frame, journal *state.Journal) string {
	var b strings.Builder

	dest := ms.Destination().Name
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s → %s", ms.Name, dest)))
	b.WriteString("  ")
	b.WriteString(renderProgressBar(f.Progress, 30))
	b.WriteString(rowStyle.Render(fmt.Sprintf(" %5.1f%%", f.Progress*100)))
	if badge := renderBadge(f); badge != "" {
		b.WriteString("  " + badge)
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderPhaseTable(ms.Phases(), f))
	b.WriteString("\n")
	b.WriteString(m.renderWaypointTable(ms.Waypoints()))
	b.WriteString("\n")

	used := strings.Count(b.String(), "\n")
	b.WriteString(m.renderLog(journal, m.height-used-2))
	return b.String()
}

func (m TimelineViewModel) renderPhaseTable(pt mission.PhaseTable, f scene.Frame) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Phases"))
	b.WriteString("\n")
	header := fmt.Sprintf("%-2s %-24s %7s %7s", "", "Phase", "Start", "End")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, p := range pt.Phases() {
		marker := " "
		style := rowStyle
		switch {
		case i == f.PhaseIndex:
			marker = "▶"
			style = selectedRowStyle
		case i < f.PhaseIndex:
			marker = "✓"
			style = doneRowStyle
		}
		row := fmt.Sprintf("%-2s %-24s %6.1f%% %6.1f%%",
			marker, truncate(p.Label, 24), p.T0*100, p.T1*100)
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

func (m TimelineViewModel) renderWaypointTable(waypoints []mission.Waypoint) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Waypoints"))
	b.WriteString("\n")
	header := fmt.Sprintf("%-2s %-12s %-7s %-24s %6s %-5s", "", "Body", "Kind", "Position", "Radius", "Rings")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, wp := range waypoints {
		swatch := lipgloss.NewStyle().Foreground(hslColor(wp.Color, wp.Color.Light)).Render("●")
		rings := ""
		if wp.HasRings {
			rings = "yes"
		}
		row := fmt.Sprintf(" %-12s %-7s %-24s %6.2f %-5s",
			truncate(wp.Name, 12),
			wp.Kind,
			fmt.Sprintf("(%.1f, %.1f, %.1f)", wp.Position.X, wp.Position.Y, wp.Position.Z),
			wp.Radius,
			rings,
		)
		if i == len(waypoints)-1 {
			row += " ◀ destination"
		}
		b.WriteString(swatch + rowStyle.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

// renderLog shows the newest events that fit in rows lines, oldest first.
func (m TimelineViewModel) renderLog(journal *state.Journal, rows int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Flight Log"))
	if journal != nil {
		b.WriteString(doneRowStyle.Render(fmt.Sprintf("  (%d events)", journal.Total())))
	}
	b.WriteString("\n")

	if rows < 3 {
		rows = 3
	}
	var events []state.Event
	if journal != nil {
		events = journal.Recent(rows)
	}
	if len(events) == 0 {
		b.WriteString("  No events\n")
		return b.String()
	}

	for _, e := range events {
		row := fmt.Sprintf("  T+%-9s %-13s %5.1f%%  %s",
			formatDuration(e.At), e.Type, e.Progress*100, truncate(e.Phase, 24))
		if e.Detail != "" {
			row += "  " + e.Detail
		}
		style := rowStyle
		if e.Type == state.EventArrived {
			style = selectedRowStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

// formatDuration renders d as mm:ss.s.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(100 * time.Millisecond)
	m := int(d / time.Minute)
	s := (d % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%04.1f", m, s)
}

// truncate shortens s to maxLen runes, marking the cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
