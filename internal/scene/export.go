package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-flightpath/internal/state"
)

// FrameExport is the JSON-serializable representation of a frame.
type FrameExport struct {
	At          float64        `json:"at_seconds"`
	Progress    float64        `json:"progress"`
	Speed       float64        `json:"speed"`
	Running     bool           `json:"running"`
	Arrived     bool           `json:"arrived"`
	Phase       string         `json:"phase"`
	Destination string         `json:"destination"`
	RemainingKm float64        `json:"remaining_km"`
	VelocityKmS float64        `json:"velocity_kms"`
	Camera      CameraExport   `json:"camera"`
	Craft       PointExport    `json:"craft"`
	Preview     []PointExport  `json:"preview"`
	Bodies      []BodyExport   `json:"bodies"`
	Viewport    ViewportExport `json:"viewport"`
	StarCount   int            `json:"visible_stars"`
}

// CameraExport is a JSON-friendly camera pose.
type CameraExport struct {
	Mode     string     `json:"mode"`
	Position [3]float64 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
}

// PointExport is a projected point.
type PointExport struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Depth   float64 `json:"depth"`
	Visible bool    `json:"visible"`
}

// BodyExport is a JSON-friendly body.
type BodyExport struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	World    [3]float64 `json:"world"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Depth    float64    `json:"depth"`
	RadiusPx float64    `json:"radius_px"`
	Visible  bool       `json:"visible"`
	Rings    bool       `json:"rings,omitempty"`
}

// ViewportExport is the surface the frame was projected onto.
type ViewportExport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	FOV    float64 `json:"fov"`
}

// ExportFrame converts a frame to an exportable format.
func ExportFrame(f Frame) *FrameExport {
	export := &FrameExport{
		At:          f.Now.Seconds(),
		Progress:    f.Progress,
		Speed:       f.Speed,
		Running:     f.Running,
		Arrived:     f.Arrived,
		Phase:       f.Phase,
		Destination: f.Destination,
		RemainingKm: f.RemainingKm,
		VelocityKmS: f.VelocityKmS,
		Camera: CameraExport{
			Mode:     f.Mode.String(),
			Position: [3]float64{f.Camera.Position.X, f.Camera.Position.Y, f.Camera.Position.Z},
			Yaw:      f.Camera.Yaw,
			Pitch:    f.Camera.Pitch,
		},
		Craft: PointExport{
			X:       f.Craft.Screen.X,
			Y:       f.Craft.Screen.Y,
			Depth:   f.Craft.Screen.Depth,
			Visible: f.Craft.Screen.Visible,
		},
		Viewport: ViewportExport{
			Width:  f.Viewport.Width,
			Height: f.Viewport.Height,
			FOV:    f.Viewport.FOV,
		},
		StarCount: len(f.Stars),
	}

	export.Preview = make([]PointExport, len(f.Preview))
	for i, p := range f.Preview {
		export.Preview[i] = PointExport{X: p.X, Y: p.Y, Depth: p.Depth, Visible: p.Visible}
	}

	export.Bodies = make([]BodyExport, len(f.Bodies))
	for i, b := range f.Bodies {
		export.Bodies[i] = BodyExport{
			Name:     b.Name,
			Kind:     b.Kind.String(),
			World:    [3]float64{b.World.X, b.World.Y, b.World.Z},
			X:        b.Screen.X,
			Y:        b.Screen.Y,
			Depth:    b.Screen.Depth,
			RadiusPx: b.RadiusPx,
			Visible:  b.Visible,
			Rings:    b.HasRings,
		}
	}

	return export
}

// WriteJSON writes the frame as JSON to the given writer.
func (e *FrameExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummary writes a text status block for f.
func WriteSummary(w io.Writer, f Frame) {
	status := "RUNNING"
	switch {
	case f.Arrived:
		status = "ARRIVED: " + strings.ToUpper(f.Destination)
	case !f.Running:
		status = "PAUSED"
	}

	fmt.Fprintf(w, "Flight Status @ T+%s\n", formatElapsed(f.Now))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "%-12s %s\n", "Status", status)
	fmt.Fprintf(w, "%-12s %s\n", "Phase", f.Phase)
	fmt.Fprintf(w, "%-12s %5.1f%%\n", "Progress", f.Progress*100)
	fmt.Fprintf(w, "%-12s %s km\n", "Remaining", FormatThousands(f.RemainingKm))
	fmt.Fprintf(w, "%-12s %s km/s\n", "Velocity", FormatThousands(f.VelocityKmS))
	fmt.Fprintf(w, "%-12s %.3f\n", "Speed", f.Speed)
	fmt.Fprintf(w, "%-12s %s\n", "Camera", f.Mode)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(f.Bodies) == 0 {
		fmt.Fprintln(w, "No bodies")
		return
	}

	fmt.Fprintf(w, "%-12s %-7s %9s %8s %s\n", "Body", "Kind", "Depth", "Radius", "Drawn")
	for i := len(f.Bodies) - 1; i >= 0; i-- { // nearest first
		b := f.Bodies[i]
		drawn := "no"
		if b.Visible {
			drawn = "yes"
		}
		fmt.Fprintf(w, "%-12s %-7s %9.2f %8.1f %s\n",
			truncateStr(b.Name, 12), b.Kind, b.Screen.Depth, b.RadiusPx, drawn)
	}

	fmt.Fprintf(w, "\nVisible: %d/%d bodies, %d stars\n", f.VisibleBodies(), len(f.Bodies), len(f.Stars))
}

// WriteTimeline writes the journal as a text log, oldest first.
func WriteTimeline(w io.Writer, events []state.Event) {
	fmt.Fprintln(w, "Flight Log")
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	for _, e := range events {
		line := fmt.Sprintf("T+%-9s %-13s %5.1f%%", formatElapsed(e.At), e.Type, e.Progress*100)
		if e.Phase != "" {
			line += "  " + truncateStr(e.Phase, 24)
		}
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

// FormatThousands rounds v and groups digits in threes.
func FormatThousands(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func formatElapsed(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	m := int(d / time.Minute)
	s := (d % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%04.1f", m, s)
}

// truncateStr truncates a string to maxLen, adding ".." if truncated.
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
