package mission

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestDefault(t *testing.T) {
	m := Default()

	if got := len(m.Waypoints()); got != 5 {
		t.Fatalf("waypoints = %d, want 5", got)
	}
	if m.Destination().Name != "Mars" {
		t.Errorf("Destination = %q, want Mars", m.Destination().Name)
	}
	if m.Phases().Len() != 7 {
		t.Errorf("phases = %d, want 7", m.Phases().Len())
	}
	if m.Phases().Classify(1) != "Mars orbit insertion" {
		t.Errorf("Classify(1) = %q", m.Phases().Classify(1))
	}
}

func TestNew_TooFewWaypoints(t *testing.T) {
	wps := DefaultWaypoints()[:3]
	_, err := New("short", wps, DefaultPhases(), DefaultDisplay())
	if !errors.Is(err, ErrTooFewWaypoints) {
		t.Errorf("err = %v, want ErrTooFewWaypoints", err)
	}
}

func TestNew_InvalidWaypoint(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Waypoint)
	}{
		{"no name", func(w *Waypoint) { w.Name = "" }},
		{"zero radius", func(w *Waypoint) { w.Radius = 0 }},
		{"nan position", func(w *Waypoint) { w.Position.X = math.NaN() }},
		{"inf position", func(w *Waypoint) { w.Position.Z = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wps := DefaultWaypoints()
			tt.mutate(&wps[2])
			_, err := New("bad", wps, DefaultPhases(), DefaultDisplay())
			if !errors.Is(err, ErrInvalidWaypoint) {
				t.Errorf("err = %v, want ErrInvalidWaypoint", err)
			}
		})
	}
}

func TestNew_InvalidDisplay(t *testing.T) {
	d := DefaultDisplay()
	d.MinVelocityKmS = d.MaxVelocityKmS + 1
	_, err := New("bad", DefaultWaypoints(), DefaultPhases(), d)
	if !errors.Is(err, ErrInvalidDisplay) {
		t.Errorf("err = %v, want ErrInvalidDisplay", err)
	}
}

func TestMission_Immutable(t *testing.T) {
	wps := DefaultWaypoints()
	m, err := New("copy", wps, DefaultPhases(), DefaultDisplay())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wps[0].Name = "mutated"
	got := m.Waypoints()
	if got[0].Name != "Earth" {
		t.Errorf("mission shares caller slice: %q", got[0].Name)
	}

	got[1].Name = "mutated"
	if m.Waypoints()[1].Name != "Moon" {
		t.Error("Waypoints() exposes internal slice")
	}
}

func TestDisplay(t *testing.T) {
	d := DefaultDisplay()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"remaining at start", d.RemainingKm(0), 225e6},
		{"remaining halfway", d.RemainingKm(0.5), 112.5e6},
		{"remaining at end", d.RemainingKm(1), 0},
		{"remaining past end", d.RemainingKm(1.2), 0},
		{"velocity nominal", d.VelocityKmS(0.08), 960},
		{"velocity floor", d.VelocityKmS(0.001), 36},
		{"velocity ceiling", d.VelocityKmS(10), 48000},
	}

	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-6 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	content := `
name: Inner loop
waypoints:
  - name: A
    position: [0, 0, 0]
    radius: 0.1
    color: [200, 50, 50]
  - name: B
    position: [1, 0, 1]
    radius: 0.1
    kind: moon
  - name: C
    position: [2, 0, 2]
    radius: 0.2
    rings: true
  - name: D
    position: [3, 0, 3]
    radius: 0.1
phases:
  - {label: Departure, t0: 0, t1: 0.5}
  - {label: Arrival, t0: 0.5, t1: 1}
display:
  mission_distance_km: 1000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m.Name != "Inner loop" {
		t.Errorf("Name = %q", m.Name)
	}
	wps := m.Waypoints()
	if len(wps) != 4 {
		t.Fatalf("waypoints = %d, want 4", len(wps))
	}
	if wps[1].Kind != KindMoon {
		t.Errorf("B kind = %v, want moon", wps[1].Kind)
	}
	if !wps[2].HasRings {
		t.Error("C should have rings")
	}
	if wps[3].Position != (r3.Vec{X: 3, Y: 0, Z: 3}) {
		t.Errorf("D position = %v", wps[3].Position)
	}
	if wps[0].Color != (HSL{200, 50, 50}) {
		t.Errorf("A color = %v", wps[0].Color)
	}
	if m.Phases().Classify(0.5) != "Arrival" {
		t.Errorf("Classify(0.5) = %q", m.Phases().Classify(0.5))
	}
	if m.Display().MissionDistanceKm != 1000 {
		t.Errorf("MissionDistanceKm = %v, want 1000", m.Display().MissionDistanceKm)
	}
	// Unset keys keep their defaults.
	if m.Display().VelocityScale != DefaultDisplay().VelocityScale {
		t.Errorf("VelocityScale = %v, want default", m.Display().VelocityScale)
	}
}

func TestLoad_BadPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	content := `
waypoints:
  - {name: A, position: [0, 0], radius: 0.1}
  - {name: B, position: [1, 0, 1], radius: 0.1}
  - {name: C, position: [2, 0, 2], radius: 0.1}
  - {name: D, position: [3, 0, 3], radius: 0.1}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidWaypoint) {
		t.Errorf("err = %v, want ErrInvalidWaypoint", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	m, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != DefaultName {
		t.Errorf("Name = %q, want %q", m.Name, DefaultName)
	}
	if len(m.Waypoints()) != len(DefaultWaypoints()) {
		t.Errorf("waypoints = %d", len(m.Waypoints()))
	}
}

func TestParseBodyKind(t *testing.T) {
	if ParseBodyKind("moon") != KindMoon {
		t.Error("moon")
	}
	if ParseBodyKind("planet") != KindPlanet {
		t.Error("planet")
	}
	if ParseBodyKind("asteroid") != KindPlanet {
		t.Error("unknown should default to planet")
	}
}
