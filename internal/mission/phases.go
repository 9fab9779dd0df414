package mission

import (
	"fmt"
	"math"
)

// boundaryTolerance absorbs decimal rounding in hand-written phase tables.
const boundaryTolerance = 1e-9

// Phase is a labelled sub-interval [T0, T1) of the mission timeline.
type Phase struct {
	Label string
	T0    float64
	T1    float64
}

// Contains reports whether t falls in the half-open interval [T0, T1).
func (p Phase) Contains(t float64) bool {
	return t >= p.T0 && t < p.T1
}

// PhaseTable is an ordered partition of [0, 1]. The last interval is closed on
// the right.
type PhaseTable struct {
	phases []Phase
}

// NewPhaseTable validates that phases partition [0, 1] without gaps or
// overlaps.
func NewPhaseTable(phases []Phase) (PhaseTable, error) {
	if len(phases) == 0 {
		return PhaseTable{}, fmt.Errorf("%w: no phases", ErrInvalidPhases)
	}
	if math.Abs(phases[0].T0) > boundaryTolerance {
		return PhaseTable{}, fmt.Errorf("%w: first phase %q starts at %.4f, want 0",
			ErrInvalidPhases, phases[0].Label, phases[0].T0)
	}
	last := phases[len(phases)-1]
	if math.Abs(last.T1-1) > boundaryTolerance {
		return PhaseTable{}, fmt.Errorf("%w: last phase %q ends at %.4f, want 1",
			ErrInvalidPhases, last.Label, last.T1)
	}
	for i, p := range phases {
		if p.Label == "" {
			return PhaseTable{}, fmt.Errorf("%w: phase %d has no label", ErrInvalidPhases, i)
		}
		if !(p.T0 < p.T1) {
			return PhaseTable{}, fmt.Errorf("%w: phase %q is empty or reversed [%.4f, %.4f)",
				ErrInvalidPhases, p.Label, p.T0, p.T1)
		}
		if p.T0 < 0 || p.T1 > 1+boundaryTolerance {
			return PhaseTable{}, fmt.Errorf("%w: phase %q outside [0, 1]", ErrInvalidPhases, p.Label)
		}
		if i > 0 {
			prev := phases[i-1]
			switch {
			case p.T0 > prev.T1+boundaryTolerance:
				return PhaseTable{}, fmt.Errorf("%w: gap between %q and %q", ErrInvalidPhases, prev.Label, p.Label)
			case p.T0 < prev.T1-boundaryTolerance:
				return PhaseTable{}, fmt.Errorf("%w: %q overlaps %q", ErrInvalidPhases, p.Label, prev.Label)
			}
		}
	}

	// Boundaries within tolerance are snapped so the stored table is an exact
	// partition.
	cp := make([]Phase, len(phases))
	copy(cp, phases)
	cp[0].T0 = 0
	for i := 1; i < len(cp); i++ {
		cp[i].T0 = cp[i-1].T1
	}
	cp[len(cp)-1].T1 = 1
	for _, p := range cp {
		if !(p.T0 < p.T1) {
			return PhaseTable{}, fmt.Errorf("%w: phase %q vanishes after boundary snapping", ErrInvalidPhases, p.Label)
		}
	}
	return PhaseTable{phases: cp}, nil
}

// Classify returns the label of the phase containing t. Values at or past the
// last upper bound map to the last phase.
func (pt PhaseTable) Classify(t float64) string {
	i := pt.Index(t)
	if i < 0 {
		return ""
	}
	return pt.phases[i].Label
}

// Index returns the position of the phase containing t, or -1 for an empty
// table.
func (pt PhaseTable) Index(t float64) int {
	if len(pt.phases) > 0 && t < pt.phases[0].T0 {
		return 0
	}
	for i, p := range pt.phases {
		if p.Contains(t) {
			return i
		}
	}
	return len(pt.phases) - 1
}

// Phases returns a copy of the ordered phases.
func (pt PhaseTable) Phases() []Phase {
	out := make([]Phase, len(pt.phases))
	copy(out, pt.phases)
	return out
}

// Len returns the number of phases.
func (pt PhaseTable) Len() int {
	return len(pt.phases)
}
