// Package state holds the simulation clock and the flight event journal.
package state

import (
	"sync"
	"time"
)

// EventType represents the type of flight event.
type EventType string

const (
	EventPhaseChange EventType = "PHASE_CHANGE"
	EventPaused      EventType = "PAUSED"
	EventResumed     EventType = "RESUMED"
	EventArrived     EventType = "ARRIVED"
	EventRestart     EventType = "RESTART"
	EventSpeedChange EventType = "SPEED_CHANGE"
	EventCameraMode  EventType = "CAMERA_MODE"
)

// Event is a notable change in the flight.
type Event struct {
	Type     EventType     `json:"type"`
	At       time.Duration `json:"at"`
	Progress float64       `json:"progress"`
	Phase    string        `json:"phase,omitempty"`
	Detail   string        `json:"detail,omitempty"`
}

// DefaultJournalSize is the number of events kept when none is configured.
const DefaultJournalSize = 50

// Journal is a fixed-size ring buffer of events. Safe for concurrent use so
// that a metrics or export reader can snapshot it while the frame loop writes.
type Journal struct {
	mu sync.RWMutex

	events  []Event
	max     int
	writeAt int
	total   int
}

// NewJournal creates a journal holding the last size events.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Journal{
		max:    size,
		events: make([]Event, 0, size),
	}
}

// Add appends an event, overwriting the oldest once full.
func (j *Journal) Add(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.total++
	if len(j.events) < j.max {
		j.events = append(j.events, e)
		return
	}
	j.events[j.writeAt] = e
	j.writeAt = (j.writeAt + 1) % j.max
}

// Events returns the retained events in chronological order.
func (j *Journal) Events() []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.ordered()
}

// Recent returns the last n events.
func (j *Journal) Recent(n int) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	all := j.ordered()
	if n < 0 {
		n = 0
	}
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Len returns the number of retained events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}

// Total returns the number of events ever added, including overwritten ones.
func (j *Journal) Total() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.total
}

// Reset drops all events.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = j.events[:0]
	j.writeAt = 0
	j.total = 0
}

func (j *Journal) ordered() []Event {
	if len(j.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(j.events) < j.max {
		result := make([]Event, len(j.events))
		copy(result, j.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, j.max)
	for i := 0; i < j.max; i++ {
		result[i] = j.events[(j.writeAt+i)%j.max]
	}
	return result
}
