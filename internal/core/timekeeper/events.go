package timekeeper

import (
	"fmt"
	"time"
)

// Phase represents the current countdown mode.
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Label returns the human readable session name.
func (phase Phase) Label() string {
	switch phase {
	case PhaseFocus:
		return "Focus Session"
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return string(phase)
	}
}

// IsBreak reports whether the phase is a short or long break.
func (phase Phase) IsBreak() bool {
	return phase == PhaseShortBreak || phase == PhaseLongBreak
}

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange  EventType = "state_change"
	EventProgress     EventType = "progress"
	EventPhaseAdvance EventType = "phase_advance"
	EventIdlePause    EventType = "idle_pause"
	EventIdleError    EventType = "idle_error"
)

// Snapshot is a read-only view of the timer state.
type Snapshot struct {
	Phase            Phase
	RemainingSeconds int
	Minutes          string
	Seconds          string
	Running          bool

	FocusSinceLongBreak int
	FocusTotal          int
	LongBreakAfter      int

	// Progress is the elapsed fraction of the current phase.
	Progress float64
}

// Clock returns the remaining time as "MM:SS".
func (snapshot Snapshot) Clock() string {
	return snapshot.Minutes + ":" + snapshot.Seconds
}

// PhaseRecord describes a phase that has just finished.
type PhaseRecord struct {
	Phase     Phase
	Duration  time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	Skipped   bool
}

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Ended    *PhaseRecord
	Message  string
	At       time.Time
}

// FormatClock splits whole seconds into zero-padded minute and second parts.
func FormatClock(seconds int) (string, string) {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d", seconds/60), fmt.Sprintf("%02d", seconds%60)
}
