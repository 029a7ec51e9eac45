package timekeeper

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"pomodoro/internal/clock"
	"pomodoro/internal/core/model"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Options contains runtime options for TimeKeeper.
type Options struct {
	TickInterval      time.Duration
	IdleCheckInterval time.Duration
	Clock             clock.Clock
	Logger            *slog.Logger
}

// TimeKeeper is the Pomodoro state machine. It counts down against an
// absolute end time and chains focus and break phases on its own.
type TimeKeeper struct {
	mu      sync.Mutex
	config  model.TimerConfig
	options Options
	clock   clock.Clock
	logger  *slog.Logger

	phase      Phase
	remaining  int
	phaseTotal int
	running    bool

	// left is the exact time still owed to the phase; remaining is its
	// ceiling in whole seconds.
	left time.Duration

	focusSinceLongBreak int
	focusTotal          int

	endsAt       time.Time
	phaseStarted time.Time

	// timer is the single outstanding tick; generation invalidates ticks
	// that fired but have not yet acquired the lock.
	timer      clock.Timer
	generation uint64

	idleChecker    IdleChecker
	idlePauseAfter time.Duration
	lastIdleCheck  time.Time

	events  []chan Event
	stopped bool
}

// New creates a TimeKeeper in its initial state: focus phase, full focus
// duration remaining, paused.
func New(config model.TimerConfig, options Options) (*TimeKeeper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if options.TickInterval <= 0 {
		options.TickInterval = 250 * time.Millisecond
	}
	if options.IdleCheckInterval <= 0 {
		options.IdleCheckInterval = 5 * time.Second
	}
	if options.Clock == nil {
		options.Clock = clock.System
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	keeper := &TimeKeeper{
		config:  config,
		options: options,
		clock:   options.Clock,
		logger:  options.Logger,
	}
	keeper.enterPhaseLocked(PhaseFocus, time.Time{})
	return keeper, nil
}

// SetIdleChecker injects an idle checker.
func (keeper *TimeKeeper) SetIdleChecker(checker IdleChecker) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.idleChecker = checker
	keeper.lastIdleCheck = time.Time{}
}

// SetIdlePause pauses a running focus phase once the user has been idle for
// after. Zero disables it.
func (keeper *TimeKeeper) SetIdlePause(after time.Duration) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if after < 0 {
		after = 0
	}
	keeper.idlePauseAfter = after
	keeper.lastIdleCheck = time.Time{}
}

// Subscribe registers a new observer channel. Events are dropped for an
// observer whose buffer is full.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.stopped {
		close(ch)
		return ch
	}
	keeper.events = append(keeper.events, ch)
	return ch
}

// Snapshot returns the current state.
func (keeper *TimeKeeper) Snapshot() Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked()
}

// Config returns the active configuration.
func (keeper *TimeKeeper) Config() model.TimerConfig {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config
}

// Start begins or resumes the countdown. It does nothing while running.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.stopped || keeper.running {
		return
	}

	now := keeper.clock.Now()
	keeper.running = true
	keeper.endsAt = now.Add(keeper.left)
	if keeper.phaseStarted.IsZero() {
		keeper.phaseStarted = now
	}
	keeper.lastIdleCheck = time.Time{}
	keeper.scheduleLocked(now)

	keeper.logger.Debug("timer started", "phase", keeper.phase, "remaining", keeper.remaining)
	keeper.emitLocked(Event{Type: EventStateChange, Snapshot: keeper.snapshotLocked(), At: now})
}

// Pause halts the countdown and keeps the remaining time. Any scheduled tick
// is cancelled before Pause returns.
func (keeper *TimeKeeper) Pause() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.stopped || !keeper.running {
		return
	}

	now := keeper.clock.Now()
	if ended := keeper.pauseLocked(now); ended != nil {
		keeper.emitLocked(Event{Type: EventPhaseAdvance, Snapshot: keeper.snapshotLocked(), Ended: ended, At: now})
	}
	keeper.logger.Debug("timer paused", "phase", keeper.phase, "remaining", keeper.remaining)
	keeper.emitLocked(Event{Type: EventStateChange, Snapshot: keeper.snapshotLocked(), At: now})
}

// Reset cancels any countdown and returns to the initial state.
func (keeper *TimeKeeper) Reset() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.stopped {
		return
	}

	now := keeper.clock.Now()
	keeper.cancelLocked()
	keeper.running = false
	keeper.focusSinceLongBreak = 0
	keeper.focusTotal = 0
	keeper.enterPhaseLocked(PhaseFocus, now)

	keeper.logger.Debug("timer reset")
	keeper.emitLocked(Event{Type: EventStateChange, Snapshot: keeper.snapshotLocked(), At: now})
}

// UpdateConfig replaces the configuration. A paused timer shows the new
// duration of its current phase right away; a running countdown keeps going
// and the new durations apply from the next phase.
func (keeper *TimeKeeper) UpdateConfig(config model.TimerConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.config = config
	if keeper.focusSinceLongBreak > config.LongBreakAfter {
		keeper.focusSinceLongBreak = config.LongBreakAfter
	}
	if !keeper.running {
		keeper.enterPhaseLocked(keeper.phase, time.Time{})
	}

	keeper.logger.Debug("timer config updated",
		"focus", config.Focus,
		"short_break", config.ShortBreak,
		"long_break", config.LongBreak,
		"long_break_after", config.LongBreakAfter,
		"running", keeper.running,
	)
	keeper.emitLocked(Event{Type: EventStateChange, Snapshot: keeper.snapshotLocked(), At: keeper.clock.Now()})
	return nil
}

// SkipBreak ends the current break as if its countdown had run out.
func (keeper *TimeKeeper) SkipBreak() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.stopped || !keeper.phase.IsBreak() {
		return
	}

	now := keeper.clock.Now()
	if keeper.running {
		keeper.left = keeper.leftAtLocked(now)
		keeper.remaining = ceilSeconds(keeper.left)
	}
	ended := keeper.advanceLocked(now, true)
	keeper.emitLocked(Event{Type: EventPhaseAdvance, Snapshot: keeper.snapshotLocked(), Ended: ended, At: now})
}

// Stop cancels scheduled work and closes every observer channel.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	if keeper.stopped {
		keeper.mu.Unlock()
		return
	}
	keeper.stopped = true
	keeper.cancelLocked()
	keeper.running = false
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (keeper *TimeKeeper) tick(generation uint64) {
	keeper.mu.Lock()
	if generation != keeper.generation || !keeper.running || keeper.stopped {
		keeper.mu.Unlock()
		return
	}
	checker := keeper.idleCheckDueLocked(keeper.clock.Now())
	keeper.mu.Unlock()

	// The checker may block on the platform, so it runs without the lock.
	var (
		idle    time.Duration
		idleErr error
	)
	if checker != nil {
		idle, idleErr = checker.IdleDuration()
	}

	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if generation != keeper.generation || !keeper.running || keeper.stopped {
		return
	}
	keeper.timer = nil

	now := keeper.clock.Now()
	if checker != nil && keeper.applyIdleLocked(now, idle, idleErr) {
		return
	}

	if ended := keeper.syncLocked(now); ended != nil {
		keeper.emitLocked(Event{Type: EventPhaseAdvance, Snapshot: keeper.snapshotLocked(), Ended: ended, At: now})
	} else {
		keeper.emitLocked(Event{Type: EventProgress, Snapshot: keeper.snapshotLocked(), At: now})
	}
	keeper.scheduleLocked(now)
}

// idleCheckDueLocked returns the checker when a running focus phase is due
// for an idle check, or nil.
func (keeper *TimeKeeper) idleCheckDueLocked(now time.Time) IdleChecker {
	if keeper.idleChecker == nil || keeper.idlePauseAfter <= 0 || keeper.phase != PhaseFocus {
		return nil
	}
	if !keeper.lastIdleCheck.IsZero() && now.Sub(keeper.lastIdleCheck) < keeper.options.IdleCheckInterval {
		return nil
	}
	keeper.lastIdleCheck = now
	return keeper.idleChecker
}

// applyIdleLocked pauses a running focus phase when the user has been idle
// long enough. It reports whether the timer was paused.
func (keeper *TimeKeeper) applyIdleLocked(now time.Time, idle time.Duration, err error) bool {
	if keeper.idlePauseAfter <= 0 || keeper.phase != PhaseFocus {
		return false
	}
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			keeper.idlePauseAfter = 0
		}
		keeper.logger.Warn("idle check failed", "error", err)
		keeper.emitLocked(Event{
			Type:     EventIdleError,
			Snapshot: keeper.snapshotLocked(),
			Message:  err.Error(),
			At:       now,
		})
		return false
	}
	if idle < keeper.idlePauseAfter {
		return false
	}

	ended := keeper.pauseLocked(now)
	if ended != nil {
		keeper.emitLocked(Event{Type: EventPhaseAdvance, Snapshot: keeper.snapshotLocked(), Ended: ended, At: now})
	}
	keeper.logger.Info("timer paused after idle", "idle", idle)
	keeper.emitLocked(Event{
		Type:     EventIdlePause,
		Snapshot: keeper.snapshotLocked(),
		Message:  "paused after " + idle.Truncate(time.Second).String() + " idle",
		At:       now,
	})
	return true
}

func (keeper *TimeKeeper) pauseLocked(now time.Time) *PhaseRecord {
	keeper.cancelLocked()
	keeper.running = false
	ended := keeper.syncLocked(now)
	keeper.endsAt = time.Time{}
	return ended
}

// syncLocked recomputes the time left from the end time and advances the
// phase when the countdown has reached zero.
func (keeper *TimeKeeper) syncLocked(now time.Time) *PhaseRecord {
	keeper.left = keeper.leftAtLocked(now)
	keeper.remaining = ceilSeconds(keeper.left)
	if keeper.left > 0 {
		return nil
	}
	return keeper.advanceLocked(now, false)
}

// leftAtLocked is clamped to [0, phase duration] so a clock moving backward
// never adds time.
func (keeper *TimeKeeper) leftAtLocked(now time.Time) time.Duration {
	left := keeper.endsAt.Sub(now)
	if left <= 0 {
		return 0
	}
	if total := seconds(keeper.phaseTotal); left > total {
		return total
	}
	return left
}

// advanceLocked finishes the current phase and enters the next one.
func (keeper *TimeKeeper) advanceLocked(now time.Time, skipped bool) *PhaseRecord {
	ended := &PhaseRecord{
		Phase:     keeper.phase,
		Duration:  seconds(keeper.phaseTotal - keeper.remaining),
		StartedAt: keeper.phaseStarted,
		EndedAt:   now,
		Skipped:   skipped,
	}

	var next Phase
	switch keeper.phase {
	case PhaseFocus:
		keeper.focusTotal++
		keeper.focusSinceLongBreak++
		// Compared after the increment: the Nth focus session since the last
		// long break is followed by the long break.
		if keeper.focusSinceLongBreak >= keeper.config.LongBreakAfter {
			keeper.focusSinceLongBreak = keeper.config.LongBreakAfter
			next = PhaseLongBreak
		} else {
			next = PhaseShortBreak
		}
	case PhaseShortBreak:
		next = PhaseFocus
	case PhaseLongBreak:
		next = PhaseFocus
		keeper.focusSinceLongBreak = 0
	default:
		next = PhaseFocus
	}

	keeper.enterPhaseLocked(next, now)
	keeper.logger.Debug("phase advanced",
		"ended", ended.Phase,
		"next", next,
		"skipped", skipped,
		"focus_since_long_break", keeper.focusSinceLongBreak,
		"focus_total", keeper.focusTotal,
	)
	return ended
}

func (keeper *TimeKeeper) enterPhaseLocked(phase Phase, now time.Time) {
	keeper.phase = phase
	keeper.phaseTotal = int(keeper.durationFor(phase) / time.Second)
	keeper.remaining = keeper.phaseTotal
	keeper.left = seconds(keeper.phaseTotal)
	if keeper.running {
		keeper.endsAt = now.Add(keeper.left)
		keeper.phaseStarted = now
		return
	}
	keeper.endsAt = time.Time{}
	keeper.phaseStarted = time.Time{}
}

func (keeper *TimeKeeper) durationFor(phase Phase) time.Duration {
	switch phase {
	case PhaseShortBreak:
		return keeper.config.ShortBreak
	case PhaseLongBreak:
		return keeper.config.LongBreak
	default:
		return keeper.config.Focus
	}
}

func (keeper *TimeKeeper) scheduleLocked(now time.Time) {
	keeper.cancelLocked()
	delay := keeper.options.TickInterval
	if untilEnd := keeper.endsAt.Sub(now); untilEnd > 0 && untilEnd < delay {
		delay = untilEnd
	}
	generation := keeper.generation
	keeper.timer = keeper.clock.AfterFunc(delay, func() {
		keeper.tick(generation)
	})
}

func (keeper *TimeKeeper) cancelLocked() {
	if keeper.timer != nil {
		keeper.timer.Stop()
		keeper.timer = nil
	}
	keeper.generation++
}

func (keeper *TimeKeeper) snapshotLocked() Snapshot {
	minutes, secs := FormatClock(keeper.remaining)
	progress := 0.0
	if keeper.phaseTotal > 0 {
		progress = float64(keeper.phaseTotal-keeper.remaining) / float64(keeper.phaseTotal)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return Snapshot{
		Phase:               keeper.phase,
		RemainingSeconds:    keeper.remaining,
		Minutes:             minutes,
		Seconds:             secs,
		Running:             keeper.running,
		FocusSinceLongBreak: keeper.focusSinceLongBreak,
		FocusTotal:          keeper.focusTotal,
		LongBreakAfter:      keeper.config.LongBreakAfter,
		Progress:            progress,
	}
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func seconds(count int) time.Duration {
	return time.Duration(count) * time.Second
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
