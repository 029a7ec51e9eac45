package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig indicates a timer configuration with a non-positive value.
var ErrInvalidConfig = errors.New("invalid timer config")

// TimerConfig contains the durations and cycle length of the Pomodoro timer.
type TimerConfig struct {
	Focus      time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration

	// LongBreakAfter is the number of focus phases before a long break.
	LongBreakAfter int
}

// Validate reports whether every value is positive. Durations are counted in
// whole seconds, so anything below one second is rejected.
func (config TimerConfig) Validate() error {
	if config.Focus < time.Second {
		return fmt.Errorf("%w: focus duration %s", ErrInvalidConfig, config.Focus)
	}
	if config.ShortBreak < time.Second {
		return fmt.Errorf("%w: short break duration %s", ErrInvalidConfig, config.ShortBreak)
	}
	if config.LongBreak < time.Second {
		return fmt.Errorf("%w: long break duration %s", ErrInvalidConfig, config.LongBreak)
	}
	if config.LongBreakAfter <= 0 {
		return fmt.Errorf("%w: long break after %d sessions", ErrInvalidConfig, config.LongBreakAfter)
	}
	return nil
}
