package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Limits for user-editable settings.
const (
	MaxPhaseMinutes     = 180
	MaxLongBreakAfter   = 12
	MaxIdlePauseMinutes = 120
)

// Settings defines editable user preferences.
type Settings struct {
	Focus          time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakAfter int

	IdlePauseEnabled bool
	IdlePauseAfter   time.Duration
}

// DefaultSettings returns the classic 25/5/15 schedule with a long break
// every fourth session.
func DefaultSettings() Settings {
	return Settings{
		Focus:            25 * time.Minute,
		ShortBreak:       5 * time.Minute,
		LongBreak:        15 * time.Minute,
		LongBreakAfter:   4,
		IdlePauseEnabled: false,
		IdlePauseAfter:   5 * time.Minute,
	}
}

// TimerConfig converts settings to the engine configuration.
func (settings Settings) TimerConfig() TimerConfig {
	return TimerConfig{
		Focus:          settings.Focus.Truncate(time.Second),
		ShortBreak:     settings.ShortBreak.Truncate(time.Second),
		LongBreak:      settings.LongBreak.Truncate(time.Second),
		LongBreakAfter: settings.LongBreakAfter,
	}
}

// IdlePause returns the idle threshold, or zero when idle pausing is off.
func (settings Settings) IdlePause() time.Duration {
	if !settings.IdlePauseEnabled {
		return 0
	}
	return settings.IdlePauseAfter
}

// Validate checks every field against its allowed range and returns all
// violations joined together.
func (settings Settings) Validate() error {
	var errs []error
	errs = append(errs, validatePhase("focus", settings.Focus))
	errs = append(errs, validatePhase("short break", settings.ShortBreak))
	errs = append(errs, validatePhase("long break", settings.LongBreak))
	if settings.LongBreakAfter < 1 || settings.LongBreakAfter > MaxLongBreakAfter {
		errs = append(errs, fmt.Errorf("%w: long break after must be between 1 and %d, got %d",
			ErrInvalidConfig, MaxLongBreakAfter, settings.LongBreakAfter))
	}
	if settings.IdlePauseEnabled {
		if settings.IdlePauseAfter < time.Minute || settings.IdlePauseAfter > MaxIdlePauseMinutes*time.Minute {
			errs = append(errs, fmt.Errorf("%w: idle pause must be between 1 and %d minutes, got %s",
				ErrInvalidConfig, MaxIdlePauseMinutes, settings.IdlePauseAfter))
		}
	}
	return errors.Join(errs...)
}

func validatePhase(name string, value time.Duration) error {
	if value < time.Second {
		return fmt.Errorf("%w: %s must be at least one second", ErrInvalidConfig, name)
	}
	if value >= (MaxPhaseMinutes+1)*time.Minute {
		return fmt.Errorf("%w: %s must be under %d minutes", ErrInvalidConfig, name, MaxPhaseMinutes+1)
	}
	return nil
}

// DescribeError renders a validation error one problem per line without the
// ErrInvalidConfig prefix.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(err.Error(), "\n")
	for index, line := range lines {
		lines[index] = strings.TrimPrefix(line, ErrInvalidConfig.Error()+": ")
	}
	return strings.Join(lines, "\n")
}

// SplitClock splits a duration into whole minutes and remaining seconds.
func SplitClock(value time.Duration) (int, int) {
	if value < 0 {
		value = 0
	}
	total := int(value / time.Second)
	return total / 60, total % 60
}

// JoinClock builds a duration from minutes and seconds, rejecting seconds
// outside 0-59 and negative minutes.
func JoinClock(minutes, seconds int) (time.Duration, error) {
	if minutes < 0 {
		return 0, fmt.Errorf("minutes must not be negative, got %d", minutes)
	}
	if seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("seconds must be between 0 and 59, got %d", seconds)
	}
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
}

// ParseClock parses "MM:SS", a bare minute count, or a Go duration string
// such as "25m" or "90s".
func ParseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty duration")
	}

	if minutesPart, secondsPart, found := strings.Cut(value, ":"); found {
		minutes, err := strconv.Atoi(minutesPart)
		if err != nil {
			return 0, fmt.Errorf("parse minutes %q: %w", minutesPart, err)
		}
		seconds, err := strconv.Atoi(secondsPart)
		if err != nil {
			return 0, fmt.Errorf("parse seconds %q: %w", secondsPart, err)
		}
		return JoinClock(minutes, seconds)
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return JoinClock(minutes, 0)
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %s", parsed)
	}
	return parsed, nil
}

// FormatClock renders a duration as zero-padded "MM:SS".
func FormatClock(value time.Duration) string {
	minutes, seconds := SplitClock(value)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
