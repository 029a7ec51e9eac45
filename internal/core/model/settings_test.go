package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	require.NoError(t, settings.Validate())
	assert.Equal(t, 25*time.Minute, settings.Focus)
	assert.Equal(t, 5*time.Minute, settings.ShortBreak)
	assert.Equal(t, 15*time.Minute, settings.LongBreak)
	assert.Equal(t, 4, settings.LongBreakAfter)
	assert.False(t, settings.IdlePauseEnabled)
	assert.Zero(t, settings.IdlePause())
}

func TestSettings_TimerConfigTruncatesToSeconds(t *testing.T) {
	settings := DefaultSettings()
	settings.Focus = 90*time.Second + 700*time.Millisecond

	config := settings.TimerConfig()

	assert.Equal(t, 90*time.Second, config.Focus)
	require.NoError(t, config.Validate())
}

func TestSettings_ValidateJoinsViolations(t *testing.T) {
	settings := Settings{
		Focus:            0,
		ShortBreak:       5 * time.Minute,
		LongBreak:        200 * time.Minute,
		LongBreakAfter:   0,
		IdlePauseEnabled: true,
		IdlePauseAfter:   10 * time.Second,
	}

	err := settings.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "focus")
	assert.Contains(t, err.Error(), "long break must be under")
	assert.Contains(t, err.Error(), "long break after")
	assert.Contains(t, err.Error(), "idle pause")
	assert.NotContains(t, err.Error(), "short break")
}

func TestSettings_IdlePauseIgnoredWhenDisabled(t *testing.T) {
	settings := DefaultSettings()
	settings.IdlePauseAfter = 0

	assert.NoError(t, settings.Validate())
}

func TestTimerConfig_Validate(t *testing.T) {
	valid := TimerConfig{Focus: time.Second, ShortBreak: time.Second, LongBreak: time.Second, LongBreakAfter: 1}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*TimerConfig)
	}{
		{"zero focus", func(c *TimerConfig) { c.Focus = 0 }},
		{"sub-second short break", func(c *TimerConfig) { c.ShortBreak = 500 * time.Millisecond }},
		{"negative long break", func(c *TimerConfig) { c.LongBreak = -time.Minute }},
		{"zero long break after", func(c *TimerConfig) { c.LongBreakAfter = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"25:00", 25 * time.Minute, false},
		{"04:30", 4*time.Minute + 30*time.Second, false},
		{"15", 15 * time.Minute, false},
		{"90s", 90 * time.Second, false},
		{"1h", time.Hour, false},
		{" 5:07 ", 5*time.Minute + 7*time.Second, false},
		{"5:60", 0, true},
		{"-1:00", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"-5m", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitAndFormatClock(t *testing.T) {
	minutes, seconds := SplitClock(25*time.Minute + 9*time.Second)
	assert.Equal(t, 25, minutes)
	assert.Equal(t, 9, seconds)

	assert.Equal(t, "05:03", FormatClock(5*time.Minute+3*time.Second))
	assert.Equal(t, "00:00", FormatClock(-time.Second))
	assert.Equal(t, "120:00", FormatClock(2*time.Hour))
}

func TestDescribeError(t *testing.T) {
	settings := DefaultSettings()
	settings.Focus = 0
	settings.LongBreakAfter = 13

	assert.Equal(t,
		"focus must be at least one second\nlong break after must be between 1 and 12, got 13",
		DescribeError(settings.Validate()))
	assert.Empty(t, DescribeError(nil))
}
