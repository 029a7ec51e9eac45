package preferences

import (
	"errors"
	"testing"
	"time"

	"pomodoro/internal/core/model"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T, onSave func(model.Settings) error) *Window {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	return New(app, model.DefaultSettings(), onSave)
}

func TestWindow_ShowsSettings(t *testing.T) {
	prefs := newTestWindow(t, nil)

	assert.Equal(t, "25", prefs.focus.minutes.Text)
	assert.Equal(t, "00", prefs.focus.seconds.Text)
	assert.Equal(t, "15", prefs.longBreak.minutes.Text)
	assert.Equal(t, "4", prefs.longBreakAfter.Text)
	assert.False(t, prefs.idleCheck.Checked)
	assert.True(t, prefs.idleMinutes.Disabled())
}

func TestWindow_SaveValidSettings(t *testing.T) {
	var saved []model.Settings
	prefs := newTestWindow(t, func(settings model.Settings) error {
		saved = append(saved, settings)
		return nil
	})

	prefs.focus.minutes.SetText("50")
	prefs.focus.seconds.SetText("30")
	prefs.shortBreak.minutes.SetText("0")
	prefs.shortBreak.seconds.SetText("45")
	prefs.longBreakAfter.SetText(" 3 ")
	prefs.idleCheck.SetChecked(true)
	prefs.idleMinutes.SetText("10")

	test.Tap(prefs.saveButton)

	require.Len(t, saved, 1)
	assert.Equal(t, model.Settings{
		Focus:            50*time.Minute + 30*time.Second,
		ShortBreak:       45 * time.Second,
		LongBreak:        15 * time.Minute,
		LongBreakAfter:   3,
		IdlePauseEnabled: true,
		IdlePauseAfter:   10 * time.Minute,
	}, saved[0])
	assert.False(t, prefs.errorLabel.Visible())
}

func TestWindow_InvalidInputShowsErrors(t *testing.T) {
	calls := 0
	prefs := newTestWindow(t, func(model.Settings) error {
		calls++
		return nil
	})

	prefs.focus.minutes.SetText("0")
	prefs.focus.seconds.SetText("0")
	prefs.shortBreak.seconds.SetText("75")
	prefs.longBreakAfter.SetText("13")

	test.Tap(prefs.saveButton)

	assert.Zero(t, calls)
	assert.True(t, prefs.errorLabel.Visible())
	assert.Contains(t, prefs.errorLabel.Text, "short break")
	assert.NotContains(t, prefs.errorLabel.Text, model.ErrInvalidConfig.Error())

	prefs.shortBreak.seconds.SetText("00")
	test.Tap(prefs.saveButton)
	assert.Zero(t, calls)
	assert.Contains(t, prefs.errorLabel.Text, "focus must be at least one second")
	assert.Contains(t, prefs.errorLabel.Text, "long break after must be between 1 and 12")
}

func TestWindow_SaveFailureKeepsWindowState(t *testing.T) {
	prefs := newTestWindow(t, func(model.Settings) error {
		return errors.New("write settings file: permission denied")
	})

	prefs.focus.minutes.SetText("30")
	test.Tap(prefs.saveButton)

	assert.True(t, prefs.errorLabel.Visible())
	assert.Contains(t, prefs.errorLabel.Text, "permission denied")
	assert.Equal(t, 25*time.Minute, prefs.settings.Focus)

	test.Tap(prefs.cancelButton)
	assert.Equal(t, "25", prefs.focus.minutes.Text)
	assert.False(t, prefs.errorLabel.Visible())
}

func TestParseClockFields(t *testing.T) {
	value, err := parseClockFields("4", "")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Minute, value)

	_, err = parseClockFields("x", "0")
	assert.Error(t, err)
	_, err = parseClockFields("-1", "0")
	assert.Error(t, err)
	_, err = parseClockFields("1", "60")
	assert.Error(t, err)
}
