package preferences

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings model.Settings
	onSave   func(model.Settings) error

	focus      clockFields
	shortBreak clockFields
	longBreak  clockFields

	longBreakAfter *widget.Entry
	idleCheck      *widget.Check
	idleMinutes    *widget.Entry
	errorLabel     *widget.Label
	saveButton     *widget.Button
	cancelButton   *widget.Button
}

type clockFields struct {
	minutes *widget.Entry
	seconds *widget.Entry
}

func newClockFields() clockFields {
	return clockFields{minutes: widget.NewEntry(), seconds: widget.NewEntry()}
}

func (fields clockFields) set(value time.Duration) {
	minutes, seconds := model.SplitClock(value)
	fields.minutes.SetText(strconv.Itoa(minutes))
	fields.seconds.SetText(fmt.Sprintf("%02d", seconds))
}

func (fields clockFields) row(title string) fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel(title),
		layout.NewSpacer(),
		fields.minutes,
		widget.NewLabel("min"),
		fields.seconds,
		widget.NewLabel("sec"),
	)
}

// New creates a preferences window. onSave receives validated settings; an
// error it returns is shown and keeps the window open.
func New(app fyne.App, settings model.Settings, onSave func(model.Settings) error) *Window {
	window := app.NewWindow("Pomodoro Settings")

	prefs := &Window{
		window:     window,
		settings:   settings,
		onSave:     onSave,
		focus:      newClockFields(),
		shortBreak: newClockFields(),
		longBreak:  newClockFields(),

		longBreakAfter: widget.NewEntry(),
		idleMinutes:    widget.NewEntry(),
		errorLabel:     widget.NewLabel(""),
	}
	prefs.idleCheck = widget.NewCheck("Pause focus when I'm away", func(checked bool) {
		if checked {
			prefs.idleMinutes.Enable()
		} else {
			prefs.idleMinutes.Disable()
		}
	})
	prefs.errorLabel.Wrapping = fyne.TextWrapWord
	prefs.errorLabel.Importance = widget.DangerImportance
	prefs.errorLabel.Hide()

	form := container.NewVBox(
		widget.NewLabelWithStyle("Durations", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.focus.row("Focus"),
		prefs.shortBreak.row("Short break"),
		prefs.longBreak.row("Long break"),
		container.NewHBox(widget.NewLabel("Long break after"), layout.NewSpacer(), prefs.longBreakAfter, widget.NewLabel("sessions")),
		widget.NewSeparator(),
		prefs.idleCheck,
		container.NewHBox(widget.NewLabel("Away for"), layout.NewSpacer(), prefs.idleMinutes, widget.NewLabel("min")),
		prefs.errorLabel,
	)

	prefs.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), prefs.handleSave)
	prefs.saveButton.Importance = widget.HighImportance
	prefs.cancelButton = widget.NewButton("Cancel", func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	})
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), prefs.cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(440, 380))

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	prefs.settings = settings
	prefs.focus.set(settings.Focus)
	prefs.shortBreak.set(settings.ShortBreak)
	prefs.longBreak.set(settings.LongBreak)
	prefs.longBreakAfter.SetText(strconv.Itoa(settings.LongBreakAfter))
	prefs.idleMinutes.SetText(strconv.Itoa(int(settings.IdlePauseAfter / time.Minute)))
	prefs.idleCheck.SetChecked(settings.IdlePauseEnabled)
	if settings.IdlePauseEnabled {
		prefs.idleMinutes.Enable()
	} else {
		prefs.idleMinutes.Disable()
	}
	prefs.showError(nil)
}

func (prefs *Window) handleSave() {
	settings, err := prefs.readForm()
	if err == nil {
		err = settings.Validate()
	}
	if err == nil && prefs.onSave != nil {
		err = prefs.onSave(settings)
	}
	if err != nil {
		prefs.showError(err)
		return
	}

	prefs.settings = settings
	prefs.showError(nil)
	prefs.window.Hide()
}

func (prefs *Window) readForm() (model.Settings, error) {
	settings := prefs.settings
	var errs []error

	read := func(name string, fields clockFields) time.Duration {
		value, err := parseClockFields(fields.minutes.Text, fields.seconds.Text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return value
	}
	settings.Focus = read("focus", prefs.focus)
	settings.ShortBreak = read("short break", prefs.shortBreak)
	settings.LongBreak = read("long break", prefs.longBreak)

	if count, err := parseWhole(prefs.longBreakAfter.Text); err != nil {
		errs = append(errs, fmt.Errorf("long break after: %w", err))
	} else {
		settings.LongBreakAfter = count
	}

	settings.IdlePauseEnabled = prefs.idleCheck.Checked
	if settings.IdlePauseEnabled {
		if minutes, err := parseWhole(prefs.idleMinutes.Text); err != nil {
			errs = append(errs, fmt.Errorf("away for: %w", err))
		} else {
			settings.IdlePauseAfter = time.Duration(minutes) * time.Minute
		}
	}

	return settings, errors.Join(errs...)
}

func (prefs *Window) showError(err error) {
	if err == nil {
		prefs.errorLabel.SetText("")
		prefs.errorLabel.Hide()
		return
	}
	prefs.errorLabel.SetText(model.DescribeError(err))
	prefs.errorLabel.Show()
}

func parseClockFields(minutesText, secondsText string) (time.Duration, error) {
	minutes, err := parseWhole(minutesText)
	if err != nil {
		return 0, fmt.Errorf("minutes: %w", err)
	}
	seconds := 0
	if strings.TrimSpace(secondsText) != "" {
		seconds, err = parseWhole(secondsText)
		if err != nil {
			return 0, fmt.Errorf("seconds: %w", err)
		}
	}
	return model.JoinClock(minutes, seconds)
}

func parseWhole(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", strings.TrimSpace(value))
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%d must not be negative", parsed)
	}
	return parsed, nil
}
