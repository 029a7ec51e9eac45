package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/core/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldFocus = iota
	fieldShortBreak
	fieldLongBreak
	fieldLongBreakAfter
	fieldIdlePause
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldFocus:          "Focus",
	fieldShortBreak:     "Short break",
	fieldLongBreak:      "Long break",
	fieldLongBreakAfter: "Long break after",
	fieldIdlePause:      "Pause when away",
}

type formAction int

const (
	formEditing formAction = iota
	formSubmitted
	formCancelled
)

// settingsForm edits durations as "MM:SS" text inputs.
type settingsForm struct {
	inputs  [fieldCount]textinput.Model
	focused int
	keys    formKeyMap
	err     error
}

func newSettingsForm(settings model.Settings) *settingsForm {
	form := &settingsForm{keys: defaultFormKeyMap()}

	values := [fieldCount]string{
		fieldFocus:          model.FormatClock(settings.Focus),
		fieldShortBreak:     model.FormatClock(settings.ShortBreak),
		fieldLongBreak:      model.FormatClock(settings.LongBreak),
		fieldLongBreakAfter: strconv.Itoa(settings.LongBreakAfter),
		fieldIdlePause:      "off",
	}
	if settings.IdlePauseEnabled {
		values[fieldIdlePause] = strconv.Itoa(int(settings.IdlePauseAfter / time.Minute))
	}
	placeholders := [fieldCount]string{"MM:SS", "MM:SS", "MM:SS", "sessions", "minutes or off"}

	for index := range form.inputs {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 16
		input.Width = 16
		input.Placeholder = placeholders[index]
		input.SetValue(values[index])
		form.inputs[index] = input
	}
	form.inputs[fieldFocus].Focus()
	return form
}

func (form *settingsForm) Update(msg tea.Msg) (formAction, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, form.keys.Cancel):
			return formCancelled, nil
		case key.Matches(keyMsg, form.keys.Submit):
			return formSubmitted, nil
		case key.Matches(keyMsg, form.keys.Next):
			return formEditing, form.focus((form.focused + 1) % fieldCount)
		case key.Matches(keyMsg, form.keys.Prev):
			return formEditing, form.focus((form.focused + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	form.inputs[form.focused], cmd = form.inputs[form.focused].Update(msg)
	return formEditing, cmd
}

func (form *settingsForm) focus(index int) tea.Cmd {
	form.inputs[form.focused].Blur()
	form.focused = index
	return form.inputs[index].Focus()
}

// Settings applies the form values on top of base. Every unparsable field is
// reported; range checks are left to Settings.Validate.
func (form *settingsForm) Settings(base model.Settings) (model.Settings, error) {
	settings := base
	var errs []error

	durations := []struct {
		field  int
		target *time.Duration
	}{
		{fieldFocus, &settings.Focus},
		{fieldShortBreak, &settings.ShortBreak},
		{fieldLongBreak, &settings.LongBreak},
	}
	for _, entry := range durations {
		value, err := model.ParseClock(form.inputs[entry.field].Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", strings.ToLower(fieldLabels[entry.field]), err))
			continue
		}
		*entry.target = value
	}

	count, err := strconv.Atoi(strings.TrimSpace(form.inputs[fieldLongBreakAfter].Value()))
	if err != nil {
		errs = append(errs, fmt.Errorf("long break after: %q is not a whole number", form.inputs[fieldLongBreakAfter].Value()))
	} else {
		settings.LongBreakAfter = count
	}

	idle := strings.ToLower(strings.TrimSpace(form.inputs[fieldIdlePause].Value()))
	switch idle {
	case "", "off", "0":
		settings.IdlePauseEnabled = false
	default:
		value, err := model.ParseClock(idle)
		if err != nil {
			errs = append(errs, fmt.Errorf("pause when away: %w", err))
			break
		}
		settings.IdlePauseEnabled = true
		settings.IdlePauseAfter = value
	}

	return settings, errors.Join(errs...)
}

func (form *settingsForm) View(styles Styles, helpModel help.Model) string {
	var builder strings.Builder
	builder.WriteString(styles.FormTitle.Render("Settings"))
	builder.WriteString("\n")
	for index := range form.inputs {
		label := styles.Label
		if index == form.focused {
			label = styles.LabelOn
		}
		builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(fieldLabels[index]), form.inputs[index].View()))
		builder.WriteString("\n")
	}
	if form.err != nil {
		builder.WriteString("\n")
		builder.WriteString(styles.Error.Render(form.err.Error()))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	builder.WriteString(helpModel.View(form.keys))
	return builder.String()
}
