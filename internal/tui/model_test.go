package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"pomodoro/internal/clock"
	"pomodoro/internal/core/model"
	"pomodoro/internal/core/timekeeper"
	"pomodoro/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

type savedSettings struct {
	saved []model.Settings
	err   error
}

func (store *savedSettings) Save(settings model.Settings) error {
	if store.err != nil {
		return store.err
	}
	store.saved = append(store.saved, settings)
	return nil
}

type fixedSummary struct {
	since time.Time
}

func (history *fixedSummary) Summarize(_ context.Context, since time.Time) (storage.Summary, error) {
	history.since = since
	return storage.Summary{FocusCount: 3, FocusTime: 75 * time.Minute}, nil
}

type harness struct {
	model   *Model
	keeper  *timekeeper.TimeKeeper
	fake    *clock.Fake
	store   *savedSettings
	history *fixedSummary
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := clock.NewFake(testStart)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings := model.DefaultSettings()
	keeper, err := timekeeper.New(settings.TimerConfig(), timekeeper.Options{
		TickInterval: time.Second,
		Clock:        fake,
		Logger:       logger,
	})
	require.NoError(t, err)
	t.Cleanup(keeper.Stop)

	h := &harness{keeper: keeper, fake: fake, store: &savedSettings{}, history: &fixedSummary{}}
	h.model = New(Options{
		Timer:    keeper,
		Settings: settings,
		Store:    h.store,
		History:  h.history,
		Now:      fake.Now,
		Logger:   logger,
	})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	updated, cmd := h.model.Update(msg)
	h.model = updated.(*Model)
	return cmd
}

func runes(value string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func TestModel_ToggleStartsAndPauses(t *testing.T) {
	h := newHarness(t)

	h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, h.keeper.Snapshot().Running)
	assert.True(t, h.model.snapshot.Running)

	h.fake.Advance(3 * time.Second)
	h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	snapshot := h.keeper.Snapshot()
	assert.False(t, snapshot.Running)
	assert.Equal(t, 1497, snapshot.RemainingSeconds)
	assert.Equal(t, snapshot, h.model.snapshot)
}

func TestModel_ResetAndSkip(t *testing.T) {
	h := newHarness(t)

	h.keeper.Start()
	h.fake.Advance(25 * time.Minute)
	require.Equal(t, timekeeper.PhaseShortBreak, h.keeper.Snapshot().Phase)

	h.send(runes("n"))
	assert.Equal(t, timekeeper.PhaseFocus, h.model.snapshot.Phase)
	assert.Equal(t, 1, h.model.snapshot.FocusSinceLongBreak)

	h.send(runes("r"))
	assert.Equal(t, 0, h.model.snapshot.FocusTotal)
	assert.False(t, h.model.snapshot.Running)
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)

	cmd := h.send(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_EventsUpdateSnapshotAndSummary(t *testing.T) {
	h := newHarness(t)
	events := h.keeper.Subscribe(16)
	h.model.options.Events = events

	h.keeper.Start()
	h.fake.Advance(time.Second)

	msg := h.model.waitForEvent()()
	h.send(msg)
	msg = h.model.waitForEvent()()
	h.send(msg)
	assert.Equal(t, 1499, h.model.snapshot.RemainingSeconds)

	advance := timekeeper.Event{
		Type:     timekeeper.EventPhaseAdvance,
		Snapshot: timekeeper.Snapshot{Phase: timekeeper.PhaseShortBreak, Minutes: "05", Seconds: "00", LongBreakAfter: 4},
	}
	cmd := h.send(eventMsg(advance))
	require.NotNil(t, cmd)
	assert.Equal(t, timekeeper.PhaseShortBreak, h.model.snapshot.Phase)

	h.send(h.model.loadSummary()())
	assert.Equal(t, storage.StartOfDay(testStart), h.history.since)
	assert.Contains(t, h.model.View(), "Today: 3 focus sessions, 1h 15m focused")
}

func TestModel_IdlePauseShowsStatus(t *testing.T) {
	h := newHarness(t)

	h.send(eventMsg(timekeeper.Event{Type: timekeeper.EventIdlePause, Message: "paused after 6m0s idle"}))
	assert.Contains(t, h.model.View(), "paused after 6m0s idle")
}

func TestModel_ClosedEventsQuit(t *testing.T) {
	h := newHarness(t)
	events := make(chan timekeeper.Event)
	close(events)
	h.model.options.Events = events

	msg := h.model.waitForEvent()()
	assert.Equal(t, eventsClosedMsg{}, msg)
	cmd := h.send(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_EditSettings(t *testing.T) {
	h := newHarness(t)

	h.send(runes("e"))
	require.NotNil(t, h.model.form)
	assert.Contains(t, h.model.View(), "Settings")

	h.model.form.inputs[fieldFocus].SetValue("50:00")
	h.model.form.inputs[fieldShortBreak].SetValue("0:45")
	h.model.form.inputs[fieldLongBreakAfter].SetValue("2")
	h.model.form.inputs[fieldIdlePause].SetValue("10")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, h.model.form)
	require.Len(t, h.store.saved, 1)
	saved := h.store.saved[0]
	assert.Equal(t, 50*time.Minute, saved.Focus)
	assert.Equal(t, 45*time.Second, saved.ShortBreak)
	assert.Equal(t, 2, saved.LongBreakAfter)
	assert.True(t, saved.IdlePauseEnabled)
	assert.Equal(t, 10*time.Minute, saved.IdlePauseAfter)

	assert.Equal(t, 3000, h.model.snapshot.RemainingSeconds)
	assert.Equal(t, 2, h.keeper.Config().LongBreakAfter)
	assert.Contains(t, h.model.View(), "Settings saved")
}

func TestModel_EditSettingsRejectsInvalid(t *testing.T) {
	h := newHarness(t)

	h.send(runes("e"))
	h.model.form.inputs[fieldFocus].SetValue("0:00")
	h.model.form.inputs[fieldLongBreak].SetValue("soon")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, h.model.form)
	require.Error(t, h.model.form.err)
	assert.Contains(t, h.model.form.err.Error(), "long break")
	assert.Empty(t, h.store.saved)

	h.model.form.inputs[fieldLongBreak].SetValue("15:00")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, h.model.form)
	assert.Equal(t, "focus must be at least one second", h.model.form.err.Error())
	assert.Equal(t, 25*time.Minute, h.keeper.Config().Focus)

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, h.model.form)
}

func TestModel_SaveFailureKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.store.err = errors.New("write settings file: read-only file system")

	h.send(runes("e"))
	h.model.form.inputs[fieldFocus].SetValue("50:00")
	h.model.form.inputs[fieldLongBreakAfter].SetValue("2")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, h.model.form)
	assert.Contains(t, h.model.View(), "read-only file system")

	assert.Equal(t, model.DefaultSettings().TimerConfig(), h.keeper.Config())
	assert.Equal(t, 1500, h.keeper.Snapshot().RemainingSeconds)
	assert.Equal(t, model.DefaultSettings(), h.model.settings)

	h.store.err = nil
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, h.model.form)
	assert.Equal(t, 50*time.Minute, h.keeper.Config().Focus)
}

func TestForm_Navigation(t *testing.T) {
	form := newSettingsForm(model.DefaultSettings())
	assert.Equal(t, fieldFocus, form.focused)

	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldLongBreak, form.focused)

	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	form.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldIdlePause, form.focused)
	assert.Equal(t, "off", form.inputs[fieldIdlePause].Value())

	settings, err := form.Settings(model.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestBullets(t *testing.T) {
	snapshot := timekeeper.Snapshot{FocusSinceLongBreak: 2, LongBreakAfter: 4}
	rendered := Bullets(snapshot, Accent(timekeeper.PhaseFocus))
	assert.Equal(t, 2, strings.Count(rendered, "●"))
	assert.Equal(t, 2, strings.Count(rendered, "○"))
}

func TestBigClock(t *testing.T) {
	rendered := BigClock("10:05")
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, " ██ ███   ███ ███", lines[0])
	assert.Equal(t, "  █ █ █ ▪ █ █ █  ", lines[1])
}
