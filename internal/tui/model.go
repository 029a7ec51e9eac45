// Package tui is the terminal shell around the timer engine.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pomodoro/internal/core/model"
	"pomodoro/internal/core/timekeeper"
	"pomodoro/internal/storage"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Timer is the part of the engine the terminal UI drives.
type Timer interface {
	Start()
	Pause()
	Reset()
	SkipBreak()
	Snapshot() timekeeper.Snapshot
	UpdateConfig(config model.TimerConfig) error
	SetIdlePause(after time.Duration)
}

// SettingsSaver persists edited settings.
type SettingsSaver interface {
	Save(settings model.Settings) error
}

// Summarizer reports journal totals.
type Summarizer interface {
	Summarize(ctx context.Context, since time.Time) (storage.Summary, error)
}

// Options wires the model to its collaborators. History may be nil.
type Options struct {
	Timer    Timer
	Events   <-chan timekeeper.Event
	Settings model.Settings
	Store    SettingsSaver
	History  Summarizer
	Now      func() time.Time
	Logger   *slog.Logger
}

type eventMsg timekeeper.Event

type eventsClosedMsg struct{}

type summaryMsg struct {
	summary storage.Summary
	err     error
}

// Model is the bubbletea model for the timer screen and settings form.
type Model struct {
	options  Options
	snapshot timekeeper.Snapshot
	settings model.Settings

	summary    storage.Summary
	hasSummary bool
	status     string

	keys     keyMap
	help     help.Model
	progress progress.Model
	styles   Styles
	form     *settingsForm
	width    int
}

// New creates the terminal model.
func New(options Options) *Model {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Model{
		options:  options,
		snapshot: options.Timer.Snapshot(),
		settings: options.Settings,
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(36)),
		styles:   NewStyles(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.loadSummary())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = clamp(msg.Width-12, 10, 60)
		return m, nil

	case eventMsg:
		return m, tea.Batch(m.handleEvent(timekeeper.Event(msg)), m.waitForEvent())

	case eventsClosedMsg:
		return m, tea.Quit

	case summaryMsg:
		if msg.err != nil {
			m.options.Logger.Warn("load summary failed", "error", msg.err)
			return m, nil
		}
		m.summary = msg.summary
		m.hasSummary = true
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			return m, m.updateForm(msg)
		}
		return m, m.handleKey(msg)
	}

	if m.form != nil {
		return m, m.updateForm(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(event timekeeper.Event) tea.Cmd {
	m.snapshot = event.Snapshot
	switch event.Type {
	case timekeeper.EventPhaseAdvance:
		m.status = ""
		return m.loadSummary()
	case timekeeper.EventIdlePause:
		m.status = event.Message
	case timekeeper.EventIdleError:
		m.status = "Idle detection unavailable: " + event.Message
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	timer := m.options.Timer
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.snapshot.Running {
			timer.Pause()
		} else {
			m.status = ""
			timer.Start()
		}
	case key.Matches(msg, m.keys.Reset):
		m.status = ""
		timer.Reset()
	case key.Matches(msg, m.keys.Skip):
		timer.SkipBreak()
	case key.Matches(msg, m.keys.Edit):
		m.form = newSettingsForm(m.settings)
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	default:
		return nil
	}
	m.snapshot = timer.Snapshot()
	return nil
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	action, cmd := m.form.Update(msg)
	switch action {
	case formCancelled:
		m.form = nil
	case formSubmitted:
		if err := m.applyForm(); err != nil {
			m.form.err = err
			return nil
		}
		m.form = nil
		m.status = "Settings saved"
	}
	return cmd
}

func (m *Model) applyForm() error {
	settings, err := m.form.Settings(m.settings)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return errors.New(model.DescribeError(err))
	}
	// Persist first so a failed save leaves the running timer untouched.
	if m.options.Store != nil {
		if err := m.options.Store.Save(settings); err != nil {
			m.options.Logger.Error("save settings failed", "error", err)
			return err
		}
	}
	if err := m.options.Timer.UpdateConfig(settings.TimerConfig()); err != nil {
		return err
	}
	m.options.Timer.SetIdlePause(settings.IdlePause())
	m.settings = settings
	m.snapshot = m.options.Timer.Snapshot()
	return nil
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.options.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m *Model) loadSummary() tea.Cmd {
	history := m.options.History
	if history == nil {
		return nil
	}
	since := storage.StartOfDay(m.options.Now())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		summary, err := history.Summarize(ctx, since)
		return summaryMsg{summary: summary, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.form != nil {
		return m.styles.Frame.Render(m.form.View(m.styles, m.help))
	}

	snapshot := m.snapshot
	accent := Accent(snapshot.Phase)

	phase := m.styles.Phase.Render(snapshot.Phase.Label())
	if !snapshot.Running {
		phase += " " + m.styles.Paused.Render("paused")
	}

	lines := []string{
		Bullets(snapshot, accent),
		"",
		lipgloss.NewStyle().Foreground(accent).Bold(true).Render(BigClock(snapshot.Clock())),
		"",
		phase,
		m.progress.ViewAs(snapshot.Progress),
	}
	if m.hasSummary {
		lines = append(lines, "", m.styles.Summary.Render("Today: "+m.summary.String()))
	}
	if m.status != "" {
		lines = append(lines, m.styles.Status.Render(m.status))
	}
	lines = append(lines, "", m.help.View(m.keys))

	return m.styles.Frame.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// Bullets renders one dot per focus session in the cycle, filled for the ones
// completed since the last long break.
func Bullets(snapshot timekeeper.Snapshot, accent lipgloss.Color) string {
	filled := lipgloss.NewStyle().Foreground(accent)
	empty := lipgloss.NewStyle().Foreground(colorSurface)
	dots := make([]string, 0, snapshot.LongBreakAfter)
	for index := 0; index < snapshot.LongBreakAfter; index++ {
		if index < snapshot.FocusSinceLongBreak {
			dots = append(dots, filled.Render("●"))
		} else {
			dots = append(dots, empty.Render("○"))
		}
	}
	return strings.Join(dots, " ")
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
