package timerview

import (
	"image/color"

	"pomodoro/internal/core/timekeeper"
	"pomodoro/internal/storage"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines timer window action handlers.
type Callbacks struct {
	OnStart    func()
	OnPause    func()
	OnReset    func()
	OnSkip     func()
	OnSettings func()
	// OnClose runs instead of closing the window when set.
	OnClose func()
}

// Window shows the countdown with its controls.
type Window struct {
	window    fyne.Window
	callbacks Callbacks

	background *canvas.Rectangle
	bullets    *fyne.Container
	clockText  *canvas.Text
	phaseText  *canvas.Text
	progress   *widget.ProgressBar
	summary    *widget.Label

	startButton *widget.Button
	pauseButton *widget.Button
	resetButton *widget.Button
	skipButton  *widget.Button

	bulletCount int
}

const (
	clockTextSize = 72
	phaseTextSize = 20
	bulletSide    = 14
)

var (
	focusColor      = color.NRGBA{R: 224, G: 73, B: 59, A: 255}
	shortBreakColor = color.NRGBA{R: 63, G: 155, B: 74, A: 255}
	longBreakColor  = color.NRGBA{R: 74, G: 155, B: 217, A: 255}
	emptyBullet     = color.NRGBA{R: 0, G: 0, B: 0, A: 0}
)

// New creates the timer window. It is hidden until Show is called.
func New(app fyne.App, title string, callbacks Callbacks) *Window {
	window := app.NewWindow(title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	view := &Window{
		window:    window,
		callbacks: callbacks,
	}

	view.background = canvas.NewRectangle(withAlpha(focusColor, 24))
	view.bullets = container.NewGridWrap(fyne.NewSize(bulletSide, bulletSide))

	view.clockText = canvas.NewText("--:--", focusColor)
	view.clockText.Alignment = fyne.TextAlignCenter
	view.clockText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.clockText.TextSize = clockTextSize

	view.phaseText = canvas.NewText("", theme.Color(theme.ColorNameForeground))
	view.phaseText.Alignment = fyne.TextAlignCenter
	view.phaseText.TextStyle = fyne.TextStyle{Bold: true}
	view.phaseText.TextSize = phaseTextSize

	view.progress = widget.NewProgressBar()
	view.progress.TextFormatter = func() string { return "" }

	view.summary = widget.NewLabel("")
	view.summary.Alignment = fyne.TextAlignCenter

	view.startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() { call(view.callbacks.OnStart) })
	view.startButton.Importance = widget.HighImportance
	view.pauseButton = widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), func() { call(view.callbacks.OnPause) })
	view.resetButton = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() { call(view.callbacks.OnReset) })
	view.skipButton = widget.NewButtonWithIcon("Skip break", theme.MediaSkipNextIcon(), func() { call(view.callbacks.OnSkip) })
	settingsButton := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() { call(view.callbacks.OnSettings) })

	controls := container.NewHBox(
		layout.NewSpacer(),
		view.startButton,
		view.pauseButton,
		view.resetButton,
		view.skipButton,
		layout.NewSpacer(),
	)
	header := container.NewBorder(nil, nil, nil, settingsButton, container.NewCenter(view.bullets))
	body := container.NewVBox(
		header,
		layout.NewSpacer(),
		view.clockText,
		view.phaseText,
		view.progress,
		layout.NewSpacer(),
		controls,
		view.summary,
	)
	window.SetContent(container.NewStack(view.background, container.NewPadded(body)))
	window.Resize(fyne.NewSize(420, 340))

	if callbacks.OnClose != nil {
		window.SetCloseIntercept(callbacks.OnClose)
	}

	return view
}

// Show displays the window and brings it forward.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Hide hides the window.
func (view *Window) Hide() {
	view.window.Hide()
}

// Render updates every widget from a snapshot. Safe to call from any goroutine.
func (view *Window) Render(snapshot timekeeper.Snapshot) {
	fyne.Do(func() {
		view.renderUnsafe(snapshot)
	})
}

// SetSummary updates the daily totals line. Safe to call from any goroutine.
func (view *Window) SetSummary(summary storage.Summary) {
	fyne.Do(func() {
		view.summary.SetText(SummaryText(summary))
	})
}

func (view *Window) renderUnsafe(snapshot timekeeper.Snapshot) {
	accent := PhaseColor(snapshot.Phase)

	view.clockText.Text = snapshot.Clock()
	view.clockText.Color = accent
	view.clockText.Refresh()

	view.phaseText.Text = snapshot.Phase.Label()
	view.phaseText.Refresh()

	view.background.FillColor = withAlpha(accent, 24)
	view.background.Refresh()

	view.progress.SetValue(snapshot.Progress)
	view.renderBulletsUnsafe(snapshot, accent)

	controls := ControlsFor(snapshot)
	setEnabled(view.startButton, controls.Start)
	setEnabled(view.pauseButton, controls.Pause)
	setEnabled(view.skipButton, controls.Skip)
}

func (view *Window) renderBulletsUnsafe(snapshot timekeeper.Snapshot, accent color.Color) {
	filled := BulletFill(snapshot)
	if len(filled) != view.bulletCount {
		objects := make([]fyne.CanvasObject, 0, len(filled))
		for range filled {
			circle := canvas.NewCircle(emptyBullet)
			circle.StrokeWidth = 2
			objects = append(objects, circle)
		}
		view.bullets.Objects = objects
		view.bulletCount = len(filled)
	}

	for index, object := range view.bullets.Objects {
		circle := object.(*canvas.Circle)
		circle.StrokeColor = accent
		if filled[index] {
			circle.FillColor = accent
		} else {
			circle.FillColor = emptyBullet
		}
	}
	view.bullets.Refresh()
}

// Controls reports which buttons accept input.
type Controls struct {
	Start bool
	Pause bool
	Skip  bool
}

// ControlsFor returns the button states for a snapshot.
func ControlsFor(snapshot timekeeper.Snapshot) Controls {
	return Controls{
		Start: !snapshot.Running,
		Pause: snapshot.Running,
		Skip:  snapshot.Phase.IsBreak(),
	}
}

// BulletFill returns one entry per focus session in the cycle, true for the
// ones already completed.
func BulletFill(snapshot timekeeper.Snapshot) []bool {
	count := snapshot.LongBreakAfter
	if count < 0 {
		count = 0
	}
	filled := make([]bool, count)
	for index := 0; index < count && index < snapshot.FocusSinceLongBreak; index++ {
		filled[index] = true
	}
	return filled
}

// PhaseColor returns the accent color for a phase.
func PhaseColor(phase timekeeper.Phase) color.NRGBA {
	switch phase {
	case timekeeper.PhaseShortBreak:
		return shortBreakColor
	case timekeeper.PhaseLongBreak:
		return longBreakColor
	default:
		return focusColor
	}
}

// SummaryText renders today's totals.
func SummaryText(summary storage.Summary) string {
	return "Today: " + summary.String()
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}

func withAlpha(value color.NRGBA, alpha uint8) color.NRGBA {
	value.A = alpha
	return value
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}
