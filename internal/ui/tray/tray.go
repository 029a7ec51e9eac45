package tray

import (
	"fmt"

	"pomodoro/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnToggle      func()
	OnReset       func()
	OnSkipBreak   func()
	OnPreferences func()
	OnQuit        func()
}

// Icons are swapped as the timer starts, pauses and enters breaks.
type Icons struct {
	Running fyne.Resource
	Paused  fyne.Resource
	Break   fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	title      string
	icons      Icons
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	skipItem   *fyne.MenuItem
	items      []*fyne.MenuItem
	icon       fyne.Resource
}

// New creates a tray manager with the provided callbacks. A nil app keeps
// the menu state without touching the system tray.
func New(app desktop.App, title string, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		title:     title,
		icons:     icons,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Ready", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() { call(manager.callbacks.OnToggle) })
	manager.skipItem = fyne.NewMenuItem("Skip break", func() { call(manager.callbacks.OnSkipBreak) })
	manager.skipItem.Disabled = true

	manager.items = []*fyne.MenuItem{
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() { call(manager.callbacks.OnShow) }),
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		fyne.NewMenuItem("Reset", func() { call(manager.callbacks.OnReset) }),
		manager.skipItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences", func() { call(manager.callbacks.OnPreferences) }),
		fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) }),
	}

	manager.refreshMenu()
	manager.setIcon(icons.Paused)
	return manager
}

// Render updates the status line, toggle label, skip item and icon from a
// snapshot. Call it on the UI goroutine.
func (manager *Manager) Render(snapshot timekeeper.Snapshot) {
	manager.statusItem.Label = StatusText(snapshot)
	if snapshot.Running {
		manager.toggleItem.Label = "Pause"
	} else {
		manager.toggleItem.Label = "Start"
	}
	manager.skipItem.Disabled = !snapshot.Phase.IsBreak()
	manager.refreshMenu()

	switch {
	case !snapshot.Running:
		manager.setIcon(manager.icons.Paused)
	case snapshot.Phase.IsBreak():
		manager.setIcon(manager.icons.Break)
	default:
		manager.setIcon(manager.icons.Running)
	}
}

// StatusText describes a snapshot in one line, such as "Focus Session 24:59".
func StatusText(snapshot timekeeper.Snapshot) string {
	status := fmt.Sprintf("%s %s", snapshot.Phase.Label(), snapshot.Clock())
	if !snapshot.Running {
		status += " (paused)"
	}
	return status
}

func (manager *Manager) setIcon(icon fyne.Resource) {
	if icon == nil || icon == manager.icon {
		return
	}
	manager.icon = icon
	if manager.app != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(fyne.NewMenu(manager.title, manager.items...))
	}
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}
