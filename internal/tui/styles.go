package tui

import (
	"pomodoro/internal/core/timekeeper"

	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Macchiato palette.
var (
	colorText    = lipgloss.Color("#cad3f5")
	colorSubtext = lipgloss.Color("#a5adcb")
	colorOverlay = lipgloss.Color("#6e738d")
	colorSurface = lipgloss.Color("#494d64")
	colorRed     = lipgloss.Color("#ed8796")
	colorGreen   = lipgloss.Color("#a6da95")
	colorBlue    = lipgloss.Color("#8aadf4")
	colorYellow  = lipgloss.Color("#eed49f")
)

// Styles holds the terminal UI styles.
type Styles struct {
	Frame     lipgloss.Style
	Phase     lipgloss.Style
	Paused    lipgloss.Style
	Summary   lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	FormTitle lipgloss.Style
	Label     lipgloss.Style
	LabelOn   lipgloss.Style
	Hint      lipgloss.Style
}

// NewStyles returns the default styles.
func NewStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface).
			Padding(1, 3),
		Phase:     lipgloss.NewStyle().Bold(true).Foreground(colorText),
		Paused:    lipgloss.NewStyle().Foreground(colorOverlay).Italic(true),
		Summary:   lipgloss.NewStyle().Foreground(colorSubtext),
		Status:    lipgloss.NewStyle().Foreground(colorYellow),
		Error:     lipgloss.NewStyle().Foreground(colorRed),
		FormTitle: lipgloss.NewStyle().Bold(true).Foreground(colorText).MarginBottom(1),
		Label:     lipgloss.NewStyle().Foreground(colorSubtext).Width(18),
		LabelOn:   lipgloss.NewStyle().Foreground(colorBlue).Bold(true).Width(18),
		Hint:      lipgloss.NewStyle().Foreground(colorOverlay),
	}
}

// Accent returns the phase color.
func Accent(phase timekeeper.Phase) lipgloss.Color {
	switch phase {
	case timekeeper.PhaseShortBreak:
		return colorGreen
	case timekeeper.PhaseLongBreak:
		return colorBlue
	default:
		return colorRed
	}
}
