package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/brightpath/internal/performance"
)

// Palette, bright enough for kids and calm enough for parents.
var (
	Primary   = lipgloss.Color("#8B5CF6") // purple
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F97316") // orange
	Success   = lipgloss.Color("#22C55E")
	Warning   = lipgloss.Color("#EAB308")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(14)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// DifficultyColor returns the accent for a difficulty level.
func DifficultyColor(d performance.Difficulty) color.Color {
	switch d {
	case performance.DifficultyAdvanced:
		return Primary
	case performance.DifficultyIntermediate:
		return Secondary
	default:
		return Success
	}
}

// TrendColor returns green for improving, rose for declining.
func TrendColor(t performance.Trend) color.Color {
	switch t {
	case performance.TrendImproving:
		return Success
	case performance.TrendDeclining:
		return Error
	default:
		return TextDim
	}
}

// StreakColor maps streak health to a traffic light.
func StreakColor(s performance.StreakHealth) color.Color {
	switch s {
	case performance.StreakHealthy:
		return Success
	case performance.StreakWarning:
		return Warning
	default:
		return Error
	}
}
