package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/brightpath/internal/ui/theme"
)

// Meter is a labelled horizontal bar for a 0-100 score.
type Meter struct {
	Label string
	// LabelWidth pads the label so stacked meters line up.
	LabelWidth int
	Score      float64
	Width      int
	Color      color.Color
}

// View renders the meter.
func (m Meter) View() string {
	label := lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(m.LabelWidth).
		Render(m.Label)

	value := fmt.Sprintf(" %5.1f", m.Score)
	barWidth := max(m.Width-lipgloss.Width(label)-len(value)-1, 4)

	filled := min(max(int(float64(barWidth)*m.Score/100+0.5), 0), barWidth)

	fill := m.Color
	if fill == nil {
		fill = theme.Secondary
	}
	return label + " " +
		lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(value)
}
