// Package dashboard renders a learner's performance record in the terminal.
package dashboard

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
	"github.com/abhisek/brightpath/internal/ui/components"
	"github.com/abhisek/brightpath/internal/ui/theme"
)

// Snapshot is everything the dashboard shows for one learner.
type Snapshot struct {
	LearnerID   string
	Exists      bool
	Version     int64
	History     performance.History
	Recovered   bool
	Rewards     store.RewardTotals
	Adaptations []store.AdaptationEvent
	LoadedAt    time.Time
}

// RenderOverview renders the learner's current record.
func RenderOverview(s Snapshot, width int) string {
	h := s.History
	var b strings.Builder

	title := fmt.Sprintf("Learner %s", s.LearnerID)
	if !s.Exists {
		title += "  " + theme.Hint.Render("no quizzes yet")
	}
	b.WriteString(theme.Title.Render(title) + "\n\n")

	if s.Recovered {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).
			Render("Stored record was unreadable and has been reset.") + "\n\n")
	}

	trend := string(h.Trend)
	if !h.TrendConfident && h.Trend != performance.TrendStable {
		trend += " (tentative)"
	}
	rows := []struct {
		label string
		value string
	}{
		{"Difficulty", colored(string(h.CurrentDifficulty), theme.DifficultyColor(h.CurrentDifficulty))},
		{"Tier", fmt.Sprintf("%s  %s", h.LearnerTier, theme.Hint.Render(fmt.Sprintf("score %.1f", h.TierScore)))},
		{"Trend", colored(trend, theme.TrendColor(h.Trend))},
		{"Streak", colored(string(h.StreakHealth), theme.StreakColor(h.StreakHealth))},
		{"Lessons", fmt.Sprintf("%d", h.TotalLessonsCompleted)},
		{"Average", fmt.Sprintf("%.1f", h.AverageQuizScore)},
		{"Recent", recentScores(h.RecentQuizScores)},
	}
	for _, r := range rows {
		b.WriteString(theme.Label.Render(r.label) + theme.Body.Render(r.value) + "\n")
	}

	b.WriteString("\n" + theme.Label.Render("Why") + theme.Body.Render(h.DifficultyChangeReason) + "\n\n")

	strongest := h.StrongestModality()
	b.WriteString(theme.Title.Render("Modalities") + "\n")
	meterWidth := min(max(width-4, 30), 72)
	for _, m := range performance.AllModalities() {
		label := m.DisplayName()
		if m == strongest {
			label += " ★"
		}
		b.WriteString(components.Meter{
			Label:      label,
			LabelWidth: 14,
			Score:      h.ModalityScores[m],
			Width:      meterWidth,
		}.View() + "\n")
	}

	b.WriteString("\n" + theme.Label.Render("Strong topics") + theme.Body.Render(topicList(h.StrongTopics)) + "\n")
	b.WriteString(theme.Label.Render("Needs work") + theme.Body.Render(topicList(h.WeakTopics)) + "\n")

	return theme.Card.Width(min(width, 80)).Render(strings.TrimRight(b.String(), "\n"))
}

// RenderAdaptations lists difficulty decisions, newest first, highlighting
// the selected row.
func RenderAdaptations(evts []store.AdaptationEvent, selected, width int) string {
	if len(evts) == 0 {
		return theme.Hint.Render("No decisions recorded yet.")
	}
	var b strings.Builder
	b.WriteString(theme.Title.Render("Recent decisions") + "\n\n")
	for i, e := range evts {
		line := fmt.Sprintf("%s  %5.1f  %-21s %s → %s",
			e.CreatedAt.Local().Format("Jan 02 15:04"), e.Score, e.Rule, e.FromDifficulty, e.ToDifficulty)
		style := theme.Body
		prefix := "  "
		if i == selected {
			style = theme.Selected
			prefix = "> "
		}
		b.WriteString(style.Render(prefix+line) + "\n")
		if i == selected {
			b.WriteString(theme.Hint.Width(max(width-4, 20)).Render("    "+e.Reason) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func colored(s string, c color.Color) string {
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(s)
}

func recentScores(scores []float64) string {
	if len(scores) == 0 {
		return "none"
	}
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%.0f", s)
	}
	return strings.Join(parts, " · ")
}

func topicList(topics []string) string {
	if len(topics) == 0 {
		return "none"
	}
	return strings.Join(topics, ", ")
}
