package course

import (
	"fmt"
	"strings"

	"github.com/abhisek/brightpath/internal/performance"
)

const systemPrompt = `You design short, encouraging courses for children aged 6-12 using an adaptive learning app. Lessons must match the learner's level and favour the way they learn best.`

// BuildPrompt renders the user message for a plan request. It is a pure
// function of its inputs.
func BuildPrompt(p Profile, req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Number of lessons: %d\n", lessonCount(req))
	if req.GradeLevel > 0 {
		fmt.Fprintf(&b, "Grade: %d\n", req.GradeLevel)
	}

	b.WriteString("\nLearner:\n")
	fmt.Fprintf(&b, "- Current difficulty: %s\n", p.Difficulty)
	fmt.Fprintf(&b, "- Tier: %s\n", p.Tier)
	fmt.Fprintf(&b, "- Recent trend: %s\n", p.Trend)
	fmt.Fprintf(&b, "- Streak: %s\n", p.StreakHealth)
	fmt.Fprintf(&b, "- Learns best through: %s\n", p.PreferredModality.DisplayName())
	fmt.Fprintf(&b, "- Lessons completed: %d, average score %.0f\n", p.LessonsCompleted, p.AverageScore)
	fmt.Fprintf(&b, "- Strong topics: %s\n", listOrNone(p.StrongTopics))
	fmt.Fprintf(&b, "- Weak topics: %s\n", listOrNone(p.WeakTopics))

	fmt.Fprintf(&b, `
Instructions:
1. Plan exactly %d lessons on the subject.
2. %s
3. Use the %q modality for most lessons. Mix in other modalities only where the topic needs it.
4. If weak topics relate to the subject, revisit them early. Strong topics may be used for warm-ups.
5. Objectives are one sentence, written so a parent understands them.
6. Use plain ASCII text. No LaTeX.`,
		lessonCount(req), difficultyGuidance(p), p.PreferredModality)

	return b.String()
}

// difficultyGuidance tells the model how far lessons may stray from the
// learner's current difficulty.
func difficultyGuidance(p Profile) string {
	current := p.Difficulty
	if !current.Valid() {
		current = performance.DifficultyBeginner
	}
	switch {
	case p.Trend == performance.TrendDeclining || p.StreakHealth == performance.StreakAtRisk:
		if easier := current.Down(); easier != current {
			return fmt.Sprintf("Start at %s difficulty to rebuild confidence and return to %s by the last lesson.", easier, current)
		}
		return fmt.Sprintf("Keep every lesson at %s difficulty with extra worked examples.", current)
	case p.Trend == performance.TrendImproving:
		if harder := current.Up(); harder != current {
			return fmt.Sprintf("Use %s difficulty and let the final lesson stretch to %s.", current, harder)
		}
	}
	return fmt.Sprintf("Keep every lesson at %s difficulty.", current)
}

func lessonCount(req Request) int {
	if req.Lessons > 0 {
		return req.Lessons
	}
	return DefaultLessons
}

func listOrNone(xs []string) string {
	if len(xs) == 0 {
		return "none yet"
	}
	return strings.Join(xs, ", ")
}
