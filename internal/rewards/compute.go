package rewards

import (
	"fmt"
	"math"

	"github.com/abhisek/brightpath/internal/performance"
)

// PerfectScore is the score that earns a perfect gem.
const PerfectScore = 100.0

// DifficultyMultiplier scales XP by the difficulty the quiz was taken at.
func DifficultyMultiplier(d performance.Difficulty) float64 {
	switch d {
	case performance.DifficultyAdvanced:
		return 1.5
	case performance.DifficultyIntermediate:
		return 1.25
	default:
		return 1.0
	}
}

// Compute returns what a learner earns for one quiz. It is a pure function
// of in.
func Compute(in Input) Award {
	out := in.Outcome
	takenAt := out.Decision.From

	award := Award{
		XP: int(math.Round(out.Score * DifficultyMultiplier(takenAt))),
	}

	if out.Decision.Direction == performance.DirectionUp {
		award.Gems = append(award.Gems, GemAward{
			Type:   GemClimb,
			Rarity: RarityRare,
			Reason: fmt.Sprintf("Moved up to %s lessons", out.Decision.To),
		})
	}

	if out.Tier.Promoted() {
		award.Gems = append(award.Gems, GemAward{
			Type:   GemPromotion,
			Rarity: RarityEpic,
			Reason: fmt.Sprintf("Reached the %s tier", out.Tier.To),
		})
	}

	if m := ReachedMilestone(in.ClaimedMilestone, in.Streak); m > 0 {
		award.Gems = append(award.Gems, GemAward{
			Type:      GemStreak,
			Rarity:    StreakRarity(m),
			Milestone: m,
			Reason:    fmt.Sprintf("%d-day learning streak!", m),
		})
	}

	if out.Score >= PerfectScore {
		award.Gems = append(award.Gems, GemAward{
			Type:   GemPerfect,
			Rarity: RarityCommon,
			Reason: "Perfect score!",
		})
	}

	return award
}
