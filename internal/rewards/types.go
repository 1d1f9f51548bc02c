// Package rewards turns adaptation outcomes into XP and gems. It only reads
// engine output; nothing here feeds back into difficulty.
package rewards

import "github.com/abhisek/brightpath/internal/performance"

// GemType identifies the category of achievement.
type GemType string

const (
	GemClimb     GemType = "climb"
	GemPromotion GemType = "promotion"
	GemStreak    GemType = "streak"
	GemPerfect   GemType = "perfect"
)

// AllGemTypes returns all gem types in display order.
func AllGemTypes() []GemType {
	return []GemType{GemClimb, GemPromotion, GemStreak, GemPerfect}
}

// DisplayName returns a human-readable label for the gem type.
func (t GemType) DisplayName() string {
	switch t {
	case GemClimb:
		return "Level Up"
	case GemPromotion:
		return "Promotion"
	case GemStreak:
		return "Streak"
	case GemPerfect:
		return "Perfect Score"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the gem type.
func (t GemType) Icon() string {
	switch t {
	case GemClimb:
		return "🧗"
	case GemPromotion:
		return "🏆"
	case GemStreak:
		return "⚡"
	case GemPerfect:
		return "💎"
	default:
		return "✦"
	}
}

// GemAward represents a single gem earned.
type GemAward struct {
	Type   GemType `json:"type"`
	Rarity Rarity  `json:"rarity"`
	// Milestone is the streak length for streak gems.
	Milestone int    `json:"milestone,omitempty"`
	Reason    string `json:"reason"`
}

// Award is everything earned for one quiz.
type Award struct {
	XP   int        `json:"xp"`
	Gems []GemAward `json:"gems"`
}

// Input is the engine output a reward is computed from.
type Input struct {
	Outcome performance.Outcome
	// Streak is the engagement streak reported with the quiz.
	Streak int
	// ClaimedMilestone is the highest streak milestone already rewarded.
	ClaimedMilestone int
}
