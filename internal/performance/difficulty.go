package performance

import "fmt"

// Rule names the controller branch that produced a decision.
type Rule string

const (
	RuleInsufficientEvidence Rule = "insufficient-evidence"
	RuleOscillationGuard     Rule = "oscillation-guard"
	RuleEscalate             Rule = "escalate"
	RuleDeescalateDecline    Rule = "de-escalate-decline"
	RuleDeescalateStreak     Rule = "de-escalate-streak"
	RuleHold                 Rule = "hold"
)

// ReasonBalanced is the default explanation when nothing calls for a move.
const ReasonBalanced = "Difficulty remains balanced for your current pace."

// ControllerInput is everything the difficulty controller looks at.
type ControllerInput struct {
	Trend            Trend
	Tier             Tier
	StreakHealth     StreakHealth
	LessonsCompleted int
	LastDirection    Direction
	Current          Difficulty
}

// Decision is the controller's output for one quiz.
type Decision struct {
	Rule      Rule       `json:"rule"`
	From      Difficulty `json:"from"`
	To        Difficulty `json:"to"`
	Direction Direction  `json:"direction"`
	Reason    string     `json:"reason"`
}

// Changed reports whether difficulty moved.
func (d Decision) Changed() bool {
	return d.From != d.To
}

// Decide runs the difficulty decision table. The first matching rule wins
// and every branch fills Direction and Reason.
func Decide(in ControllerInput, cfg Config) Decision {
	current := in.Current
	if !current.Valid() {
		current = DifficultyBeginner
	}

	if in.LessonsCompleted < cfg.MinLessons {
		return hold(RuleInsufficientEvidence, current, ReasonInsufficientLessons)
	}

	move := proposeMove(in, current)

	// A reversal right after a move is held for one call; the held call
	// records DirectionStable, which unlocks the reversal next time.
	if move.Direction.opposite(in.LastDirection) {
		return hold(RuleOscillationGuard, current, fmt.Sprintf(
			"Difficulty just moved %s, so it stays at %s for one more quiz before changing direction.",
			in.LastDirection, current))
	}
	return move
}

func proposeMove(in ControllerInput, current Difficulty) Decision {
	atRisk := in.StreakHealth == StreakAtRisk
	declining := in.Trend == TrendDeclining

	if in.Trend == TrendImproving && !atRisk && current != DifficultyAdvanced {
		to := current.Up()
		return Decision{
			Rule:      RuleEscalate,
			From:      current,
			To:        to,
			Direction: DirectionUp,
			Reason: fmt.Sprintf("Your scores are improving and you're at the %s tier, so lessons move up to %s.",
				tierOrDefault(in.Tier), to),
		}
	}

	if (declining || atRisk) && current != DifficultyBeginner {
		to := current.Down()
		if declining {
			return Decision{
				Rule:      RuleDeescalateDecline,
				From:      current,
				To:        to,
				Direction: DirectionDown,
				Reason:    fmt.Sprintf("Your recent scores are dropping, so lessons ease to %s to rebuild confidence.", to),
			}
		}
		return Decision{
			Rule:      RuleDeescalateStreak,
			From:      current,
			To:        to,
			Direction: DirectionDown,
			Reason:    fmt.Sprintf("Your learning streak was broken, so lessons ease to %s to help you get back on track.", to),
		}
	}

	return hold(RuleHold, current, holdReason(in, current))
}

func holdReason(in ControllerInput, current Difficulty) string {
	switch {
	case in.Trend == TrendImproving && current == DifficultyAdvanced:
		return "You're already at the top difficulty. Keep up the great work!"
	case in.Trend == TrendImproving && in.StreakHealth == StreakAtRisk:
		return "Scores are improving! Keep your streak going and lessons will get more challenging."
	case in.Trend == TrendDeclining:
		return "Lessons stay at beginner while you rebuild your scores."
	case in.StreakHealth == StreakAtRisk:
		return "Lessons stay at beginner while you get back into a learning rhythm."
	default:
		return ReasonBalanced
	}
}

func hold(rule Rule, current Difficulty, reason string) Decision {
	return Decision{
		Rule:      rule,
		From:      current,
		To:        current,
		Direction: DirectionStable,
		Reason:    reason,
	}
}

func tierOrDefault(t Tier) Tier {
	if t.Valid() {
		return t
	}
	return TierBeginner
}
