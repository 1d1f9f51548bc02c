package rewards

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
)

// Ledger is the slice of store.EventRepo the service needs.
type Ledger interface {
	AppendReward(ctx context.Context, e store.RewardEvent) (int64, error)
	RewardTotals(ctx context.Context, learnerID string) (*store.RewardTotals, error)
	ClaimStreakMilestone(ctx context.Context, learnerID string, run, milestone int) (bool, error)
}

// Service computes rewards and records them as reward events.
type Service struct {
	ledger Ledger
	logger *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(ledger Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, logger: logger}
}

// Award computes the reward for outcome and persists it. Persistence is
// attempted for every item; the first failure is returned alongside the
// computed award.
//
// Streak milestones restart from the first threshold whenever the reported
// streak drops below the one seen on the previous reward. A milestone is
// claimed in the ledger before it is recorded, so a run pays it out once.
func (s *Service) Award(ctx context.Context, learnerID, submissionID string, outcome performance.Outcome, streak int) (Award, error) {
	streak = max(streak, 0)

	var totals store.RewardTotals
	if t, err := s.ledger.RewardTotals(ctx, learnerID); err != nil {
		s.logger.WarnContext(ctx, "read reward totals", "learner_id", learnerID, "error", err)
	} else {
		totals = *t
	}

	run, claimed := totals.StreakRun, totals.StreakMilestone
	if streak < totals.LastStreak {
		run++
		claimed = 0
	}

	award := Compute(Input{Outcome: outcome, Streak: streak, ClaimedMilestone: claimed})

	var firstErr error
	var gems []GemAward
	for _, g := range award.Gems {
		if g.Type == GemStreak {
			ok, err := s.ledger.ClaimStreakMilestone(ctx, learnerID, run, g.Milestone)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			if !ok {
				continue
			}
		}
		gems = append(gems, g)
	}
	award.Gems = gems

	record := func(e store.RewardEvent) {
		e.LearnerID = learnerID
		e.SubmissionID = submissionID
		e.Streak = streak
		e.StreakRun = run
		if _, err := s.ledger.AppendReward(ctx, e); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("append %s reward: %w", e.Kind, err)
		}
	}

	if award.XP > 0 {
		record(store.RewardEvent{
			Kind:   store.RewardKindXP,
			XP:     award.XP,
			Reason: fmt.Sprintf("Quiz at %s difficulty", outcome.Decision.From),
		})
	}
	for _, g := range award.Gems {
		record(store.RewardEvent{
			Kind:      store.RewardKindGem,
			GemType:   string(g.Type),
			Rarity:    string(g.Rarity),
			Milestone: g.Milestone,
			Reason:    g.Reason,
		})
	}

	if len(award.Gems) > 0 {
		s.logger.InfoContext(ctx, "gems awarded", "learner_id", learnerID, "count", len(award.Gems), "xp", award.XP)
	}
	return award, firstErr
}
