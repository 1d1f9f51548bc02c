package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Reward kinds.
const (
	RewardKindXP  = "xp"
	RewardKindGem = "gem"
)

func (r *eventRepo) AppendReward(ctx context.Context, e RewardEvent) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(rewardsTable).
		Columns("sequence", "learner_id", "submission_id", "kind", "gem_type", "rarity", "xp", "milestone", "streak", "streak_run", "reason", "created_at").
		Values(seqNum, e.LearnerID, e.SubmissionID, e.Kind, e.GemType, e.Rarity, e.XP, e.Milestone, e.Streak, e.StreakRun, e.Reason, r.now().UTC()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("save reward event: %w", err)
	}
	return seqNum, nil
}

func (r *eventRepo) RewardTotals(ctx context.Context, learnerID string) (*RewardTotals, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("kind", "rarity", "xp", "milestone", "streak", "streak_run").
		From(entsql.Table(rewardsTable)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("sequence").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query reward events: %w", err)
	}
	defer rows.Close()

	totals := &RewardTotals{ByRarity: make(map[string]int)}
	for rows.Next() {
		var (
			kind, rarity               string
			xp, milestone, streak, run int
		)
		if err := rows.Scan(&kind, &rarity, &xp, &milestone, &streak, &run); err != nil {
			return nil, fmt.Errorf("scan reward event: %w", err)
		}
		switch kind {
		case RewardKindXP:
			totals.XP += xp
		case RewardKindGem:
			totals.Gems++
			totals.ByRarity[rarity]++
		}
		if run != totals.StreakRun {
			totals.StreakMilestone = 0
		}
		totals.StreakRun = run
		totals.LastStreak = streak
		totals.StreakMilestone = max(totals.StreakMilestone, milestone)
	}
	return totals, rows.Err()
}

func (r *eventRepo) ClaimStreakMilestone(ctx context.Context, learnerID string, run, milestone int) (bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(streakClaimsTable).
		Columns("learner_id", "streak_run", "milestone", "created_at").
		Values(learnerID, run, milestone, r.now().UTC()).
		OnConflict(entsql.ConflictColumns("learner_id", "streak_run", "milestone"), entsql.DoNothing()).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return false, fmt.Errorf("claim streak milestone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim streak milestone: %w", err)
	}
	return n > 0, nil
}
