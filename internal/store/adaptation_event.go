package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by the ent SQL builder and the
// global sequence counter.
type eventRepo struct {
	drv dialect.Driver
	seq *sequenceCounter
	now func() time.Time
}

func (r *eventRepo) AppendAdaptation(ctx context.Context, e AdaptationEvent) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(adaptationsTable).
		Columns("sequence", "learner_id", "submission_id", "score", "modality", "topic",
			"rule", "from_difficulty", "to_difficulty", "direction",
			"from_tier", "to_tier", "trend", "streak_health", "reason", "created_at").
		Values(seqNum, e.LearnerID, e.SubmissionID, e.Score, e.Modality, e.Topic,
			e.Rule, e.FromDifficulty, e.ToDifficulty, e.Direction,
			e.FromTier, e.ToTier, e.Trend, e.StreakHealth, e.Reason, r.now().UTC()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("save adaptation event: %w", err)
	}
	return seqNum, nil
}

func (r *eventRepo) Adaptations(ctx context.Context, learnerID string, opts QueryOpts) ([]AdaptationEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("sequence", "learner_id", "submission_id", "score", "modality", "topic",
			"rule", "from_difficulty", "to_difficulty", "direction",
			"from_tier", "to_tier", "trend", "streak_health", "reason", "created_at").
		From(entsql.Table(adaptationsTable))
	query, args := applyQueryOpts(sel, opts, entsql.EQ("learner_id", learnerID)).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query adaptation events: %w", err)
	}
	defer rows.Close()

	var events []AdaptationEvent
	for rows.Next() {
		var e AdaptationEvent
		err := rows.Scan(&e.Sequence, &e.LearnerID, &e.SubmissionID, &e.Score, &e.Modality, &e.Topic,
			&e.Rule, &e.FromDifficulty, &e.ToDifficulty, &e.Direction,
			&e.FromTier, &e.ToTier, &e.Trend, &e.StreakHealth, &e.Reason, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan adaptation event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// applyQueryOpts adds the QueryOpts filters to sel, ordered newest first.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts, preds ...*entsql.Predicate) *entsql.Selector {
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}
