package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/brightpath/internal/performance"
)

// recordRepo implements RecordRepo with optimistic versioning. The version
// column is checked in the UPDATE's WHERE clause, so no transaction is held
// while the caller computes the next record.
type recordRepo struct {
	drv dialect.Driver
	now func() time.Time
}

func (r *recordRepo) Get(ctx context.Context, learnerID string) (*Record, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("version", "format", "data", "updated_at").
		From(entsql.Table(recordsTable)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query record: %w", err)
		}
		return nil, nil
	}

	rec := &Record{LearnerID: learnerID}
	var data []byte
	if err := rows.Scan(&rec.Version, &rec.Format, &data, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	h, err := DecodeHistory(data, rec.Format)
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return nil, err
	case err != nil:
		rec.History = performance.NewHistory()
		rec.Recovered = true
	default:
		rec.History = h
	}
	return rec, nil
}

func (r *recordRepo) Update(ctx context.Context, learnerID string, fn UpdateFunc) (*Record, error) {
	current, err := r.Get(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	base := performance.NewHistory()
	var version int64
	if current != nil {
		base = current.History
		version = current.Version
	}

	next, err := fn(base.Clone())
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	next.LastUpdated = now
	data, format, err := EncodeHistory(next)
	if err != nil {
		return nil, err
	}

	b := entsql.Dialect(dialect.SQLite)
	var (
		query string
		args  []any
	)
	if current == nil {
		query, args = b.Insert(recordsTable).
			Columns("learner_id", "version", "format", "data", "updated_at").
			Values(learnerID, 1, format, string(data), now).
			OnConflict(entsql.ConflictColumns("learner_id"), entsql.DoNothing()).
			Query()
	} else {
		query, args = b.Update(recordsTable).
			Set("version", version+1).
			Set("format", format).
			Set("data", string(data)).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("learner_id", learnerID),
				entsql.EQ("version", version),
			)).
			Query()
	}

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	if n == 0 {
		return nil, ErrConflict
	}

	return &Record{
		LearnerID: learnerID,
		Version:   version + 1,
		Format:    format,
		History:   next,
		UpdatedAt: now,
		Recovered: current != nil && current.Recovered,
	}, nil
}

func (r *recordRepo) Delete(ctx context.Context, learnerID string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(recordsTable).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (r *recordRepo) List(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("learner_id").
		From(entsql.Table(recordsTable)).
		OrderBy("learner_id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
