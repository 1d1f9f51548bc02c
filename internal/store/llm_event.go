package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(llmRequestsTable).
		Columns("sequence", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body", "created_at").
		Values(seqNum, data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody, r.now().UTC()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("sequence", "provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body", "created_at").
		From(entsql.Table(llmRequestsTable))
	query, args := applyQueryOpts(sel, opts).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		var e LLMRequestEvent
		err := rows.Scan(&e.Sequence, &e.Provider, &e.Model, &e.Purpose, &e.InputTokens, &e.OutputTokens,
			&e.LatencyMs, &e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, func(e LLMRequestEvent) LLMUsage {
		return LLMUsage{Purpose: e.Purpose}
	})
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, func(e LLMRequestEvent) LLMUsage {
		return LLMUsage{Model: e.Model}
	})
}

// llmUsage aggregates every LLM event by the grouping key returns. Groups
// are listed in first-seen order.
func (r *eventRepo) llmUsage(ctx context.Context, key func(LLMRequestEvent) LLMUsage) ([]LLMUsage, error) {
	events, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	index := make(map[LLMUsage]int)
	var usage []LLMUsage
	var latency []int64
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		k := key(e)
		idx, ok := index[k]
		if !ok {
			idx = len(usage)
			index[k] = idx
			usage = append(usage, k)
			latency = append(latency, 0)
		}
		u := &usage[idx]
		u.Calls++
		if !e.Success {
			u.Failures++
		}
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		latency[idx] += e.LatencyMs
	}

	for i := range usage {
		usage[i].AvgLatencyMs = latency[i] / int64(usage[i].Calls)
	}
	return usage, nil
}
