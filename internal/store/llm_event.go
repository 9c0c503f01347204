package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"id", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

// LLMEventRepo appends and queries LLM request events.
type LLMEventRepo struct {
	s *Store
}

var _ EventRepo = (*LLMEventRepo)(nil)

func (r *LLMEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := r.s.builder().Insert("llm_request_events").
		Columns(llmEventColumns[1:]...).
		Values(toMillis(time.Now()), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody).
		Query()

	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMEvents returns events newest first, filtered by opts.
func (r *LLMEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	b := r.s.builder()
	sel := b.Select(llmEventColumns...).
		From(b.Table("llm_request_events")).
		OrderBy(entsql.Desc("id"))
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		var (
			ev LLMRequestEvent
			ts int64
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
			&ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		ev.Timestamp = fromMillis(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GetLLMEvent returns a single event. It wraps ErrNotFound when id is unknown.
func (r *LLMEventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error) {
	b := r.s.builder()
	query, args := b.Select(llmEventColumns...).
		From(b.Table("llm_request_events")).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		ev LLMRequestEvent
		ts int64
	)
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&ev.ID, &ts, &ev.Provider, &ev.Model,
		&ev.Purpose, &ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
		&ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody)
	if err != nil {
		return nil, errNoRowsAsNotFound(err, fmt.Sprintf("LLM event %d", id))
	}
	ev.Timestamp = fromMillis(ts)
	return &ev, nil
}

// LLMUsageByPurpose aggregates token usage per purpose, busiest first.
func (r *LLMEventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usage(ctx, "purpose")
}

// LLMUsageByModel aggregates token usage per model, busiest first.
func (r *LLMEventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usage(ctx, "model")
}

func (r *LLMEventRepo) usage(ctx context.Context, key string) ([]LLMUsage, error) {
	// Aggregate expressions are written out; the builder has no CASE helper.
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*),
		SUM(CASE WHEN success THEN 0 ELSE 1 END),
		COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
		COALESCE(AVG(latency_ms), 0)
		FROM llm_request_events GROUP BY %[1]s ORDER BY COUNT(*) DESC, %[1]s`, key)

	rows, err := r.s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", key, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Key, &u.Requests, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (o QueryOpts) predicate() *entsql.Predicate {
	var ps []*entsql.Predicate
	if o.Purpose != "" {
		ps = append(ps, entsql.EQ("purpose", o.Purpose))
	}
	if !o.From.IsZero() {
		ps = append(ps, entsql.GTE("timestamp", toMillis(o.From)))
	}
	if !o.To.IsZero() {
		ps = append(ps, entsql.LTE("timestamp", toMillis(o.To)))
	}
	switch len(ps) {
	case 0:
		return nil
	case 1:
		return ps[0]
	}
	return entsql.And(ps...)
}
