package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var problemColumns = []string{
	"id", "student_id", "unit_id", "topic", "tier", "category",
	"question", "options", "answer", "explanation", "diagram", "created_at",
}

type problemRepo struct {
	s *Store
}

func (r *problemRepo) SaveBatch(ctx context.Context, recs []ProblemRecord) error {
	if len(recs) == 0 {
		return nil
	}

	insert := r.s.builder().Insert("problems").Columns(problemColumns...)
	now := time.Now()
	for _, p := range recs {
		opts, err := json.Marshal(p.Options)
		if err != nil {
			return fmt.Errorf("encode options for %s: %w", p.ID, err)
		}
		created := p.CreatedAt
		if created.IsZero() {
			created = now
		}
		insert.Values(p.ID, p.StudentID, nullableInt(p.UnitID), p.Topic, p.Tier, p.Category,
			p.Question, string(opts), p.Answer, p.Explanation, p.Diagram, toMillis(created))
	}
	query, args := insert.Query()

	return r.s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert problems: %w", err)
		}
		return nil
	})
}

func (r *problemRepo) Get(ctx context.Context, id string) (*ProblemRecord, error) {
	b := r.s.builder()
	query, args := b.Select(problemColumns...).
		From(b.Table("problems")).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query problem: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query problem: %w", err)
		}
		return nil, fmt.Errorf("problem %q: %w", id, ErrNotFound)
	}
	return scanProblem(rows)
}

func (r *problemRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]ProblemRecord, error) {
	b := r.s.builder()
	sel := b.Select(problemColumns...).
		From(b.Table("problems")).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	defer rows.Close()

	var out []ProblemRecord
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProblem(rows *sql.Rows) (*ProblemRecord, error) {
	var (
		p       ProblemRecord
		unitID  sql.NullInt64
		options string
		created int64
	)
	if err := rows.Scan(&p.ID, &p.StudentID, &unitID, &p.Topic, &p.Tier, &p.Category,
		&p.Question, &options, &p.Answer, &p.Explanation, &p.Diagram, &created); err != nil {
		return nil, fmt.Errorf("scan problem: %w", err)
	}
	if err := json.Unmarshal([]byte(options), &p.Options); err != nil {
		return nil, fmt.Errorf("decode options for %s: %w", p.ID, err)
	}
	if unitID.Valid {
		id := int(unitID.Int64)
		p.UnitID = &id
	}
	p.CreatedAt = fromMillis(created)
	return &p, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// errNoRowsAsNotFound normalizes sql.ErrNoRows for single-row lookups.
func errNoRowsAsNotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
