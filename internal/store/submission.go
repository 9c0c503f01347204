package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type submissionRepo struct {
	s *Store
}

func (r *submissionRepo) Append(ctx context.Context, sub Submission) error {
	created := sub.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	query, args := r.s.builder().Insert("submissions").
		Columns("student_id", "accuracy", "unit_id", "created_at").
		Values(sub.StudentID, sub.Accuracy, nullableInt(sub.UnitID), toMillis(created)).
		Query()

	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *submissionRepo) Recent(ctx context.Context, studentID string, n int) ([]float64, error) {
	b := r.s.builder()
	query, args := b.Select("accuracy").
		From(b.Table("submissions")).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(n).
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var acc float64
		if err := rows.Scan(&acc); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}
