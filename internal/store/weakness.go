package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var weaknessColumnNames = []string{
	"id", "student_id", "problem_id", "topic", "submitted_answer",
	"error_kind", "reasoning", "advice", "severity", "created_at",
}

type weaknessRepo struct {
	s *Store
}

func (r *weaknessRepo) Append(ctx context.Context, rec WeaknessRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	query, args := r.s.builder().Insert("weakness_records").
		Columns(weaknessColumnNames...).
		Values(rec.ID, rec.StudentID, rec.ProblemID, rec.Topic, rec.SubmittedAnswer,
			rec.ErrorKind, rec.Reasoning, rec.Advice, rec.Severity, toMillis(created)).
		Query()

	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert weakness record: %w", err)
	}
	return nil
}

func (r *weaknessRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]WeaknessRecord, error) {
	b := r.s.builder()
	sel := b.Select(weaknessColumnNames...).
		From(b.Table("weakness_records")).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weakness records: %w", err)
	}
	defer rows.Close()

	var out []WeaknessRecord
	for rows.Next() {
		var (
			rec     WeaknessRecord
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.ProblemID, &rec.Topic, &rec.SubmittedAnswer,
			&rec.ErrorKind, &rec.Reasoning, &rec.Advice, &rec.Severity, &created); err != nil {
			return nil, fmt.Errorf("scan weakness record: %w", err)
		}
		rec.CreatedAt = fromMillis(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *weaknessRepo) CountByTopic(ctx context.Context, studentID, topic string) (int, error) {
	b := r.s.builder()
	query, args := b.Select().
		Count().
		From(b.Table("weakness_records")).
		Where(entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("topic", topic))).
		Query()

	var n int
	if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count weakness records: %w", err)
	}
	return n, nil
}
