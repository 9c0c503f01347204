package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type masteryRepo struct {
	s *Store
}

func (r *masteryRepo) Get(ctx context.Context, studentID string, unitID int) (*UnitMastery, error) {
	all, err := r.list(ctx, entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("unit_id", unitID)))
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

func (r *masteryRepo) Upsert(ctx context.Context, m UnitMastery) error {
	query, args := r.s.builder().Insert("unit_mastery").
		Columns("student_id", "unit_id", "score", "attempts", "updated_at").
		Values(m.StudentID, m.UnitID, m.Score, m.Attempts, toMillis(time.Now())).
		OnConflict(
			entsql.ConflictColumns("student_id", "unit_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("score")
				u.SetExcluded("attempts")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert mastery: %w", err)
	}
	return nil
}

func (r *masteryRepo) ListByStudent(ctx context.Context, studentID string) ([]UnitMastery, error) {
	return r.list(ctx, entsql.EQ("student_id", studentID))
}

func (r *masteryRepo) list(ctx context.Context, where *entsql.Predicate) ([]UnitMastery, error) {
	b := r.s.builder()
	query, args := b.Select("student_id", "unit_id", "score", "attempts", "updated_at").
		From(b.Table("unit_mastery")).
		Where(where).
		OrderBy("unit_id").
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	defer rows.Close()

	var out []UnitMastery
	for rows.Next() {
		var (
			m       UnitMastery
			updated int64
		)
		if err := rows.Scan(&m.StudentID, &m.UnitID, &m.Score, &m.Attempts, &updated); err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		m.UpdatedAt = fromMillis(updated)
		out = append(out, m)
	}
	return out, rows.Err()
}
