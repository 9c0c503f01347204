package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var studentColumns = []string{
	"id", "school_level", "grade", "recent_accuracy", "difficulty_level",
	"weak_topics", "current_topics", "created_at", "updated_at",
}

type studentRepo struct {
	s *Store
}

func (r *studentRepo) Get(ctx context.Context, id string) (*Student, error) {
	b := r.s.builder()
	query, args := b.Select(studentColumns...).
		From(b.Table("students")).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		st                  Student
		weak, current       string
		createdAt, updateAt int64
	)
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(
		&st.ID, &st.SchoolLevel, &st.Grade, &st.RecentAccuracy, &st.DifficultyLevel,
		&weak, &current, &createdAt, &updateAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}

	if st.WeakTopics, err = decodeTopics(weak); err != nil {
		return nil, fmt.Errorf("decode weak topics: %w", err)
	}
	if st.CurrentTopics, err = decodeTopics(current); err != nil {
		return nil, fmt.Errorf("decode current topics: %w", err)
	}
	st.CreatedAt = fromMillis(createdAt)
	st.UpdatedAt = fromMillis(updateAt)
	return &st, nil
}

func (r *studentRepo) GetOrCreate(ctx context.Context, defaults Student) (*Student, error) {
	weak, err := encodeTopics(defaults.WeakTopics)
	if err != nil {
		return nil, err
	}
	current, err := encodeTopics(defaults.CurrentTopics)
	if err != nil {
		return nil, err
	}
	now := toMillis(time.Now())

	query, args := r.s.builder().Insert("students").
		Columns(studentColumns...).
		Values(defaults.ID, defaults.SchoolLevel, defaults.Grade, defaults.RecentAccuracy,
			defaults.DifficultyLevel, weak, current, now, now).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert student: %w", err)
	}
	return r.Get(ctx, defaults.ID)
}

func (r *studentRepo) Save(ctx context.Context, st *Student) error {
	weak, err := encodeTopics(st.WeakTopics)
	if err != nil {
		return err
	}
	current, err := encodeTopics(st.CurrentTopics)
	if err != nil {
		return err
	}

	query, args := r.s.builder().Update("students").
		Set("school_level", st.SchoolLevel).
		Set("grade", st.Grade).
		Set("recent_accuracy", st.RecentAccuracy).
		Set("difficulty_level", st.DifficultyLevel).
		Set("weak_topics", weak).
		Set("current_topics", current).
		Set("updated_at", toMillis(time.Now())).
		Where(entsql.EQ("id", st.ID)).
		Query()

	res, err := r.s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("student %q: %w", st.ID, ErrNotFound)
	}
	return nil
}

func (r *studentRepo) AddWeakTopic(ctx context.Context, id, topic string) (bool, error) {
	st, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if slices.Contains(st.WeakTopics, topic) {
		return false, nil
	}
	st.WeakTopics = append(st.WeakTopics, topic)
	if err := r.Save(ctx, st); err != nil {
		return false, err
	}
	return true, nil
}

// encodeTopics stores a topic set as a JSON array with duplicates and
// blanks removed.
func encodeTopics(topics []string) (string, error) {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode topics: %w", err)
	}
	return string(raw), nil
}

func decodeTopics(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, err
	}
	return topics, nil
}
