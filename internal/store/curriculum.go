package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type curriculumRepo struct {
	s *Store
}

func (r *curriculumRepo) UpsertChapter(ctx context.Context, ch Chapter) (int, error) {
	query, args := r.s.builder().Insert("chapters").
		Columns("school_level", "grade", "name", "position").
		Values(ch.SchoolLevel, ch.Grade, ch.Name, ch.Position).
		OnConflict(
			entsql.ConflictColumns("school_level", "grade", "name"),
			entsql.ResolveWithNewValues(),
		).
		Returning("id").
		Query()

	var id int
	if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert chapter %q: %w", ch.Name, err)
	}
	return id, nil
}

func (r *curriculumRepo) UpsertUnit(ctx context.Context, u Unit) (int, error) {
	query, args := r.s.builder().Insert("units").
		Columns("chapter_id", "name", "position").
		Values(u.ChapterID, u.Name, u.Position).
		OnConflict(
			entsql.ConflictColumns("chapter_id", "name"),
			entsql.ResolveWithNewValues(),
		).
		Returning("id").
		Query()

	var id int
	if err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert unit %q: %w", u.Name, err)
	}
	return id, nil
}

func (r *curriculumRepo) ListChapters(ctx context.Context, schoolLevel string, grade int) ([]Chapter, error) {
	b := r.s.builder()
	query, args := b.Select("id", "school_level", "grade", "name", "position").
		From(b.Table("chapters")).
		Where(entsql.And(entsql.EQ("school_level", schoolLevel), entsql.EQ("grade", grade))).
		OrderBy("position", "id").
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	var chapters []Chapter
	for rows.Next() {
		var ch Chapter
		if err := rows.Scan(&ch.ID, &ch.SchoolLevel, &ch.Grade, &ch.Name, &ch.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}

	for i := range chapters {
		units, err := r.listUnits(ctx, chapters[i].ID)
		if err != nil {
			return nil, err
		}
		chapters[i].Units = units
	}
	return chapters, nil
}

func (r *curriculumRepo) listUnits(ctx context.Context, chapterID int) ([]Unit, error) {
	b := r.s.builder()
	query, args := b.Select("id", "chapter_id", "name", "position").
		From(b.Table("units")).
		Where(entsql.EQ("chapter_id", chapterID)).
		OrderBy("position", "id").
		Query()

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.ChapterID, &u.Name, &u.Position); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *curriculumRepo) GetUnit(ctx context.Context, id int) (*Unit, error) {
	b := r.s.builder()
	query, args := b.Select("id", "chapter_id", "name", "position").
		From(b.Table("units")).
		Where(entsql.EQ("id", id)).
		Query()

	var u Unit
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.ChapterID, &u.Name, &u.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query unit: %w", err)
	}
	return &u, nil
}

func (r *curriculumRepo) GetChapter(ctx context.Context, id int) (*Chapter, error) {
	b := r.s.builder()
	query, args := b.Select("id", "school_level", "grade", "name", "position").
		From(b.Table("chapters")).
		Where(entsql.EQ("id", id)).
		Query()

	var ch Chapter
	err := r.s.db.QueryRowContext(ctx, query, args...).Scan(&ch.ID, &ch.SchoolLevel, &ch.Grade, &ch.Name, &ch.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chapter %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query chapter: %w", err)
	}
	return &ch, nil
}
