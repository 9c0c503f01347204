package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/store"
)

// Unit is a catalog leaf as exposed to clients.
type Unit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Chapter groups units for one (school level, grade).
type Chapter struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Units []Unit `json:"units"`
}

// UnitInfo is a unit together with the grade it belongs to.
type UnitInfo struct {
	ID          int
	Name        string
	ChapterID   int
	ChapterName string
	SchoolLevel string
	Grade       int
}

// Cache stores serialized catalog listings. Implementations report a miss
// with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Catalog answers curriculum queries from the store, optionally through a
// cache. Cache failures degrade to store reads.
type Catalog struct {
	repo  store.CurriculumRepo
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCache enables caching of chapter listings for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(cat *Catalog) {
		cat.cache = c
		cat.ttl = ttl
	}
}

func NewCatalog(repo store.CurriculumRepo, log *zap.Logger, opts ...Option) *Catalog {
	c := &Catalog{repo: repo, log: log.Named("catalog")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chapters lists the chapters (with units) of a grade in catalog order.
// An unknown grade yields an empty list.
func (c *Catalog) Chapters(ctx context.Context, level string, grade int) ([]Chapter, error) {
	key := fmt.Sprintf("mathdaily:curriculum:%s:%d", level, grade)

	if c.cache != nil {
		raw, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			var chapters []Chapter
			if err := json.Unmarshal(raw, &chapters); err == nil {
				return chapters, nil
			}
			c.log.Warn("discarding corrupt catalog cache entry", zap.String("key", key))
		}
	}

	rows, err := c.repo.ListChapters(ctx, level, grade)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	chapters := make([]Chapter, 0, len(rows))
	for _, row := range rows {
		ch := Chapter{ID: row.ID, Name: row.Name, Units: make([]Unit, 0, len(row.Units))}
		for _, u := range row.Units {
			ch.Units = append(ch.Units, Unit{ID: u.ID, Name: u.Name})
		}
		chapters = append(chapters, ch)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(chapters); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
				c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return chapters, nil
}

// UnitNames flattens the units of a grade.
func (c *Catalog) UnitNames(ctx context.Context, level string, grade int) ([]string, error) {
	chapters, err := c.Chapters(ctx, level, grade)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ch := range chapters {
		for _, u := range ch.Units {
			names = append(names, u.Name)
		}
	}
	return names, nil
}

// Unit resolves a unit and its chapter's grade. A missing unit wraps
// store.ErrNotFound.
func (c *Catalog) Unit(ctx context.Context, id int) (*UnitInfo, error) {
	u, err := c.repo.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	ch, err := c.repo.GetChapter(ctx, u.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("chapter of unit %d: %w", id, err)
	}
	return &UnitInfo{
		ID:          u.ID,
		Name:        u.Name,
		ChapterID:   ch.ID,
		ChapterName: ch.Name,
		SchoolLevel: ch.SchoolLevel,
		Grade:       ch.Grade,
	}, nil
}
