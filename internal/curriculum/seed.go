package curriculum

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathdaily/internal/store"
)

//go:embed curriculum.yaml
var seedYAML []byte

// SeedChapter is one chapter entry of the embedded catalog.
type SeedChapter struct {
	SchoolLevel string   `yaml:"-"`
	Grade       int      `yaml:"grade"`
	Chapter     string   `yaml:"chapter"`
	Units       []string `yaml:"units"`
}

// LoadSeed parses the embedded catalog in level order.
func LoadSeed() ([]SeedChapter, error) {
	return parseSeed(seedYAML)
}

func parseSeed(data []byte) ([]SeedChapter, error) {
	var byLevel map[string][]SeedChapter
	if err := yaml.Unmarshal(data, &byLevel); err != nil {
		return nil, fmt.Errorf("parse curriculum seed: %w", err)
	}

	var out []SeedChapter
	for _, level := range Levels {
		for _, ch := range byLevel[level] {
			ch.SchoolLevel = level
			if err := ValidateGrade(level, ch.Grade); err != nil {
				return nil, fmt.Errorf("chapter %q: %w", ch.Chapter, err)
			}
			out = append(out, ch)
		}
		delete(byLevel, level)
	}
	for level := range byLevel {
		return nil, fmt.Errorf("parse curriculum seed: unknown school level %q", level)
	}
	return out, nil
}

// Seed upserts every chapter and unit of chapters. Existing rows keep
// their IDs and nothing is deleted. It returns the number of units
// written.
func Seed(ctx context.Context, repo store.CurriculumRepo, chapters []SeedChapter, log *zap.Logger) (int, error) {
	units := 0
	position := map[string]int{}
	for _, ch := range chapters {
		key := fmt.Sprintf("%s/%d", ch.SchoolLevel, ch.Grade)
		chapterID, err := repo.UpsertChapter(ctx, store.Chapter{
			SchoolLevel: ch.SchoolLevel,
			Grade:       ch.Grade,
			Name:        ch.Chapter,
			Position:    position[key],
		})
		if err != nil {
			return units, err
		}
		position[key]++

		for i, name := range ch.Units {
			if _, err := repo.UpsertUnit(ctx, store.Unit{ChapterID: chapterID, Name: name, Position: i}); err != nil {
				return units, err
			}
			units++
		}
	}
	log.Info("curriculum seeded", zap.Int("chapters", len(chapters)), zap.Int("units", units))
	return units, nil
}

// SeedDefault seeds the embedded catalog.
func SeedDefault(ctx context.Context, repo store.CurriculumRepo, log *zap.Logger) (int, error) {
	chapters, err := LoadSeed()
	if err != nil {
		return 0, err
	}
	return Seed(ctx, repo, chapters, log)
}
