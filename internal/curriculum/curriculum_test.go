package curriculum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:curriculum_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	failGet bool
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet {
		return nil, false, errors.New("connection refused")
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func TestLoadSeed(t *testing.T) {
	chapters, err := LoadSeed()
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}

	counts := map[string]int{}
	for _, ch := range chapters {
		counts[ch.SchoolLevel]++
		if len(ch.Units) == 0 {
			t.Errorf("chapter %q has no units", ch.Chapter)
		}
	}
	want := map[string]int{Elementary: 12, Middle: 6, High: 7}
	for level, n := range want {
		if counts[level] != n {
			t.Errorf("%s: expected %d chapters, got %d", level, n, counts[level])
		}
	}
	if chapters[0].SchoolLevel != Elementary {
		t.Errorf("expected elementary first, got %s", chapters[0].SchoolLevel)
	}
}

func TestParseSeedRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown level", "college:\n  - grade: 1\n    chapter: x\n    units: [a]\n"},
		{"grade out of range", "middle:\n  - grade: 4\n    chapter: x\n    units: [a]\n"},
		{"malformed", "elementary: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSeed([]byte(tt.yaml)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSeedIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	n1, err := SeedDefault(ctx, s.Curriculum(), zap.NewNop())
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	before, _ := s.Curriculum().ListChapters(ctx, Elementary, 3)

	n2, err := SeedDefault(ctx, s.Curriculum(), zap.NewNop())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n1 != n2 {
		t.Errorf("expected same unit count, got %d and %d", n1, n2)
	}

	after, _ := s.Curriculum().ListChapters(ctx, Elementary, 3)
	if len(before) != 2 || len(after) != 2 {
		t.Fatalf("expected 2 grade-3 chapters, got %d and %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Errorf("chapter %q changed ID from %d to %d", before[i].Name, before[i].ID, after[i].ID)
		}
		if len(after[i].Units) != len(before[i].Units) {
			t.Errorf("chapter %q unit count changed", before[i].Name)
		}
	}
}

func TestCatalogChaptersAndCache(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := SeedDefault(ctx, s.Curriculum(), zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	cache := newMemCache()
	cat := NewCatalog(s.Curriculum(), zap.NewNop(), WithCache(cache, time.Minute))

	chapters, err := cat.Chapters(ctx, High, 1)
	if err != nil {
		t.Fatalf("Chapters: %v", err)
	}
	if len(chapters) != 3 || chapters[0].Name != "다항식" {
		t.Fatalf("unexpected chapters: %+v", chapters)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("expected listing cached, got %d entries", len(cache.entries))
	}

	// Served from cache even after the key is changed underneath.
	key := "mathdaily:curriculum:high:1"
	cache.entries[key] = []byte(`[{"id":1,"name":"cached","units":[]}]`)
	chapters, _ = cat.Chapters(ctx, High, 1)
	if len(chapters) != 1 || chapters[0].Name != "cached" {
		t.Errorf("expected cached listing, got %+v", chapters)
	}

	cache.failGet = true
	chapters, err = cat.Chapters(ctx, High, 1)
	if err != nil || len(chapters) != 3 {
		t.Errorf("expected store fallback on cache failure, got %d, %v", len(chapters), err)
	}

	empty, err := cat.Chapters(ctx, Middle, 9)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty listing, got %v, %v", empty, err)
	}
}

func TestCatalogUnit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := SeedDefault(ctx, s.Curriculum(), zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	cat := NewCatalog(s.Curriculum(), zap.NewNop())

	names, err := cat.UnitNames(ctx, Middle, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 4 {
		t.Fatalf("expected 4 units, got %v", names)
	}

	chapters, _ := cat.Chapters(ctx, Middle, 3)
	id := chapters[1].Units[0].ID
	info, err := cat.Unit(ctx, id)
	if err != nil {
		t.Fatalf("Unit: %v", err)
	}
	if info.Name != "인수분해" || info.SchoolLevel != Middle || info.Grade != 3 || info.ChapterName != "이차방정식" {
		t.Errorf("unexpected unit info: %+v", info)
	}

	if _, err := cat.Unit(ctx, 99999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
}

func TestContextFor(t *testing.T) {
	tests := []struct {
		level     string
		grade     int
		wantLabel string
	}{
		{Elementary, 3, "초등학교 3학년"},
		{Middle, 2, "중학교 2학년"},
		{High, 1, "고등학교 1학년 (공통수학1, 2)"},
		{High, 3, "고등학교 3학년 (미적분/확통/기하)"},
		{High, 4, "고등학교 4학년"},
		{"college", 1, "학년 미상"},
	}
	for _, tt := range tests {
		gc := ContextFor(tt.level, tt.grade)
		if gc.Label != tt.wantLabel {
			t.Errorf("ContextFor(%s, %d) = %q, want %q", tt.level, tt.grade, gc.Label, tt.wantLabel)
		}
		if gc.Scope == "" {
			t.Errorf("ContextFor(%s, %d) has empty scope", tt.level, tt.grade)
		}
	}
}

func TestValidateGrade(t *testing.T) {
	tests := []struct {
		level string
		grade int
		ok    bool
	}{
		{Elementary, 1, true},
		{Elementary, 6, true},
		{Elementary, 7, false},
		{Middle, 3, true},
		{Middle, 0, false},
		{High, 4, false},
		{"kindergarten", 1, false},
	}
	for _, tt := range tests {
		err := ValidateGrade(tt.level, tt.grade)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateGrade(%s, %d) = %v, want ok=%v", tt.level, tt.grade, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("expected ErrInvalidGrade, got %v", err)
		}
	}
}

func TestNewStudent(t *testing.T) {
	st := NewStudent("kim")
	if st.ID != "kim" || st.SchoolLevel != Elementary || st.Grade != 3 {
		t.Errorf("unexpected identity %+v", st)
	}
	if st.RecentAccuracy != 0.7 || st.DifficultyLevel != 2 {
		t.Errorf("expected accuracy 0.7 and level 2, got %v and %d", st.RecentAccuracy, st.DifficultyLevel)
	}
	if err := ValidateGrade(st.SchoolLevel, st.Grade); err != nil {
		t.Errorf("default grade must be valid: %v", err)
	}
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisCache(ctx, ""); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewRedisCache(ctx, "http://not-redis"); err == nil {
		t.Error("expected error for non-redis scheme")
	}
}
