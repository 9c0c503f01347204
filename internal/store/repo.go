package store

import (
	"context"
	"time"
)

// Student is the persisted learner profile.
type Student struct {
	ID              string
	SchoolLevel     string
	Grade           int
	RecentAccuracy  float64
	DifficultyLevel int
	WeakTopics      []string
	CurrentTopics   []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Chapter is a curriculum chapter for one (school level, grade).
type Chapter struct {
	ID          int
	SchoolLevel string
	Grade       int
	Name        string
	Position    int
	Units       []Unit
}

// Unit is a leaf of the curriculum tree.
type Unit struct {
	ID        int
	ChapterID int
	Name      string
	Position  int
}

// ProblemRecord is a generated worksheet item as stored.
type ProblemRecord struct {
	ID          string
	StudentID   string
	UnitID      *int
	Topic       string
	Tier        int
	Category    string
	Question    string
	Options     []string
	Answer      string
	Explanation string
	Diagram     string
	CreatedAt   time.Time
}

// WeaknessRecord is one analyzed wrong answer. Rows are append-only.
type WeaknessRecord struct {
	ID              string
	StudentID       string
	ProblemID       string
	Topic           string
	SubmittedAnswer string
	ErrorKind       string
	Reasoning       string
	Advice          string
	Severity        int
	CreatedAt       time.Time
}

// Submission is one graded worksheet session.
type Submission struct {
	ID        int64
	StudentID string
	Accuracy  float64
	UnitID    *int
	CreatedAt time.Time
}

// UnitMastery is the smoothed accuracy of a student on one unit.
type UnitMastery struct {
	StudentID string
	UnitID    int
	Score     float64
	Attempts  int
	UpdatedAt time.Time
}

// StudentRepo persists student profiles.
type StudentRepo interface {
	// Get returns ErrNotFound when the student does not exist.
	Get(ctx context.Context, id string) (*Student, error)

	// GetOrCreate returns the stored profile, inserting defaults first
	// when none exists.
	GetOrCreate(ctx context.Context, defaults Student) (*Student, error)

	// Save updates every mutable column of an existing profile.
	Save(ctx context.Context, st *Student) error

	// AddWeakTopic adds topic to the weak set. It reports whether the set
	// changed.
	AddWeakTopic(ctx context.Context, id, topic string) (bool, error)
}

// CurriculumRepo persists the chapter/unit catalog.
type CurriculumRepo interface {
	// UpsertChapter inserts or refreshes a chapter keyed on
	// (school level, grade, name) and returns its ID.
	UpsertChapter(ctx context.Context, ch Chapter) (int, error)

	// UpsertUnit inserts or refreshes a unit keyed on (chapter, name)
	// and returns its ID.
	UpsertUnit(ctx context.Context, u Unit) (int, error)

	// ListChapters returns chapters with their units, ordered by position.
	ListChapters(ctx context.Context, schoolLevel string, grade int) ([]Chapter, error)

	GetUnit(ctx context.Context, id int) (*Unit, error)
	GetChapter(ctx context.Context, id int) (*Chapter, error)
}

// ProblemRepo persists generated problems.
type ProblemRepo interface {
	// SaveBatch writes all records in one transaction.
	SaveBatch(ctx context.Context, recs []ProblemRecord) error
	Get(ctx context.Context, id string) (*ProblemRecord, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]ProblemRecord, error)
}

// WeaknessRepo persists analyzed wrong answers.
type WeaknessRepo interface {
	// Append inserts a new record. Existing records are never touched.
	Append(ctx context.Context, rec WeaknessRecord) error
	ListByStudent(ctx context.Context, studentID string, limit int) ([]WeaknessRecord, error)
	CountByTopic(ctx context.Context, studentID, topic string) (int, error)
}

// SubmissionRepo persists graded sessions.
type SubmissionRepo interface {
	Append(ctx context.Context, sub Submission) error

	// Recent returns up to n accuracies, newest first.
	Recent(ctx context.Context, studentID string, n int) ([]float64, error)
}

// MasteryRepo persists per-unit mastery.
type MasteryRepo interface {
	// Get returns nil without error when nothing is stored yet.
	Get(ctx context.Context, studentID string, unitID int) (*UnitMastery, error)
	Upsert(ctx context.Context, m UnitMastery) error
	ListByStudent(ctx context.Context, studentID string) ([]UnitMastery, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact match when non-empty
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates events by a grouping key (purpose or model).
type LLMUsage struct {
	Key          string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
