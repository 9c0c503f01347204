// Package worksheet is the application layer shared by the HTTP server
// and the CLI. It resolves who a worksheet is for, plans it, generates it
// and feeds graded results back into the student's profile.
package worksheet

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/curriculum"
	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/difficulty"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/mastery"
	"github.com/abhisek/mathdaily/internal/planner"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/store"
	"github.com/abhisek/mathdaily/internal/tutor"
)

// Request limits.
const (
	DefaultCount = 10
	MaxCount     = 30

	// AccuracyWindow is the number of recent submissions averaged into
	// a student's rolling accuracy.
	AccuracyWindow = 5
)

var (
	// ErrGenerationFailed is returned when a worksheet came back empty.
	// The cause (problemgen.ErrEmptyResult and, when known, the upstream
	// error) is wrapped alongside it.
	ErrGenerationFailed = errors.New("worksheet generation failed")

	// ErrUnitNotFound is returned for a unit ID missing from the catalog.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrInvalidAccuracy is returned for an accuracy outside [0, 1].
	ErrInvalidAccuracy = errors.New("accuracy must be between 0 and 1")

	// ErrInvalidRequest is returned for a malformed request.
	ErrInvalidRequest = errors.New("invalid request")
)

// Config tunes the service.
type Config struct {
	Generation     problemgen.Config
	RewriteTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog replaces the uncached catalog built from the store.
func WithCatalog(c *curriculum.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithPlannerSource makes every plan draw from a source returned by fn.
func WithPlannerSource(fn func() rand.Source) Option {
	return func(s *Service) { s.plannerSource = fn }
}

// WithChunkObserver reports generation chunk outcomes to obs.
func WithChunkObserver(obs problemgen.ChunkObserver) Option {
	return func(s *Service) { s.genOpts = append(s.genOpts, problemgen.WithChunkObserver(obs)) }
}

// Service implements the worksheet operations.
type Service struct {
	students    store.StudentRepo
	problems    store.ProblemRepo
	submissions store.SubmissionRepo

	provider  llm.Provider
	catalog   *curriculum.Catalog
	generator *problemgen.Generator
	recorder  *diagnosis.Recorder
	mastery   *mastery.Service
	rewriter  *tutor.Rewriter
	tutor     *tutor.Tutor

	plannerSource func() rand.Source
	genOpts       []problemgen.Option
	priorLimit    int
	log           *zap.Logger
}

// New wires a Service over st and provider.
func New(st *store.Store, provider llm.Provider, cfg Config, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		students:    st.Students(),
		problems:    st.Problems(),
		submissions: st.Submissions(),
		provider:    provider,
		log:         log.Named("worksheet"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = curriculum.NewCatalog(st.Curriculum(), log)
	}
	if s.plannerSource == nil {
		s.plannerSource = func() rand.Source { return nil }
	}

	s.generator = problemgen.New(provider, cfg.Generation, log, s.genOpts...)
	s.priorLimit = cfg.Generation.MaxPriorQuestions
	s.recorder = diagnosis.NewRecorder(provider, st.Problems(), st.Weaknesses(), st.Students(), log)
	s.mastery = mastery.NewService(st.Mastery(), log)
	s.rewriter = tutor.NewRewriter(provider, cfg.RewriteTimeout, log)
	s.tutor = tutor.New(provider, log)
	return s
}

// GenerateRequest asks for one worksheet. SchoolLevel and Grade override
// the student's grade when both are set; UnitID selects a single-unit
// drill worksheet.
type GenerateRequest struct {
	StudentID   string
	Count       int
	UnitID      *int
	SchoolLevel string
	Grade       int
}

// PlanAndGenerate plans a worksheet for the student, generates it and
// stores the problems. Generation happens before, not inside, the write
// transaction.
func (s *Service) PlanAndGenerate(ctx context.Context, req GenerateRequest) ([]problemgen.Problem, error) {
	if req.StudentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}
	if req.Count == 0 {
		req.Count = DefaultCount
	}
	if req.Count < 1 || req.Count > MaxCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidRequest, MaxCount)
	}
	if req.Grade != 0 || req.SchoolLevel != "" {
		if err := curriculum.ValidateGrade(req.SchoolLevel, req.Grade); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	log := s.log.With(zap.String("student", req.StudentID))

	student, err := s.students.GetOrCreate(ctx, curriculum.NewStudent(req.StudentID))
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}

	var unit *curriculum.UnitInfo
	if req.UnitID != nil {
		if unit, err = s.resolveUnit(ctx, *req.UnitID); err != nil {
			return nil, err
		}
	}

	grade := resolveGrade(req, unit, student)
	plan, err := s.plan(ctx, req.Count, unit, student, grade)
	if err != nil {
		return nil, err
	}

	prior := s.priorQuestions(ctx, req.StudentID, log)

	problems, err := s.generator.GenerateAvoiding(ctx, plan, grade, prior)
	if err != nil {
		log.Error("worksheet generation failed", zap.Int("planned", len(plan)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if err := s.problems.SaveBatch(ctx, toRecords(req.StudentID, req.UnitID, problems)); err != nil {
		return nil, fmt.Errorf("save problems: %w", err)
	}

	log.Info("worksheet generated",
		zap.String("grade", grade.Label),
		zap.Int("planned", len(plan)),
		zap.Int("generated", len(problems)))
	return problems, nil
}

func (s *Service) resolveUnit(ctx context.Context, id int) (*curriculum.UnitInfo, error) {
	unit, err := s.catalog.Unit(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUnitNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve unit %d: %w", id, err)
	}
	return unit, nil
}

// resolveGrade picks the grade in priority order: the request, the
// selected unit's chapter, then the student's profile.
func resolveGrade(req GenerateRequest, unit *curriculum.UnitInfo, st *store.Student) curriculum.GradeContext {
	switch {
	case req.SchoolLevel != "" && req.Grade > 0:
		return curriculum.ContextFor(req.SchoolLevel, req.Grade)
	case unit != nil:
		return curriculum.ContextFor(unit.SchoolLevel, unit.Grade)
	case st.SchoolLevel != "" && st.Grade > 0:
		return curriculum.ContextFor(st.SchoolLevel, st.Grade)
	default:
		return curriculum.ContextFor(curriculum.DefaultSchoolLevel, curriculum.DefaultGrade)
	}
}

func (s *Service) plan(ctx context.Context, count int, unit *curriculum.UnitInfo, st *store.Student, grade curriculum.GradeContext) ([]planner.Item, error) {
	p := planner.New(s.plannerSource())
	if unit != nil {
		return p.BuildUnitPlan(unit.Name, count), nil
	}

	catalogTopics, err := s.catalog.UnitNames(ctx, grade.SchoolLevel, grade.Grade)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(st.WeakTopics) == 0 && len(st.CurrentTopics) == 0 {
		return p.BuildCatalogPlan(catalogTopics, count), nil
	}
	return p.BuildPlan(planner.Profile{
		RecentAccuracy: st.RecentAccuracy,
		WeakTopics:     st.WeakTopics,
		CurrentTopics:  st.CurrentTopics,
	}, catalogTopics, count), nil
}

// priorQuestions returns the student's most recent questions. A lookup
// failure only costs the repetition hint.
func (s *Service) priorQuestions(ctx context.Context, studentID string, log *zap.Logger) []string {
	if s.priorLimit <= 0 {
		return nil
	}
	recs, err := s.problems.ListByStudent(ctx, studentID, s.priorLimit)
	if err != nil {
		log.Warn("prior question lookup failed", zap.Error(err))
		return nil
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Question)
	}
	return out
}

// SubmissionResult is the outcome of RecordSubmissionAccuracy.
type SubmissionResult struct {
	difficulty.LevelShift
	Level          int                      `json:"new_level"`
	RecentAccuracy float64                  `json:"recent_accuracy"`
	Mastery        *mastery.UnitMastery     `json:"mastery,omitempty"`
	Transition     *mastery.StateTransition `json:"-"`
}

// RecordSubmissionAccuracy stores a graded worksheet, recomputes the
// rolling accuracy over the last AccuracyWindow submissions and shifts the
// difficulty level from this submission's accuracy. With a unit, the
// unit's mastery is updated too.
func (s *Service) RecordSubmissionAccuracy(ctx context.Context, studentID string, accuracy float64, unitID *int) (*SubmissionResult, error) {
	if studentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}
	if !(accuracy >= 0 && accuracy <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAccuracy, accuracy)
	}
	if unitID != nil {
		if _, err := s.resolveUnit(ctx, *unitID); err != nil {
			return nil, err
		}
	}

	student, err := s.students.GetOrCreate(ctx, curriculum.NewStudent(studentID))
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}

	if err := s.submissions.Append(ctx, store.Submission{StudentID: studentID, Accuracy: accuracy, UnitID: unitID}); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}
	recent, err := s.submissions.Recent(ctx, studentID, AccuracyWindow)
	if err != nil {
		return nil, fmt.Errorf("load recent submissions: %w", err)
	}

	shift := difficulty.DecideLevelShift(accuracy)
	student.RecentAccuracy = mean(recent, accuracy)
	student.DifficultyLevel = shift.Apply(student.DifficultyLevel)
	if err := s.students.Save(ctx, student); err != nil {
		return nil, fmt.Errorf("save student: %w", err)
	}

	res := &SubmissionResult{
		LevelShift:     shift,
		Level:          student.DifficultyLevel,
		RecentAccuracy: student.RecentAccuracy,
	}
	if unitID != nil {
		res.Mastery, res.Transition, err = s.mastery.RecordAccuracy(ctx, studentID, *unitID, accuracy)
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("submission recorded",
		zap.String("student", studentID),
		zap.Float64("accuracy", accuracy),
		zap.Float64("recent_accuracy", res.RecentAccuracy),
		zap.Int("level_change", shift.Delta),
		zap.Int("level", res.Level))
	return res, nil
}

// mean averages values, or returns fallback when there are none.
func mean(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AnalyzeWrongAnswer classifies one wrong answer and records it. A failed
// analysis returns diagnosis.ErrAnalysisFailed and stores nothing.
func (s *Service) AnalyzeWrongAnswer(ctx context.Context, in diagnosis.Input) (*diagnosis.Record, error) {
	if in.StudentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}
	return s.recorder.RecordError(ctx, in)
}

// Rewrite returns a friendlier wording of text, or text itself when the
// rewrite fails.
func (s *Service) Rewrite(ctx context.Context, text string) string {
	return s.rewriter.Rewrite(ctx, text)
}

// Catalog lists the chapters of a grade.
func (s *Service) Catalog(ctx context.Context, level string, grade int) ([]curriculum.Chapter, error) {
	if err := curriculum.ValidateGrade(level, grade); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.catalog.Chapters(ctx, level, grade)
}

// Tutor returns the tutor's reply to a conversation about a problem.
func (s *Service) Tutor(ctx context.Context, messages []llm.Message, problemContext string) (string, error) {
	return s.tutor.Chat(ctx, messages, problemContext)
}

// CheckAI verifies that the configured model answers.
func (s *Service) CheckAI(ctx context.Context) (*tutor.CheckResult, error) {
	return tutor.Check(ctx, s.provider)
}

// Student returns the student's profile, creating the default one on
// first use.
func (s *Service) Student(ctx context.Context, id string) (*store.Student, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}
	return s.students.GetOrCreate(ctx, curriculum.NewStudent(id))
}

// SetCurrentTopics replaces the topics the student is working on.
func (s *Service) SetCurrentTopics(ctx context.Context, id string, topics []string) (*store.Student, error) {
	st, err := s.Student(ctx, id)
	if err != nil {
		return nil, err
	}
	st.CurrentTopics = dedupe(topics)
	if err := s.students.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save student: %w", err)
	}
	return st, nil
}

// Mastery lists the student's per-unit mastery.
func (s *Service) Mastery(ctx context.Context, id string) ([]mastery.UnitMastery, error) {
	return s.mastery.List(ctx, id)
}

// History returns up to limit stored problems of the student, newest
// first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]problemgen.Problem, error) {
	recs, err := s.problems.ListByStudent(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	return fromRecords(recs), nil
}
