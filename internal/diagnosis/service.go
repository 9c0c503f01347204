// Package diagnosis records analyzed wrong answers and promotes topics
// that keep going wrong into a student's weak topics.
package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/curriculum"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/store"
)

// WeakTopicThreshold is the number of weakness records on one topic that
// makes it a weak topic.
const WeakTopicThreshold = 3

// ErrAnalysisFailed is returned when the wrong answer could not be
// analyzed. Nothing is stored in that case.
var ErrAnalysisFailed = errors.New("error analysis failed")

// Recorder analyzes wrong answers and appends weakness records.
type Recorder struct {
	analyzer    *Analyzer
	classifiers []Classifier
	problems    store.ProblemRepo
	weaknesses  store.WeaknessRepo
	students    store.StudentRepo
	log         *zap.Logger
}

// NewRecorder creates a Recorder backed by provider and the given repos.
func NewRecorder(provider llm.Provider, problems store.ProblemRepo, weaknesses store.WeaknessRepo,
	students store.StudentRepo, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		analyzer:    NewAnalyzer(provider, DefaultAnalyzerConfig()),
		classifiers: DefaultClassifiers(),
		problems:    problems,
		weaknesses:  weaknesses,
		students:    students,
		log:         log.Named("diagnosis"),
	}
}

// RecordError analyzes one wrong answer and appends exactly one weakness
// record. Earlier records are never modified. Once the student has
// WeakTopicThreshold records on the problem's topic, the topic joins the
// student's weak topics.
func (r *Recorder) RecordError(ctx context.Context, in Input) (*Record, error) {
	log := r.log.With(zap.String("student", in.StudentID), zap.String("problem", in.ProblemID))

	topic := r.lookupProblem(ctx, &in, log)

	student, err := r.students.GetOrCreate(ctx, curriculum.NewStudent(in.StudentID))
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}

	hint := RunClassifiers(r.classifiers, &ClassifyInput{
		ResponseTimeMs: in.ResponseTimeMs,
		RecentAccuracy: student.RecentAccuracy,
	})

	analysis, err := r.analyzer.Analyze(ctx, &AnalysisRequest{
		Topic:           topic,
		QuestionText:    in.QuestionText,
		CorrectAnswer:   in.CorrectAnswer,
		SubmittedAnswer: in.SubmittedAnswer,
		Hint:            hint,
	})
	if err != nil {
		log.Warn("analysis failed", zap.String("kind", llm.ErrorKind(err)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	rec := &Record{
		ID:              uuid.NewString(),
		StudentID:       in.StudentID,
		ProblemID:       in.ProblemID,
		Topic:           topic,
		SubmittedAnswer: in.SubmittedAnswer,
		Kind:            analysis.Kind,
		Reasoning:       analysis.Reasoning,
		Advice:          analysis.Advice,
		Severity:        analysis.Severity,
		CreatedAt:       time.Now(),
	}
	stored := store.WeaknessRecord{
		ID:              rec.ID,
		StudentID:       rec.StudentID,
		ProblemID:       rec.ProblemID,
		Topic:           rec.Topic,
		SubmittedAnswer: rec.SubmittedAnswer,
		ErrorKind:       string(rec.Kind),
		Reasoning:       rec.Reasoning,
		Advice:          rec.Advice,
		Severity:        rec.Severity,
		CreatedAt:       rec.CreatedAt,
	}
	if err := r.weaknesses.Append(ctx, stored); err != nil {
		return nil, fmt.Errorf("append weakness record: %w", err)
	}

	log.Info("weakness recorded",
		zap.String("topic", topic),
		zap.String("error_type", string(rec.Kind)),
		zap.Int("severity", rec.Severity))

	if topic == "" {
		return rec, nil
	}
	// The record is stored at this point. A failed promotion is retried
	// by the next record on the same topic.
	rec.PromotedTopic = r.promote(ctx, in.StudentID, topic, log)
	return rec, nil
}

// promote adds topic to the student's weak topics once it has
// WeakTopicThreshold records. It reports whether the topic was added.
func (r *Recorder) promote(ctx context.Context, studentID, topic string, log *zap.Logger) bool {
	count, err := r.weaknesses.CountByTopic(ctx, studentID, topic)
	if err != nil {
		log.Warn("count weakness records failed", zap.String("topic", topic), zap.Error(err))
		return false
	}
	if count < WeakTopicThreshold {
		return false
	}
	added, err := r.students.AddWeakTopic(ctx, studentID, topic)
	if err != nil {
		log.Warn("add weak topic failed", zap.String("topic", topic), zap.Error(err))
		return false
	}
	if added {
		log.Info("weak topic added", zap.String("topic", topic), zap.Int("records", count))
	}
	return added
}

// lookupProblem returns the stored problem's topic and fills question and
// answer text the caller left blank. Unknown problems yield "".
func (r *Recorder) lookupProblem(ctx context.Context, in *Input, log *zap.Logger) string {
	if in.ProblemID == "" {
		return ""
	}
	p, err := r.problems.Get(ctx, in.ProblemID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("problem lookup failed", zap.Error(err))
		}
		return ""
	}
	if in.QuestionText == "" {
		in.QuestionText = p.Question
	}
	if in.CorrectAnswer == "" {
		in.CorrectAnswer = p.Answer
	}
	return p.Topic
}
