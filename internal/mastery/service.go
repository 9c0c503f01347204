// Package mastery tracks a smoothed per-unit score for each student.
package mastery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/store"
)

// Weight of the newest submission in the exponential moving average.
const Smoothing = 0.3

// Smooth folds accuracy into the previous score. The first submission
// sets the score directly.
func Smooth(prev float64, attempts int, accuracy float64) float64 {
	if attempts == 0 {
		return accuracy
	}
	return prev*(1-Smoothing) + accuracy*Smoothing
}

// UnitMastery is the mastery of one unit as shown to callers.
type UnitMastery struct {
	UnitID   int          `json:"unit_id"`
	Score    float64      `json:"score"`
	Attempts int          `json:"attempts"`
	State    MasteryState `json:"state"`
}

// Service updates unit mastery from graded submissions.
type Service struct {
	repo store.MasteryRepo
	log  *zap.Logger
}

// NewService creates a mastery service over repo.
func NewService(repo store.MasteryRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log.Named("mastery")}
}

// RecordAccuracy folds one submission's accuracy into the unit's score.
// It returns the updated mastery and a transition when the state changed.
func (s *Service) RecordAccuracy(ctx context.Context, studentID string, unitID int, accuracy float64) (*UnitMastery, *StateTransition, error) {
	prev, err := s.repo.Get(ctx, studentID, unitID)
	if err != nil {
		return nil, nil, fmt.Errorf("load mastery: %w", err)
	}

	var score float64
	var attempts int
	if prev != nil {
		score, attempts = prev.Score, prev.Attempts
	}
	before := StateFor(score, attempts)

	next := store.UnitMastery{
		StudentID: studentID,
		UnitID:    unitID,
		Score:     Smooth(score, attempts, accuracy),
		Attempts:  attempts + 1,
	}
	if err := s.repo.Upsert(ctx, next); err != nil {
		return nil, nil, err
	}

	out := &UnitMastery{
		UnitID:   unitID,
		Score:    next.Score,
		Attempts: next.Attempts,
		State:    StateFor(next.Score, next.Attempts),
	}

	var transition *StateTransition
	if out.State != before {
		transition = &StateTransition{UnitID: unitID, From: before, To: out.State}
		s.log.Info("mastery state changed",
			zap.String("student", studentID),
			zap.Int("unit", unitID),
			zap.String("from", string(before)),
			zap.String("to", string(out.State)))
	}
	return out, transition, nil
}

// List returns every unit the student has submitted work for.
func (s *Service) List(ctx context.Context, studentID string) ([]UnitMastery, error) {
	rows, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]UnitMastery, 0, len(rows))
	for _, r := range rows {
		out = append(out, UnitMastery{
			UnitID:   r.UnitID,
			Score:    r.Score,
			Attempts: r.Attempts,
			State:    StateFor(r.Score, r.Attempts),
		})
	}
	return out, nil
}
