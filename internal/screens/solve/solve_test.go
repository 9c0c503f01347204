package solve

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdaily/internal/app"
	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/difficulty"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/planner"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

type fakeService struct {
	problems  []problemgen.Problem
	genErr    error
	analyzed  []diagnosis.Input
	submitted []float64
}

func (f *fakeService) PlanAndGenerate(_ context.Context, _ worksheet.GenerateRequest) ([]problemgen.Problem, error) {
	return f.problems, f.genErr
}

func (f *fakeService) AnalyzeWrongAnswer(_ context.Context, in diagnosis.Input) (*diagnosis.Record, error) {
	f.analyzed = append(f.analyzed, in)
	return &diagnosis.Record{Kind: diagnosis.KindCalculation, Reasoning: "받아올림을 빠뜨렸어요", Advice: "자리를 맞춰 쓰세요"}, nil
}

func (f *fakeService) RecordSubmissionAccuracy(_ context.Context, _ string, acc float64, _ *int) (*worksheet.SubmissionResult, error) {
	f.submitted = append(f.submitted, acc)
	return &worksheet.SubmissionResult{
		LevelShift:     difficulty.DecideLevelShift(acc),
		Level:          2,
		RecentAccuracy: acc,
	}, nil
}

func (f *fakeService) Tutor(context.Context, []llm.Message, string) (string, error) {
	return "", nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testProblems() []problemgen.Problem {
	return []problemgen.Problem{
		{
			ID: "p1", Topic: "덧셈", Tier: difficulty.Easy, Category: planner.CategoryReview,
			Question: "27 + 35 = ?", Options: []string{"52", "62", "63", "61"}, Answer: "62",
			Explanation: "일의 자리에서 받아올림합니다.",
		},
		{
			ID: "p2", Topic: "분수의 덧셈", Tier: difficulty.Medium, Category: planner.CategoryCurrent,
			Question: "3/4 + 1/8 = ?", Options: []string{"7/8", "4/12", "1", "5/8"}, Answer: "7/8",
			Explanation: "통분하면 6/8 + 1/8 입니다.",
		},
	}
}

func startScreen(t *testing.T, svc *fakeService) *Screen {
	t.Helper()
	s := New(context.Background(), svc, worksheet.GenerateRequest{StudentID: "kim", Count: 2})
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(1500 * time.Millisecond)
		return clock
	}
	s.Update(s.Init()())
	return s
}

func TestSolveFullWorksheet(t *testing.T) {
	svc := &fakeService{problems: testProblems()}
	s := startScreen(t, svc)

	if s.phase != phaseAnswering {
		t.Fatalf("expected answering phase, got %d", s.phase)
	}
	if view := s.View(100, 30); !strings.Contains(view, "27 + 35 = ?") {
		t.Errorf("expected question in view, got %q", view)
	}

	// Correct answer: no analysis.
	_, cmd := s.Update(keyPress('2'))
	if cmd != nil {
		t.Error("expected no command after a correct answer")
	}
	if s.phase != phaseFeedback || !s.answers[0].Correct {
		t.Fatal("expected correct feedback")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.index != 1 || s.phase != phaseAnswering {
		t.Fatalf("expected second problem, got index %d", s.index)
	}

	// Wrong answer: analysis runs with the elapsed time.
	_, cmd = s.Update(keyPress('3'))
	if cmd == nil {
		t.Fatal("expected an analysis command")
	}
	s.Update(cmd())
	if len(svc.analyzed) != 1 {
		t.Fatalf("expected one analysis, got %d", len(svc.analyzed))
	}
	in := svc.analyzed[0]
	if in.ProblemID != "p2" || in.SubmittedAnswer != "1" || in.CorrectAnswer != "7/8" {
		t.Errorf("unexpected analysis input %+v", in)
	}
	if in.ResponseTimeMs != 1500 {
		t.Errorf("expected 1500ms response time, got %d", in.ResponseTimeMs)
	}
	if s.analysis == nil || s.analyzing {
		t.Error("expected analysis to be shown")
	}
	if view := s.View(100, 30); !strings.Contains(view, "자리를 맞춰 쓰세요") {
		t.Error("expected advice in feedback view")
	}

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	s.Update(cmd())
	if len(svc.submitted) != 1 || svc.submitted[0] != 0.5 {
		t.Errorf("expected accuracy 0.5 submitted, got %v", svc.submitted)
	}
}

func TestSolveStaleAnalysisIgnored(t *testing.T) {
	s := startScreen(t, &fakeService{problems: testProblems()})
	s.Update(keyPress('1'))
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	s.Update(analysisDoneMsg{Index: 0, Record: &diagnosis.Record{Advice: "old"}})
	if s.analysis != nil {
		t.Error("expected analysis for an earlier problem to be ignored")
	}
}

func TestSolveQuitWithoutAnswers(t *testing.T) {
	svc := &fakeService{problems: testProblems()}
	s := startScreen(t, svc)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if !s.quitConfirm {
		t.Fatal("expected quit confirmation")
	}
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(app.PopMsg); !ok {
		t.Error("expected PopMsg")
	}
	if len(svc.submitted) != 0 {
		t.Error("expected nothing submitted")
	}
}

func TestSolveQuitEarlySubmitsAnswered(t *testing.T) {
	svc := &fakeService{problems: testProblems()}
	s := startScreen(t, svc)
	s.Update(keyPress('2'))

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	cmd()
	if len(svc.submitted) != 1 || svc.submitted[0] != 1 {
		t.Errorf("expected accuracy 1 submitted, got %v", svc.submitted)
	}
}

func TestSolveGenerationError(t *testing.T) {
	s := startScreen(t, &fakeService{genErr: errors.New("quota exceeded")})
	if s.phase != phaseError {
		t.Fatalf("expected error phase, got %d", s.phase)
	}
	if view := s.View(100, 30); !strings.Contains(view, "quota exceeded") {
		t.Error("expected error text in view")
	}
	_, cmd := s.Update(keyPress('x'))
	if _, ok := cmd().(app.PopMsg); !ok {
		t.Error("expected PopMsg")
	}
}

func TestSolveAskTutor(t *testing.T) {
	s := startScreen(t, &fakeService{problems: testProblems()})
	s.Update(keyPress('1'))

	_, cmd := s.Update(keyPress('?'))
	if cmd == nil {
		t.Fatal("expected a push command")
	}
	push, ok := cmd().(app.PushMsg)
	if !ok {
		t.Fatal("expected PushMsg")
	}
	if push.Screen.Title() != "AI 선생님" {
		t.Errorf("expected tutor screen, got %q", push.Screen.Title())
	}
}
