// Package solve is the screen a student works through a worksheet on.
// Wrong answers are sent for analysis while the student reads the
// explanation, and the final accuracy is recorded when the sheet is done.
package solve

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdaily/internal/app"
	"github.com/abhisek/mathdaily/internal/diagnosis"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/screens/chat"
	"github.com/abhisek/mathdaily/internal/screens/summary"
	"github.com/abhisek/mathdaily/internal/ui/components"
	"github.com/abhisek/mathdaily/internal/ui/layout"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

// Service is the part of worksheet.Service the screen uses.
type Service interface {
	PlanAndGenerate(ctx context.Context, req worksheet.GenerateRequest) ([]problemgen.Problem, error)
	AnalyzeWrongAnswer(ctx context.Context, in diagnosis.Input) (*diagnosis.Record, error)
	RecordSubmissionAccuracy(ctx context.Context, studentID string, accuracy float64, unitID *int) (*worksheet.SubmissionResult, error)
	chat.Tutor
}

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseFeedback
	phaseSubmitting
	phaseError
)

// Answer is the student's response to one problem.
type Answer struct {
	Chosen  string
	Correct bool
	TimeMs  int
}

// Screen runs one worksheet.
type Screen struct {
	svc Service
	req worksheet.GenerateRequest
	ctx context.Context

	phase       phase
	problems    []problemgen.Problem
	index       int
	answers     []Answer
	choice      components.MultiChoice
	shownAt     time.Time
	analysis    *diagnosis.Record
	analyzing   bool
	quitConfirm bool
	errMsg      string

	now func() time.Time
}

var _ app.Screen = (*Screen)(nil)
var _ app.KeyHintProvider = (*Screen)(nil)

// New creates a Screen that generates a worksheet for req.
func New(ctx context.Context, svc Service, req worksheet.GenerateRequest) *Screen {
	return &Screen{svc: svc, req: req, ctx: ctx, now: time.Now}
}

func (s *Screen) Init() tea.Cmd {
	return s.generate()
}

func (s *Screen) Title() string {
	return "오늘의 학습지"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "그만하기"},
			{Key: "N", Description: "계속하기"},
		}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "다음 문제"},
			{Key: "?", Description: "선생님께 질문"},
		}
	case s.phase == phaseAnswering:
		return []layout.KeyHint{
			{Key: "1-4", Description: "선택"},
			{Key: "↑↓ Enter", Description: "이동/제출"},
			{Key: "Esc", Description: "그만하기"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "종료"}}
}

func (s *Screen) Update(msg tea.Msg) (app.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case worksheetReadyMsg:
		return s.handleReady(msg)
	case analysisDoneMsg:
		if msg.Index == s.index {
			s.analyzing = false
			if msg.Err == nil {
				s.analysis = msg.Record
			}
		}
		return s, nil
	case submittedMsg:
		return s.handleSubmitted(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleReady(msg worksheetReadyMsg) (app.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase = phaseError
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.problems = msg.Problems
	s.answers = make([]Answer, 0, len(msg.Problems))
	s.showProblem(0)
	return s, nil
}

func (s *Screen) showProblem(i int) {
	s.index = i
	s.phase = phaseAnswering
	s.analysis = nil
	s.analyzing = false
	p := s.problems[i]
	s.choice = components.NewMultiChoice(p.Options, p.Answer)
	s.shownAt = s.now()
}

func (s *Screen) handleKey(msg tea.KeyMsg) (app.Screen, tea.Cmd) {
	key := msg.String()

	if s.phase == phaseError {
		return s, func() tea.Msg { return app.PopMsg{} }
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			if len(s.answers) == 0 {
				return s, func() tea.Msg { return app.PopMsg{} }
			}
			return s.finish()
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseAnswering:
		if key == "esc" {
			s.quitConfirm = true
			return s, nil
		}
		s.choice = s.choice.Update(msg)
		if s.choice.Submitted {
			return s.answer()
		}
	case phaseFeedback:
		switch key {
		case "?":
			p := s.problems[s.index]
			return s, func() tea.Msg {
				return app.PushMsg{Screen: chat.New(s.ctx, s.svc, chat.ProblemContext(p.Question, p.Options, p.Answer))}
			}
		case "esc":
			s.quitConfirm = true
			return s, nil
		case "enter", " ":
			if s.index+1 < len(s.problems) {
				s.showProblem(s.index + 1)
				return s, nil
			}
			return s.finish()
		}
	}
	return s, nil
}

// answer records the submitted choice and starts the analysis of a wrong
// answer in the background.
func (s *Screen) answer() (app.Screen, tea.Cmd) {
	p := s.problems[s.index]
	a := Answer{
		Chosen:  s.choice.Chosen(),
		Correct: s.choice.IsCorrect(),
		TimeMs:  int(s.now().Sub(s.shownAt).Milliseconds()),
	}
	s.answers = append(s.answers, a)
	s.phase = phaseFeedback
	if a.Correct {
		return s, nil
	}

	s.analyzing = true
	index := s.index
	in := diagnosis.Input{
		StudentID:       s.req.StudentID,
		ProblemID:       p.ID,
		SubmittedAnswer: a.Chosen,
		CorrectAnswer:   p.Answer,
		QuestionText:    p.Question,
		ResponseTimeMs:  a.TimeMs,
	}
	return s, func() tea.Msg {
		rec, err := s.svc.AnalyzeWrongAnswer(s.ctx, in)
		return analysisDoneMsg{Index: index, Record: rec, Err: err}
	}
}

// Accuracy is the share of answered problems answered correctly.
func (s *Screen) Accuracy() float64 {
	if len(s.answers) == 0 {
		return 0
	}
	correct := 0
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(s.answers))
}

func (s *Screen) finish() (app.Screen, tea.Cmd) {
	s.phase = phaseSubmitting
	acc := s.Accuracy()
	return s, func() tea.Msg {
		res, err := s.svc.RecordSubmissionAccuracy(s.ctx, s.req.StudentID, acc, s.req.UnitID)
		return submittedMsg{Result: res, Err: err}
	}
}

func (s *Screen) handleSubmitted(msg submittedMsg) (app.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase = phaseError
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	var wrong []summary.Miss
	for i, a := range s.answers {
		if !a.Correct {
			wrong = append(wrong, summary.Miss{
				Number:   i + 1,
				Question: s.problems[i].Question,
				Chosen:   a.Chosen,
				Answer:   s.problems[i].Answer,
			})
		}
	}
	sum := summary.Summary{
		Answered: len(s.answers),
		Total:    len(s.problems),
		Accuracy: s.Accuracy(),
		Result:   msg.Result,
		Misses:   wrong,
	}
	status := app.StatusMsg{
		StudentID: s.req.StudentID,
		Level:     msg.Result.Level,
		Accuracy:  msg.Result.RecentAccuracy,
	}
	return s, tea.Sequence(
		func() tea.Msg { return status },
		func() tea.Msg { return app.PushMsg{Screen: summary.New(sum)} },
	)
}

func (s *Screen) generate() tea.Cmd {
	req := s.req
	return func() tea.Msg {
		problems, err := s.svc.PlanAndGenerate(s.ctx, req)
		return worksheetReadyMsg{Problems: problems, Err: err}
	}
}
