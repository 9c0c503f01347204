package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdaily/internal/difficulty"
	"github.com/abhisek/mathdaily/internal/mastery"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

func testSummary() Summary {
	return Summary{
		Answered: 10,
		Total:    10,
		Accuracy: 0.9,
		Result: &worksheet.SubmissionResult{
			LevelShift:     difficulty.DecideLevelShift(0.9),
			Level:          3,
			RecentAccuracy: 0.82,
			Mastery:        &mastery.UnitMastery{UnitID: 4, Score: 0.9, Attempts: 3, State: mastery.StateMastered},
			Transition:     &mastery.StateTransition{UnitID: 4, From: mastery.StateLearning, To: mastery.StateMastered},
		},
		Misses: []Miss{{Number: 7, Question: "3/4 + 1/8 = ?", Chosen: "1", Answer: "7/8"}},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary())
	if s.Title() != "학습 결과" {
		t.Errorf("Title = %q, want %q", s.Title(), "학습 결과")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testSummary()).View(100, 30)
	for _, want := range []string{"10문제 중 9문제 정답", difficulty.MsgLevelUp, "난이도 3단계", "단원을 완전히 익혔어요", "3/4 + 1/8"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestSummaryScreen_Partial(t *testing.T) {
	sum := testSummary()
	sum.Answered = 4
	sum.Accuracy = 0.5
	view := New(sum).View(100, 30)
	if !strings.Contains(view, "4문제 중 2문제 정답 (전체 10문제)") {
		t.Error("expected partial score line")
	}
}

func TestSummaryScreen_EnterQuits(t *testing.T) {
	s := New(testSummary())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("가나다라마", 3); got != "가나…" {
		t.Errorf("expected 가나…, got %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
