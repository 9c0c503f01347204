// Package summary shows the result of a finished worksheet.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdaily/internal/app"
	"github.com/abhisek/mathdaily/internal/mastery"
	"github.com/abhisek/mathdaily/internal/ui/components"
	"github.com/abhisek/mathdaily/internal/ui/layout"
	"github.com/abhisek/mathdaily/internal/ui/theme"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

// Miss is one wrongly answered problem.
type Miss struct {
	Number   int
	Question string
	Chosen   string
	Answer   string
}

// Summary is what the screen shows.
type Summary struct {
	Answered int
	Total    int
	Accuracy float64
	Result   *worksheet.SubmissionResult
	Misses   []Miss
}

// Screen displays a Summary.
type Screen struct {
	summary Summary
}

var _ app.Screen = (*Screen)(nil)
var _ app.KeyHintProvider = (*Screen)(nil)

// New creates a Screen.
func New(s Summary) *Screen {
	return &Screen{summary: s}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "학습 결과"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "끝내기"}}
}

func (s *Screen) Update(msg tea.Msg) (app.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, "오늘의 학습지를 마쳤어요!"))
	b.WriteString("\n\n")

	correct := int(sum.Accuracy*float64(sum.Answered) + 0.5)
	score := fmt.Sprintf("%d문제 중 %d문제 정답", sum.Answered, correct)
	if sum.Answered < sum.Total {
		score += fmt.Sprintf(" (전체 %d문제)", sum.Total)
	}
	b.WriteString(layout.Centered(width, theme.Body, score))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Body,
		components.NewProgressBar("정답률", sum.Accuracy, true, min(width-8, 50)).View()))
	b.WriteString("\n\n")

	if r := sum.Result; r != nil {
		style := theme.Body
		switch {
		case r.Delta > 0:
			style = theme.Correct
		case r.Delta < 0:
			style = theme.Incorrect
		}
		b.WriteString(layout.Centered(width, style, r.Message))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Dim,
			fmt.Sprintf("난이도 %d단계 · 최근 정답률 %d%%", r.Level, int(r.RecentAccuracy*100+0.5))))
		b.WriteString("\n")
		if r.Mastery != nil {
			b.WriteString(layout.Centered(width, theme.Highlight, masteryLine(r.Mastery, r.Transition)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sum.Misses) > 0 {
		b.WriteString(layout.Centered(width, theme.Highlight, "다시 볼 문제"))
		b.WriteString("\n")
		for _, m := range sum.Misses {
			line := fmt.Sprintf("%d. %s  (고른 답 %s, 정답 %s)", m.Number, truncate(m.Question, 40), m.Chosen, m.Answer)
			b.WriteString(layout.Centered(width, theme.Dim, line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func masteryLine(m *mastery.UnitMastery, t *mastery.StateTransition) string {
	line := fmt.Sprintf("단원 숙련도 %d%%", int(m.Score*100+0.5))
	if t != nil && t.To == mastery.StateMastered {
		line += " · 단원을 완전히 익혔어요!"
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
