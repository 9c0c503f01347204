package solve

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdaily/internal/planner"
	"github.com/abhisek/mathdaily/internal/ui/components"
	"github.com/abhisek/mathdaily/internal/ui/layout"
	"github.com/abhisek/mathdaily/internal/ui/theme"
)

var categoryNames = map[planner.Category]string{
	planner.CategoryReview:    "복습",
	planner.CategoryCurrent:   "현재 학습",
	planner.CategoryChallenge: "도전",
	planner.CategoryDrill:     "집중 연습",
}

func (s *Screen) View(width, height int) string {
	if s.quitConfirm {
		return renderQuitConfirm(width, len(s.answers))
	}
	switch s.phase {
	case phaseLoading:
		return layout.Centered(width, theme.Dim, "\n\n\n  학습지를 만들고 있어요...")
	case phaseSubmitting:
		return layout.Centered(width, theme.Dim, "\n\n\n  결과를 저장하고 있어요...")
	case phaseError:
		return layout.Centered(width, theme.Incorrect,
			fmt.Sprintf("\n\n\n  오류: %s\n\n  아무 키나 누르면 돌아갑니다.", s.errMsg))
	}
	return s.renderProblem(width)
}

func (s *Screen) renderProblem(width int) string {
	p := s.problems[s.index]
	var b strings.Builder

	correct := 0
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	info := theme.Highlight.Render(fmt.Sprintf("  %d/%d  %s", s.index+1, len(s.problems), p.Topic))
	tag := theme.Dim.Render(fmt.Sprintf("%s · %s   맞힌 문제 %d", categoryNames[p.Category], p.Tier, correct))
	if pad := width - lipgloss.Width(info) - lipgloss.Width(tag) - 4; pad > 0 {
		info += strings.Repeat(" ", pad) + tag
	}
	b.WriteString(info)
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", float64(len(s.answers))/float64(len(s.problems)), false, width-4).View())
	b.WriteString("\n\n")

	textWidth := min(width-8, 76)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Width(textWidth).Render(p.Question)))
	b.WriteString("\n")
	if p.Diagram != "" {
		b.WriteString(layout.Centered(width, theme.Hint, "(그림은 학습지 파일에서 볼 수 있어요)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))

	if s.phase == phaseFeedback {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width, textWidth))
	}
	return b.String()
}

func (s *Screen) renderFeedback(width, textWidth int) string {
	p := s.problems[s.index]
	last := s.answers[len(s.answers)-1]
	var b strings.Builder

	if last.Correct {
		b.WriteString(layout.Centered(width, theme.Correct, "정답이에요!"))
	} else {
		b.WriteString(layout.Centered(width, theme.Incorrect, "아쉬워요. 정답은 "+p.Answer))
	}
	b.WriteString("\n\n")

	if p.Explanation != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Card.Width(textWidth).Render(p.Explanation)))
		b.WriteString("\n")
	}

	switch {
	case s.analyzing:
		b.WriteString(layout.Centered(width, theme.Hint, "오답 원인을 분석하고 있어요..."))
	case s.analysis != nil:
		a := s.analysis
		b.WriteString(layout.Centered(width, theme.Highlight, fmt.Sprintf("[%s] %s", a.Kind, a.Reasoning)))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Body, a.Advice))
		if a.PromotedTopic {
			b.WriteString("\n")
			b.WriteString(layout.Centered(width, theme.Hint,
				fmt.Sprintf("'%s' 단원을 약한 단원으로 기록했어요.", a.Topic)))
		}
	}
	return b.String()
}

func renderQuitConfirm(width, answered int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, theme.Body.Bold(true), "학습지를 여기서 끝낼까요?"))
	b.WriteString("\n")
	if answered > 0 {
		b.WriteString(layout.Centered(width, theme.Dim, fmt.Sprintf("지금까지 푼 %d문제로 결과를 저장해요.", answered)))
	} else {
		b.WriteString(layout.Centered(width, theme.Dim, "아직 푼 문제가 없어 저장하지 않아요."))
	}
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, theme.Correct, "[Y] 그만하기"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Selected, "[N] 계속하기"))
	return b.String()
}
