// Package chat is the tutor conversation screen opened from a problem.
package chat

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdaily/internal/app"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/ui/components"
	"github.com/abhisek/mathdaily/internal/ui/layout"
	"github.com/abhisek/mathdaily/internal/ui/theme"
)

// Tutor answers a conversation about a problem.
type Tutor interface {
	Tutor(ctx context.Context, messages []llm.Message, problemContext string) (string, error)
}

type replyMsg struct {
	Text string
	Err  error
}

// Screen is a chat with the tutor.
type Screen struct {
	ctx      context.Context
	tutor    Tutor
	problem  string
	messages []llm.Message
	input    components.TextInput
	waiting  bool
	errMsg   string
}

var _ app.Screen = (*Screen)(nil)
var _ app.KeyHintProvider = (*Screen)(nil)

// New opens a chat about problemContext.
func New(ctx context.Context, tutor Tutor, problemContext string) *Screen {
	return &Screen{
		ctx:     ctx,
		tutor:   tutor,
		problem: problemContext,
		input:   components.NewTextInput("궁금한 점을 적어 보세요", 300),
	}
}

// ProblemContext formats a problem for the tutor prompt.
func ProblemContext(question string, options []string, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "문제: %s\n", question)
	for i, opt := range options {
		label := fmt.Sprint(i + 1)
		if i < len(components.OptionLabels) {
			label = components.OptionLabels[i]
		}
		fmt.Fprintf(&b, "%s %s\n", label, opt)
	}
	fmt.Fprintf(&b, "정답: %s", answer)
	return b.String()
}

func (s *Screen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *Screen) Title() string {
	return "AI 선생님"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "보내기"},
		{Key: "Esc", Description: "문제로 돌아가기"},
	}
}

// Messages returns the conversation so far.
func (s *Screen) Messages() []llm.Message {
	return s.messages
}

func (s *Screen) Update(msg tea.Msg) (app.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.waiting = false
		if msg.Err != nil {
			s.errMsg = "답변을 받지 못했어요. 다시 물어봐 주세요."
			// Drop the unanswered question so the history stays valid.
			s.messages = s.messages[:len(s.messages)-1]
			return s, nil
		}
		s.messages = append(s.messages, llm.Message{Role: llm.RoleAssistant, Content: msg.Text})
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s.send()
		}
	}

	if s.waiting {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) send() (app.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" || s.waiting {
		return s, nil
	}
	s.input.Reset()
	s.errMsg = ""
	s.waiting = true
	s.messages = append(s.messages, llm.Message{Role: llm.RoleUser, Content: text})

	history := append([]llm.Message(nil), s.messages...)
	return s, func() tea.Msg {
		reply, err := s.tutor.Tutor(s.ctx, history, s.problem)
		return replyMsg{Text: reply, Err: err}
	}
}

func (s *Screen) View(width, height int) string {
	textWidth := min(width-8, 76)
	var lines []string
	for _, m := range s.messages {
		if m.Role == llm.RoleUser {
			lines = append(lines, theme.Selected.Render("나: ")+theme.Body.Width(textWidth).Render(m.Content))
		} else {
			lines = append(lines, theme.Highlight.Render("선생님: ")+theme.Body.Width(textWidth).Render(m.Content))
		}
	}
	if s.waiting {
		lines = append(lines, theme.Hint.Render("선생님이 생각하고 있어요..."))
	}
	if s.errMsg != "" {
		lines = append(lines, theme.Incorrect.Render(s.errMsg))
	}

	// Keep the latest lines when the conversation outgrows the screen.
	convo := strings.Join(lines, "\n\n")
	if avail := height - 4; avail > 0 {
		if all := strings.Split(convo, "\n"); len(all) > avail {
			convo = strings.Join(all[len(all)-avail:], "\n")
		}
	}

	input := theme.Card.Width(textWidth).Render(s.input.View())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, convo, "", input))
}
