package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/llm"
)

const systemPrompt = `당신은 친절하고 지혜로운 AI 수학 선생님입니다.
학생이 모르는 것을 물어볼 때, 정답을 바로 알려주지 말고 소크라테스 문답법으로 스스로 깨우치도록 유도하세요.
설명은 쉽고 간결하게, 이모지를 적절히 사용하여 친근하게 대화하세요.
수식은 LaTeX 형식($...$)을 사용하세요.`

// MaxHistory caps the number of messages sent per turn; older messages
// are dropped first and the kept history always opens with the student.
const MaxHistory = 20

// ErrInvalidConversation is returned for an empty conversation, an
// unknown role or a conversation that does not end with the student.
var ErrInvalidConversation = errors.New("invalid conversation")

// Tutor answers a student's questions about a problem.
type Tutor struct {
	provider llm.Provider
	log      *zap.Logger
}

// New creates a Tutor.
func New(provider llm.Provider, log *zap.Logger) *Tutor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tutor{provider: provider, log: log.Named("tutor")}
}

// Chat returns the tutor's next reply. problemContext, when set, is the
// problem the student is asking about.
func (t *Tutor) Chat(ctx context.Context, messages []llm.Message, problemContext string) (string, error) {
	if err := validateConversation(messages); err != nil {
		return "", err
	}
	if len(messages) > MaxHistory {
		messages = messages[len(messages)-MaxHistory:]
		for len(messages) > 1 && messages[0].Role != llm.RoleUser {
			messages = messages[1:]
		}
	}

	system := systemPrompt
	if pc := strings.TrimSpace(problemContext); pc != "" {
		system += "\n\n[현재 문제 정보]\n" + pc + "\n이 문제에 대해 학생이 질문하고 있습니다."
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeTutor)
	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		t.log.Warn("tutor reply failed", zap.String("kind", llm.ErrorKind(err)), zap.Error(err))
		return "", fmt.Errorf("tutor reply: %w", err)
	}
	return llm.Text(resp), nil
}

func validateConversation(messages []llm.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidConversation)
	}
	for i, m := range messages {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidConversation, i, m.Role)
		}
	}
	if messages[len(messages)-1].Role != llm.RoleUser {
		return fmt.Errorf("%w: last message must come from the student", ErrInvalidConversation)
	}
	return nil
}
