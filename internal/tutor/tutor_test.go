package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/llm"
)

func TestRewrite(t *testing.T) {
	const original = "가로 8cm, 세로 5cm인 직사각형의 넓이를 구하시오."

	tests := []struct {
		name string
		resp llm.MockResponse
		want string
	}{
		{"rewritten", llm.MockResponse{Content: json.RawMessage("직사각형의 넓이를 구해 볼까요?")}, "직사각형의 넓이를 구해 볼까요?"},
		{"json string reply", llm.MockResponse{Content: json.RawMessage(`"넓이를 구해 봐요"`)}, "넓이를 구해 봐요"},
		{"provider error", llm.MockResponse{Err: &llm.ErrTimeout{Err: context.DeadlineExceeded}}, original},
		{"quota", llm.MockResponse{Err: &llm.ErrQuotaExceeded{Err: errors.New("insufficient_quota")}}, original},
		{"empty reply", llm.MockResponse{Content: json.RawMessage("  ")}, original},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(tt.resp)
			got := NewRewriter(mock, 0, zap.NewNop()).Rewrite(context.Background(), original)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRewrite_Timeout(t *testing.T) {
	const original = "3 × 4 = ?"
	slow := llm.FuncProvider(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		if got := llm.PurposeFrom(ctx); got != llm.PurposeRewrite {
			t.Errorf("expected purpose %q, got %q", llm.PurposeRewrite, got)
		}
		<-ctx.Done()
		return nil, &llm.ErrTimeout{Err: ctx.Err()}
	})

	start := time.Now()
	got := NewRewriter(slow, 20*time.Millisecond, nil).Rewrite(context.Background(), original)
	if got != original {
		t.Errorf("expected original text, got %q", got)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("rewrite did not honor its timeout")
	}
}

func TestChat(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("분모를 먼저 같게 만들어 볼까요? 🤔")})
	tutor := New(mock, zap.NewNop())

	reply, err := tutor.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "3/4 + 1/8 은 어떻게 풀어요?"},
	}, "3/4 + 1/8 = ?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.HasPrefix(reply, "분모를") {
		t.Errorf("unexpected reply %q", reply)
	}
	req := mock.Calls[0]
	if !strings.Contains(req.System, "소크라테스") || !strings.Contains(req.System, "3/4 + 1/8 = ?") {
		t.Errorf("expected tutor prompt with problem context, got %q", req.System)
	}
	if req.Schema != nil {
		t.Error("chat should not request structured output")
	}
}

func TestChat_InvalidConversation(t *testing.T) {
	tests := []struct {
		name     string
		messages []llm.Message
	}{
		{"empty", nil},
		{"bad role", []llm.Message{{Role: "system", Content: "hi"}}},
		{"ends with assistant", []llm.Message{{Role: llm.RoleUser, Content: "hi"}, {Role: llm.RoleAssistant, Content: "hello"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			_, err := New(mock, nil).Chat(context.Background(), tt.messages, "")
			if !errors.Is(err, ErrInvalidConversation) {
				t.Errorf("expected ErrInvalidConversation, got %v", err)
			}
			if mock.CallCount() != 0 {
				t.Error("expected no LLM call")
			}
		})
	}
}

func TestChat_TrimsHistory(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("네")})
	var msgs []llm.Message
	for i := 0; i < MaxHistory+5; i++ {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: "m"})
	}
	msgs[len(msgs)-1].Role = llm.RoleUser

	if _, err := New(mock, nil).Chat(context.Background(), msgs, ""); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	sent := mock.Calls[0].Messages
	if len(sent) != MaxHistory-1 {
		t.Errorf("expected %d messages sent, got %d", MaxHistory-1, len(sent))
	}
	if sent[0].Role != llm.RoleUser {
		t.Errorf("expected history to open with the student, got %q", sent[0].Role)
	}
}

func TestCheck(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("2")})
	res, err := Check(context.Background(), mock)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Model != "mock" || res.Reply != "2" {
		t.Errorf("unexpected result %+v", res)
	}

	failing := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrAuth{Err: errors.New("401")}})
	_, err = Check(context.Background(), failing)
	var auth *llm.ErrAuth
	if !errors.As(err, &auth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}
