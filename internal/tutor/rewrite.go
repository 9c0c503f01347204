// Package tutor holds the conversational helpers around a worksheet:
// rewriting a problem in friendlier language, Socratic chat about a
// problem and a connectivity check for the configured model.
package tutor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/llm"
)

// DefaultRewriteTimeout bounds one rewrite request.
const DefaultRewriteTimeout = 30 * time.Second

const rewritePrompt = `다음 수학 문제를 '초등학생이 이해하기 쉬운 문장'으로 바꿔주세요.
수치는 절대 바꾸지 마세요. 문체만 친절하게 바꾸세요.
바꾼 문제 문장만 답하세요.

문제: %s`

// Rewriter rephrases problem text for younger readers.
type Rewriter struct {
	provider llm.Provider
	timeout  time.Duration
	log      *zap.Logger
}

// NewRewriter creates a Rewriter. A non-positive timeout uses
// DefaultRewriteTimeout.
func NewRewriter(provider llm.Provider, timeout time.Duration, log *zap.Logger) *Rewriter {
	if timeout <= 0 {
		timeout = DefaultRewriteTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Rewriter{provider: provider, timeout: timeout, log: log.Named("rewrite")}
}

// Rewrite returns a friendlier version of text. Any failure, including
// an empty reply, returns text unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	ctx = llm.WithPurpose(ctx, llm.PurposeRewrite)

	resp, err := r.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(rewritePrompt, text)},
		},
		MaxTokens:   1024,
		Temperature: 0.5,
	})
	if err != nil {
		r.log.Warn("rewrite failed, keeping original", zap.String("kind", llm.ErrorKind(err)), zap.Error(err))
		return text
	}

	out := llm.Text(resp)
	if out == "" {
		r.log.Warn("empty rewrite, keeping original")
		return text
	}
	return out
}
