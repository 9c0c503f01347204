package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/mathdaily/internal/llm"
)

// CheckResult reports a successful connectivity check.
type CheckResult struct {
	Model   string        `json:"model"`
	Reply   string        `json:"ai_response"`
	Latency time.Duration `json:"latency"`
}

// Check sends one tiny request to verify the provider's credentials and
// reachability.
func Check(ctx context.Context, provider llm.Provider) (*CheckResult, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCheck)
	start := time.Now()
	resp, err := provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "1+1 is?"},
		},
		MaxTokens: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", provider.ModelID(), err)
	}
	model := resp.Model
	if model == "" {
		model = provider.ModelID()
	}
	return &CheckResult{Model: model, Reply: llm.Text(resp), Latency: time.Since(start)}, nil
}
