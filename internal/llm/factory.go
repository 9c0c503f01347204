package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/store"
)

// NewProvider creates a Provider from configuration. The base provider is
// wrapped as caller → observer → retry (opt-in) → logging → base, so
// metrics see one observation per logical call and every attempt is
// recorded in the event log.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *zap.Logger, obs Observer) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, &ConfigError{Field: "llm.provider", Reason: "names an unknown provider: " + cfg.Provider}
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if cfg.Timeout > 0 {
		base = &timeoutProvider{inner: base, timeout: cfg.Timeout}
	}

	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry)
	return WithObserver(retried, obs), nil
}

// timeoutProvider bounds every request by a ceiling. Callers may still set
// a tighter deadline on ctx.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
