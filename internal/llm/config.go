package llm

import (
	"time"
)

// Config holds all LLM provider configuration. It is filled by the
// internal/config loader and passed explicitly to NewProvider.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string `mapstructure:"provider"`

	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry"`

	// Timeout is the ceiling for a single request when the caller did not
	// set a tighter deadline. Default: 60s.
	Timeout time.Duration `mapstructure:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "claude-haiku"
	BaseURL string `mapstructure:"base_url"` // Optional. Proxies and gateways.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional. Any OpenAI-compatible endpoint.

	// ResponseFormat is FormatJSONSchema (default) or FormatJSONObject.
	ResponseFormat string `mapstructure:"response_format"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`    // Default: "openai/gpt-4o-mini"
	BaseURL        string `mapstructure:"base_url"` // Default: "https://openrouter.ai/api/v1"
	ResponseFormat string `mapstructure:"response_format"`

	// AppName and AppURL are sent as X-Title and HTTP-Referer.
	AppName string `mapstructure:"app_name"`
	AppURL  string `mapstructure:"app_url"`
}

// RetryConfig configures the opt-in retry decorator. MaxAttempts <= 1
// disables retries entirely.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns a Config with the defaults used when nothing is
// configured. Worksheet generation is not retried by default.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// Validate checks that the selected provider has its required API key set.
// The returned error is a *ConfigError.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return &ConfigError{Field: "llm.anthropic.api_key", Reason: "is required for the anthropic provider"}
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return &ConfigError{Field: "llm.openai.api_key", Reason: "is required for the openai provider"}
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return &ConfigError{Field: "llm.gemini.api_key", Reason: "is required for the gemini provider"}
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return &ConfigError{Field: "llm.openrouter.api_key", Reason: "is required for the openrouter provider"}
		}
	case "mock":
		// No API key needed.
	case "":
		return &ConfigError{Field: "llm.provider", Reason: "is not set and no API key was discovered"}
	default:
		return &ConfigError{Field: "llm.provider", Reason: "names an unknown provider: " + c.Provider}
	}
	return nil
}
