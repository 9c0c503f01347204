package llm

import "net/http"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible API. Model
// names are vendor-prefixed ("openai/gpt-4o-mini") and passed through.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Field: "openrouter.api_key", Reason: "is required"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	var client *http.Client
	if cfg.AppName != "" || cfg.AppURL != "" {
		client = &http.Client{Transport: &attributionTransport{
			base:    http.DefaultTransport,
			appName: cfg.AppName,
			appURL:  cfg.AppURL,
		}}
	}
	inner, err := newOpenAICompatible(cfg.APIKey, baseURL, cfg.Model, cfg.ResponseFormat, client)
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attributionTransport adds OpenRouter's app attribution headers.
type attributionTransport struct {
	base    http.RoundTripper
	appName string
	appURL  string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.appURL != "" {
		req.Header.Set("HTTP-Referer", t.appURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	return t.base.RoundTrip(req)
}
