package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
	"gemini-lite":  "gemini-2.5-flash-lite",
}

// GeminiProvider implements Provider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Field: "gemini.api_key", Reason: "is required"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents(req.Messages), geminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}

	stop, blocked := geminiStopReason(result)
	if blocked != "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("gemini withheld the response: %s", blocked)}
	}

	content, err := validateResponse(req.Schema, json.RawMessage(result.Text()))
	if err != nil {
		return nil, err
	}

	resp := &Response{Content: content, Model: p.model, StopReason: stop}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return resp, nil
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiSchema(req.Schema.Definition)
	}
	return cfg
}

func geminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// geminiSchema converts the JSON Schema subset used by this module.
// Gemini only accepts string enums, so an integer enum becomes a
// minimum/maximum range. Properties are emitted in "required" order.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeString}
	if t, ok := geminiTypes[stringOf(def["type"])]; ok {
		s.Type = t
	}
	s.Description = stringOf(def["description"])

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	for _, r := range anySlice(def["required"]) {
		if name, ok := r.(string); ok {
			s.Required = append(s.Required, name)
		}
	}
	if len(s.Required) > 0 {
		s.PropertyOrdering = slices.Clone(s.Required)
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}

	var nums []float64
	for _, e := range anySlice(def["enum"]) {
		switch v := e.(type) {
		case string:
			s.Enum = append(s.Enum, v)
		case int:
			nums = append(nums, float64(v))
		case float64:
			nums = append(nums, v)
		}
	}
	if len(nums) > 0 {
		lo, hi := slices.Min(nums), slices.Max(nums)
		s.Minimum, s.Maximum = &lo, &hi
	}
	if n, ok := int64Of(def["minItems"]); ok {
		s.MinItems = &n
	}
	if n, ok := int64Of(def["maxItems"]); ok {
		s.MaxItems = &n
	}
	return s
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func anySlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func int64Of(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// geminiStopReason normalizes the first candidate's finish reason. blocked
// is non-empty when the candidate was cut off by a content filter.
func geminiStopReason(result *genai.GenerateContentResponse) (stop, blocked string) {
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "error", string(result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "end", ""
	}
	switch reason := result.Candidates[0].FinishReason; reason {
	case "MAX_TOKENS":
		return "max_tokens", ""
	case "SAFETY", "RECITATION", "PROHIBITED_CONTENT", "BLOCKLIST", "SPII":
		return "error", string(reason)
	}
	return "end", ""
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return mapTransportError(err)
	}
	switch {
	case apiErr.Status == "RESOURCE_EXHAUSTED" && mentionsQuota(err):
		return &ErrQuotaExceeded{Err: err}
	case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
		// A rejected key comes back as INVALID_ARGUMENT.
		return &ErrAuth{Err: err}
	}
	return mapStatusError(apiErr.Code, err)
}
