package llm

import (
	"encoding/json"
	"strings"
)

// StripCodeFence removes a surrounding markdown code fence (``` or ```json)
// from model output. Text without a fence is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string ("json", "JSON", ...) up to the first newline.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[") {
			s = s[nl+1:]
		}
	}
	// A one-line fence keeps its info token glued to the body.
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Text returns the response content as plain text. Providers that were
// asked for JSON-less output sometimes wrap it in a JSON string anyway.
func Text(resp *Response) string {
	if resp == nil {
		return ""
	}
	raw := strings.TrimSpace(string(resp.Content))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return raw
}
