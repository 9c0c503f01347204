package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purpose labels used by the callers in this module. They end up in the
// llm_request_events table and as a metrics label.
const (
	PurposeWorksheet = "worksheet-gen"
	PurposeAnalysis  = "error-analysis"
	PurposeRewrite   = "rewrite"
	PurposeTutor     = "tutor-chat"
	PurposeCheck     = "health-check"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
