package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm.purpose"

// WithPurpose tags the context with what the request is for, e.g.
// "question" or "explanation". The logging decorator includes the tag in
// its request events.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom reads the purpose tag, "unknown" when absent.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
