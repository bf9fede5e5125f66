package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	sourceKey  contextKey = "llm_source"
)

// Purposes recorded on LLM request events.
const (
	PurposeQuestionGen = "question-gen"
	PurposeReport      = "report"
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

// WithSource tags the context with the document source a call is made for.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// SourceFrom returns the source tag, or "" when none was set.
func SourceFrom(ctx context.Context) string {
	v, _ := ctx.Value(sourceKey).(string)
	return v
}
