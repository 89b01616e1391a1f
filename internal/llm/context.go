package llm

import "context"

type contextKey int

const (
	purposeKey contextKey = iota
	userKey
)

// WithPurpose labels calls made with ctx in the request log ("coach").
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithUser attributes calls made with ctx to a learner.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

func UserFrom(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}
