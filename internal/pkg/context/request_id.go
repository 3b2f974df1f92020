package context

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID injects ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID extracts ID
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Detach keeps the request id but drops the caller's deadline and cancellation.
// Used for writes that must land even when the HTTP request is gone.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
