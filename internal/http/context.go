package http

import "context"

type contextKey string

const (
	requestIDContextKey contextKey = "portfolio/request-id"
	requestContextKey   contextKey = "portfolio/request"
	adminContextKey     contextKey = "portfolio/admin"
)

// requestInfo is what handlers need from the raw request.
type requestInfo struct {
	Path      string
	ClientIP  string
	UserAgent string
}

// adminState is the result of the session check for one request.
type adminState struct {
	IsAdmin bool
	Message string
}

// RequestIDFromContext extracts the request identifier from the context when available.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDContextKey).(string); ok {
		return value
	}
	return ""
}

func requestInfoFromContext(ctx context.Context) requestInfo {
	if ctx == nil {
		return requestInfo{}
	}
	if value, ok := ctx.Value(requestContextKey).(requestInfo); ok {
		return value
	}
	return requestInfo{}
}

func adminFromContext(ctx context.Context) adminState {
	if ctx == nil {
		return adminState{}
	}
	if value, ok := ctx.Value(adminContextKey).(adminState); ok {
		return value
	}
	return adminState{}
}
