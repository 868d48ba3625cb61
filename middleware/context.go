package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/llm-model-access/internal/access"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for the resolved session
	SessionKey contextKey = "session"
)

// GetRequestIDFromContext retrieves the request ID from context,
// falling back to the ID set by chi's RequestID middleware.
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetSessionFromContext retrieves the session from context.
// Nil means the caller is a guest.
func GetSessionFromContext(ctx context.Context) *access.Session {
	if val := ctx.Value(SessionKey); val != nil {
		if session, ok := val.(*access.Session); ok {
			return session
		}
	}
	return nil
}

// WithSession adds a session to the context
func WithSession(ctx context.Context, session *access.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
