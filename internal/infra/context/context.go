// Package context carries per-request and per-session values through
// context.Context without leaking the key types.
package context

import (
	"context"
)

type contextKey string

const (
	contextKeyRequestID = contextKey("requestID")
	contextKeyUsername  = contextKey("username")
)

// RequestIDFromContext extracts the outgoing request ID from the context.
// Returns the ID and true if present, or empty string and false if not present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(contextKeyRequestID).(string)

	return requestID, ok
}

// WithRequestID creates a new context carrying the given request ID.
// The ID is stamped onto outgoing requests and attached to log records.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// UsernameFromContext extracts the signed-in username from the context.
// Returns the username and true if present, or empty string and false if not present.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(contextKeyUsername).(string)

	return username, ok
}

// WithUsername creates a new context carrying the signed-in username.
// Set after a successful login so log records identify the session owner.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKeyUsername, username)
}
