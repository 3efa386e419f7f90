package logging

import (
	"context"
	"log/slog"

	context_ "github.com/yks-app/yks-go/internal/infra/context"
)

// ContextHandler wraps another slog.Handler to enrich records with values
// carried in the context: the outgoing request ID and the signed-in username.
type ContextHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*ContextHandler)(nil)

// NewContextHandler creates a new ContextHandler wrapping the given handler.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{h: h}
}

// Handle implements slog.Handler by adding request ID and username attributes
// if available in the context before delegating to the wrapped handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID, ok := context_.RequestIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("request",
			slog.String("id", requestID),
		))
	}

	if username, ok := context_.UsernameFromContext(ctx); ok {
		r.AddAttrs(slog.Group("session",
			slog.String("username", username),
		))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewContextHandler(h.h.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ContextHandler) WithGroup(name string) Handler {
	return NewContextHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}
