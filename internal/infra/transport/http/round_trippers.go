// Package http provides client-side transport decorators shared by every
// outgoing request: request-ID stamping and request/response logging.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	context_ "github.com/yks-app/yks-go/internal/infra/context"
	"github.com/yks-app/yks-go/internal/infra/logging"
)

const RequestIDHeader = "X-Request-ID"

// NewTransport wraps base with the standard decorator chain.
// If base is nil, http.DefaultTransport is used.
func NewTransport(base http.RoundTripper, log logging.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return &loggingTransport{
		next: &requestIDTransport{next: base},
		log:  log,
	}
}

// requestIDTransport stamps every outgoing request with an X-Request-ID
// header, preferring an ID already carried in the request context.
type requestIDTransport struct {
	next http.RoundTripper
}

var _ http.RoundTripper = (*requestIDTransport)(nil)

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID, ok := context_.RequestIDFromContext(req.Context())
	if !ok {
		requestID = uuid.NewString()
	}

	req = req.Clone(context_.WithRequestID(req.Context(), requestID))
	req.Header.Set(RequestIDHeader, requestID)

	//nolint:wrapcheck
	return t.next.RoundTrip(req)
}

// loggingTransport logs outgoing requests at DEBUG level and responses at a
// level determined by the status code:
// - 5xx: ERROR
// - 4xx: WARN
// - Other: DEBUG.
type loggingTransport struct {
	next http.RoundTripper
	log  logging.Logger
}

var _ http.RoundTripper = (*loggingTransport)(nil)

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	t.log.DebugContext(ctx, "request", slog.Group("http",
		"url", req.URL.String(),
		"method", req.Method,
	))

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.WarnContext(ctx, "request failed", slog.Group("http",
			"url", req.URL.String(),
			"method", req.Method,
		), "error", err)

		return nil, fmt.Errorf("round trip: %w", err)
	}

	var level logging.Level

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		level = logging.LevelError
	case resp.StatusCode >= http.StatusBadRequest:
		level = logging.LevelWarn
	default:
		level = logging.LevelDebug
	}

	t.log.Log(ctx, level, "response", slog.Group("http",
		"url", req.URL.String(),
		"method", req.Method,
		"status", resp.StatusCode,
	))

	return resp, nil
}
