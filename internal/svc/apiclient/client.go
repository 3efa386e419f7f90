// Package apiclient issues typed REST requests against the community
// backend. Every request resolves the persisted bearer token before send,
// and query results are cached with tag-based invalidation.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yks-app/yks-go/internal/infra/logging"
	transport "github.com/yks-app/yks-go/internal/infra/transport/http"
)

const apiPrefix = "/api/v1"

// TokenSource resolves the persisted bearer token for outgoing requests.
// A failed read must not block the request; the client sends it unauthenticated.
type TokenSource interface {
	Get(ctx context.Context) (string, bool, error)
}

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	// BaseURL is the address of the backend, without the /api/v1 prefix
	BaseURL string `env:"BASE_URL" default:"http://localhost:4000"`

	// Timeout bounds each request end to end
	Timeout time.Duration `env:"TIMEOUT" default:"30s"`

	// QueryRetention is how long unsubscribed query results stay cached.
	// Endpoints may override it; the profile query always refetches.
	QueryRetention time.Duration `env:"QUERY_RETENTION" default:"60s"`
}

// Client issues requests against a fixed base address, attaching the bearer
// token resolved from its TokenSource and caching query results by tag.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	tokens     TokenSource
	cache      *queryCache
	log        logging.Logger
}

// New creates a new Client with the given configuration and token source.
// If httpClient is nil, a client with the standard transport decorators and
// the configured timeout is used.
func New(cfg ClientConfig, tokens TokenSource, httpClient *http.Client) *Client {
	log := logging.GetLogger("svc.apiclient.client")

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: transport.NewTransport(nil, log),
			Timeout:   cfg.Timeout,
		}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     tokens,
		cache:      newQueryCache(),
		log:        log,
	}
}

// APIError carries the HTTP status and server-provided message of a failed
// request. The caller decides how to present it; there is no automatic retry.
type APIError struct {
	Status  int
	Message string
}

var _ error = (*APIError)(nil)

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}

	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// query serves an operation from the cache when a fresh entry exists,
// otherwise fetches and stores the result under the operation's tags.
// The returned release func ends the caller's subscription to the entry.
func (c *Client) query(ctx context.Context, ep endpoint, id string) (json.RawMessage, func(), error) {
	key := queryKey(ep.name, id)

	if raw, release, ok := c.cache.acquire(key); ok {
		c.log.DebugContext(ctx, "cache hit", "operation", ep.name, "key", key)

		return raw, release, nil
	}

	raw, err := c.send(ctx, ep, id, nil)
	if err != nil {
		return nil, func() {}, err
	}

	retention := ep.retention
	if retention == retentionDefault {
		retention = c.cfg.QueryRetention
	}

	release := c.cache.store(key, raw, ep.provides, retention)

	return raw, release, nil
}

// mutate sends the operation and, on success, marks stale every cached entry
// sharing one of the operation's invalidated tags.
func (c *Client) mutate(ctx context.Context, ep endpoint, id string, body any) (json.RawMessage, error) {
	raw, err := c.send(ctx, ep, id, body)
	if err != nil {
		return nil, err
	}

	if len(ep.invalidates) > 0 {
		invalidated := c.cache.invalidate(ep.invalidates)
		c.log.DebugContext(ctx, "cache invalidated",
			"operation", ep.name,
			"entries", invalidated,
		)
	}

	return raw, nil
}

func (c *Client) send(ctx context.Context, ep endpoint, id string, body any) (_ json.RawMessage, err error) {
	log := c.log.With(logging.Group("api",
		"operation", ep.name,
		"method", ep.method,
	))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "operation failed", "error", err)
		} else {
			log.DebugContext(ctx, "operation succeeded")
		}
	}()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, c.operationURL(ep, id), reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	// A storage failure downgrades the request to unauthenticated
	// instead of failing it.
	if token, ok, err := c.tokens.Get(ctx); err != nil {
		log.WarnContext(ctx, "token read failed, sending unauthenticated", "error", err)
	} else if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: ""}

		var envelope struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil {
			apiErr.Message = envelope.Message
		}

		return nil, apiErr
	}

	return data, nil
}

func (c *Client) operationURL(ep endpoint, id string) string {
	u := strings.TrimSuffix(c.cfg.BaseURL, "/") + apiPrefix + ep.path

	if id != "" {
		u += "/" + url.PathEscape(id)
	}

	return u
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}

	return v, nil
}
