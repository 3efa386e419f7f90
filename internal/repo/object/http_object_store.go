package object

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yks-app/yks-go/internal/infra/logging"
	transport "github.com/yks-app/yks-go/internal/infra/transport/http"
)

// HTTPStoreConfig holds configuration for the HTTP object store.
type HTTPStoreConfig struct {
	// UploadURL is the base address objects are PUT to
	UploadURL string `env:"UPLOAD_URL" default:"http://localhost:9000/upload"`

	// PublicURL is the base address objects are downloaded from.
	// Defaults to the upload address when empty.
	PublicURL string `env:"PUBLIC_URL" default:""`
}

// HTTPStore implements Store by PUTting objects to a storage service over HTTP.
type HTTPStore struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPStoreConfig
}

var _ Store = (*HTTPStore)(nil)

// HTTPStoreFactory creates a factory function that returns a new HTTPStore.
// The factory function implements the StoreFactory type.
func HTTPStoreFactory(cfg HTTPStoreConfig) StoreFactory {
	return func() (Store, error) {
		return NewHTTPStore(cfg, nil), nil
	}
}

// NewHTTPStore creates a new HTTPStore with the given configuration.
// If httpClient is nil, a client with the standard transport decorators is used.
func NewHTTPStore(cfg HTTPStoreConfig, httpClient *http.Client) *HTTPStore {
	log := logging.GetLogger("repo.object.http_store")

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: transport.NewTransport(nil, log),
		}
	}

	if cfg.PublicURL == "" {
		cfg.PublicURL = cfg.UploadURL
	}

	return &HTTPStore{
		httpClient: httpClient,
		log:        log,
		cfg:        cfg,
	}
}

// Put implements Store.Put by uploading the object with an HTTP PUT request.
func (s *HTTPStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(s.cfg.UploadURL, name), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		_, _ = io.Copy(io.Discard, resp.Body)

		return "", fmt.Errorf("put object: unexpected status %d", resp.StatusCode)
	}

	return s.objectURL(s.cfg.PublicURL, name), nil
}

// Delete implements Store.Delete with an HTTP DELETE request.
func (s *HTTPStore) Delete(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(s.cfg.UploadURL, name), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete object: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// objectURL joins base and name, escaping each path segment of the object
// name while keeping prefix slashes intact.
func (s *HTTPStore) objectURL(base, name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.Join(segments, "/")
}
