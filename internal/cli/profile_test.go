package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yks-app/yks-go/internal/domain"
	"github.com/yks-app/yks-go/internal/svc/apiclient"
	"github.com/yks-app/yks-go/internal/svc/sessionsvc"
	"github.com/yks-app/yks-go/internal/svc/uploadsvc"
)

// memoryTokenRepository is an in-process token.Repository for command tests.
type memoryTokenRepository struct {
	mu    sync.Mutex
	token string
	has   bool
}

func (m *memoryTokenRepository) Get(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token, m.has, nil
}

func (m *memoryTokenRepository) Put(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token, m.has = token, true

	return nil
}

func (m *memoryTokenRepository) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token, m.has = "", false

	return nil
}

func (m *memoryTokenRepository) Close() error { return nil }

type failingObjectStore struct{}

func (failingObjectStore) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func (failingObjectStore) Delete(context.Context, string) error { return nil }

// profileBackend serves the signed-in profile and counts update requests.
type profileBackend struct {
	mu      sync.Mutex
	updates int
}

func (b *profileBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/user/profile" {
		http.NotFound(w, r)

		return
	}

	if r.Method == http.MethodPut {
		b.mu.Lock()
		b.updates++
		b.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"success":true,"user":{"username":"jdoe","email":"a@b.com","bio":"original"}}`))
}

func (b *profileBackend) updateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.updates
}

func setupApp(t *testing.T, backend *profileBackend) {
	t.Helper()

	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	tokens := &memoryTokenRepository{token: "abc123", has: true}
	client := apiclient.New(apiclient.ClientConfig{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		QueryRetention: time.Hour,
	}, tokens, nil)

	app = &App{
		Session: sessionsvc.New(tokens),
		Client:  client,
		Uploads: uploadsvc.NewUploadService(failingObjectStore{}, uploadsvc.UploadConfig{
			MaxDimension: 64,
			JPEGQuality:  85,
		}),
		Tokens: tokens,
		Poll:   sessionsvc.PollerConfig{Interval: time.Hour},
	}
}

func writeTestAvatar(t *testing.T) string {
	t.Helper()

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	path := filepath.Join(t.TempDir(), "avatar.png")
	if err := os.WriteFile(path, buffer.Bytes(), 0o600); err != nil {
		t.Fatalf("write avatar: %v", err)
	}

	return path
}

// A failed avatar upload aborts the whole update: the backend never sees the
// PUT and the session keeps its previous profile.
func TestProfileUpdate_UploadFailureAbortsUpdate(t *testing.T) {
	backend := &profileBackend{}
	setupApp(t, backend)

	profileAvatar = writeTestAvatar(t)
	profileBio = "new bio"
	t.Cleanup(func() { profileAvatar, profileBio = "", "" })

	if err := profileUpdateCmd.Flags().Set("avatar", profileAvatar); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := profileUpdateCmd.Flags().Set("bio", profileBio); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	profileUpdateCmd.SetContext(context.Background())

	err := profileUpdateCmd.RunE(profileUpdateCmd, nil)
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("error = %v, want %v", err, domain.ErrUploadFailed)
	}

	if got := backend.updateCount(); got != 0 {
		t.Errorf("profile updates = %d, want 0", got)
	}

	if user := app.Session.User(); user == nil || user.Bio != "original" {
		t.Errorf("unexpected session user: %+v", user)
	}
	if app.Session.MutationInFlight() {
		t.Error("aborted update left a mutation in flight")
	}
}
