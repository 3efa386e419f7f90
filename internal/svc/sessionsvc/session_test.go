package sessionsvc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yks-app/yks-go/internal/domain"
	"github.com/yks-app/yks-go/internal/svc/sessionsvc"
)

type mockTokenStore struct {
	puts      []string
	putErr    error
	deletes   int
	deleteErr error
}

func (m *mockTokenStore) Put(_ context.Context, token string) error {
	m.puts = append(m.puts, token)

	return m.putErr
}

func (m *mockTokenStore) Delete(_ context.Context) error {
	m.deletes++

	return m.deleteErr
}

type mockTokenReader struct {
	token string
	ok    bool
	err   error
}

func (m *mockTokenReader) Get(_ context.Context) (string, bool, error) {
	return m.token, m.ok, m.err
}

type mockProfileFetcher struct {
	profile  domain.Profile
	err      error
	calls    int
	releases int
}

func (m *mockProfileFetcher) GetProfile(_ context.Context) (domain.Profile, func(), error) {
	m.calls++

	return m.profile, func() { m.releases++ }, m.err
}

func TestService_InitialState(t *testing.T) {
	t.Parallel()

	session := sessionsvc.New(&mockTokenStore{})

	if session.IsAuthenticated() {
		t.Error("new session is authenticated")
	}
	if !session.IsLoading() {
		t.Error("new session is not loading")
	}
	if session.Token() != "" || session.User() != nil {
		t.Error("new session carries credentials")
	}
}

func TestService_SetCredentials(t *testing.T) {
	t.Parallel()

	store := &mockTokenStore{}
	session := sessionsvc.New(store)
	user := &domain.Profile{Username: "jdoe", Email: "a@b.com"}

	if err := session.SetCredentials(context.Background(), "abc123", "welcome", user); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	got := session.Snapshot()
	if !got.IsAuthenticated || got.IsLoading {
		t.Errorf("state = %+v, want authenticated and resolved", got)
	}
	if got.Token != "abc123" {
		t.Errorf("token = %q, want %q", got.Token, "abc123")
	}
	if got.User == nil || got.User.Username != "jdoe" {
		t.Errorf("unexpected user: %+v", got.User)
	}
	if got.Message != "welcome" {
		t.Errorf("message = %q, want %q", got.Message, "welcome")
	}

	if len(store.puts) != 1 || store.puts[0] != "abc123" {
		t.Errorf("persisted tokens = %v, want [abc123]", store.puts)
	}
}

func TestService_SetCredentialsRejectsEmptyToken(t *testing.T) {
	t.Parallel()

	store := &mockTokenStore{}
	session := sessionsvc.New(store)

	err := session.SetCredentials(context.Background(), "", "", nil)
	if !errors.Is(err, domain.ErrEmptyToken) {
		t.Fatalf("error = %v, want %v", err, domain.ErrEmptyToken)
	}

	if session.IsAuthenticated() {
		t.Error("session authenticated after rejected token")
	}
	if !session.IsLoading() {
		t.Error("rejected token resolved the loading state")
	}
	if len(store.puts) != 0 {
		t.Errorf("persisted tokens = %v, want none", store.puts)
	}
}

func TestService_SetCredentialsKeepsPreviousUser(t *testing.T) {
	t.Parallel()

	session := sessionsvc.New(&mockTokenStore{})
	ctx := context.Background()

	user := &domain.Profile{Username: "jdoe"}
	if err := session.SetCredentials(ctx, "first", "", user); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	// A token refresh without a user payload keeps the known profile.
	if err := session.SetCredentials(ctx, "second", "", nil); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	got := session.Snapshot()
	if got.Token != "second" {
		t.Errorf("token = %q, want %q", got.Token, "second")
	}
	if got.User == nil || got.User.Username != "jdoe" {
		t.Errorf("unexpected user: %+v", got.User)
	}
}

// A broken token store must not undo a successful authentication.
func TestService_SetCredentialsSurvivesPersistFailure(t *testing.T) {
	t.Parallel()

	store := &mockTokenStore{putErr: errors.New("disk full")}
	session := sessionsvc.New(store)

	if err := session.SetCredentials(context.Background(), "abc123", "", nil); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	if !session.IsAuthenticated() {
		t.Error("session not authenticated after persist failure")
	}
	if session.Token() != "abc123" {
		t.Errorf("token = %q, want %q", session.Token(), "abc123")
	}
}

func TestService_SetProfileKeepsToken(t *testing.T) {
	t.Parallel()

	session := sessionsvc.New(&mockTokenStore{})
	ctx := context.Background()

	if err := session.SetCredentials(ctx, "abc123", "", nil); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	session.SetProfile(ctx, "", &domain.Profile{Username: "jdoe", Bio: "hello"})

	got := session.Snapshot()
	if got.Token != "abc123" {
		t.Errorf("token = %q, want %q", got.Token, "abc123")
	}
	if got.User == nil || got.User.Bio != "hello" {
		t.Errorf("unexpected user: %+v", got.User)
	}
	if !got.IsAuthenticated || got.IsLoading {
		t.Errorf("state = %+v, want authenticated and resolved", got)
	}
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	store := &mockTokenStore{}
	session := sessionsvc.New(store)
	ctx := context.Background()

	if err := session.SetCredentials(ctx, "abc123", "", &domain.Profile{Username: "jdoe"}); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	session.Logout(ctx)

	got := session.Snapshot()
	if got.IsAuthenticated || got.IsLoading {
		t.Errorf("state = %+v, want signed out and resolved", got)
	}
	if got.Token != "" || got.User != nil {
		t.Errorf("credentials survived logout: %+v", got)
	}
	if got.Message != "Logged out successfully" {
		t.Errorf("message = %q, want %q", got.Message, "Logged out successfully")
	}

	if store.deletes != 1 {
		t.Errorf("token deletes = %d, want 1", store.deletes)
	}
}

func TestService_ClearErrorIsIdempotent(t *testing.T) {
	t.Parallel()

	session := sessionsvc.New(&mockTokenStore{})
	ctx := context.Background()

	session.ClearError(ctx)
	first := session.Snapshot()

	session.ClearError(ctx)
	second := session.Snapshot()

	if first != second {
		t.Errorf("snapshots differ: %+v vs %+v", first, second)
	}
	if second.IsAuthenticated || second.IsLoading {
		t.Errorf("state = %+v, want signed out and resolved", second)
	}
	if second.Message != "Error occurred while authentication" {
		t.Errorf("message = %q, want %q", second.Message, "Error occurred while authentication")
	}
}

func TestService_SnapshotCopiesUser(t *testing.T) {
	t.Parallel()

	session := sessionsvc.New(&mockTokenStore{})
	ctx := context.Background()

	if err := session.SetCredentials(ctx, "abc123", "", &domain.Profile{Username: "jdoe"}); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	session.Snapshot().User.Username = "mallory"

	if got := session.User().Username; got != "jdoe" {
		t.Errorf("username = %q, want %q", got, "jdoe")
	}
}

func TestService_MutationInFlight(t *testing.T) {
	t.Parallel()

	session := sessionsvc.New(&mockTokenStore{})

	if session.MutationInFlight() {
		t.Error("mutation in flight on fresh session")
	}

	done := session.BeginProfileMutation()
	if !session.MutationInFlight() {
		t.Error("mutation not in flight after begin")
	}

	done()
	done() // safe to call twice

	if session.MutationInFlight() {
		t.Error("mutation still in flight after done")
	}
}

func TestService_Bootstrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tokens   *mockTokenReader
		profiles *mockProfileFetcher

		wantAuthenticated bool
		wantUsername      string
		wantFetches       int
	}{
		{
			name:              "persisted token restores session",
			tokens:            &mockTokenReader{token: "abc123", ok: true},
			profiles:          &mockProfileFetcher{profile: domain.Profile{Username: "jdoe", Email: "a@b.com"}},
			wantAuthenticated: true,
			wantUsername:      "jdoe",
			wantFetches:       1,
		},
		{
			name:     "missing token resolves signed out",
			tokens:   &mockTokenReader{},
			profiles: &mockProfileFetcher{},
		},
		{
			name:     "token read failure resolves signed out",
			tokens:   &mockTokenReader{err: errors.New("storage broken")},
			profiles: &mockProfileFetcher{},
		},
		{
			name:        "failed profile fetch clears session",
			tokens:      &mockTokenReader{token: "abc123", ok: true},
			profiles:    &mockProfileFetcher{err: errors.New("backend down")},
			wantFetches: 1,
		},
		{
			name:        "empty profile clears session",
			tokens:      &mockTokenReader{token: "abc123", ok: true},
			profiles:    &mockProfileFetcher{},
			wantFetches: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := sessionsvc.New(&mockTokenStore{})
			session.Bootstrap(context.Background(), tt.tokens, tt.profiles)

			if session.IsLoading() {
				t.Error("bootstrap left the session loading")
			}
			if got := session.IsAuthenticated(); got != tt.wantAuthenticated {
				t.Errorf("authenticated = %v, want %v", got, tt.wantAuthenticated)
			}
			if tt.wantUsername != "" {
				if user := session.User(); user == nil || user.Username != tt.wantUsername {
					t.Errorf("unexpected user: %+v", user)
				}
			}
			if tt.profiles.calls != tt.wantFetches {
				t.Errorf("profile fetches = %d, want %d", tt.profiles.calls, tt.wantFetches)
			}
			if tt.profiles.releases != tt.profiles.calls {
				t.Errorf("releases = %d, want %d", tt.profiles.releases, tt.profiles.calls)
			}
		})
	}
}
