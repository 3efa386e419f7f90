// Package sessionsvc owns the process-wide authentication session: who is
// signed in, with which profile, and whether the initial restore has
// resolved. The state changes only through four transitions, each replacing
// the whole snapshot atomically.
package sessionsvc

import (
	"context"
	"sync"

	"github.com/yks-app/yks-go/internal/domain"
	"github.com/yks-app/yks-go/internal/infra/logging"
)

// Fixed status strings set by the logout and clear-error transitions.
const (
	logoutMessage    = "Logged out successfully"
	authErrorMessage = "Error occurred while authentication"
)

// TokenStore is the subset of token.Repository the session needs for its
// persistence side effects.
type TokenStore interface {
	Put(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// TokenReader resolves the persisted token during Bootstrap.
type TokenReader interface {
	Get(ctx context.Context) (string, bool, error)
}

// ProfileFetcher fetches the signed-in user's profile. The release func ends
// the underlying cache subscription.
type ProfileFetcher interface {
	GetProfile(ctx context.Context) (domain.Profile, func(), error)
}

// Session is an immutable snapshot of the authentication state.
type Session struct {
	Token           string
	User            *domain.Profile
	IsAuthenticated bool
	IsLoading       bool
	Message         string
}

// Service is the single owner of the session state. All mutation goes
// through SetCredentials, SetProfile, Logout and ClearError; reads are pure
// projections of a snapshot taken under the lock.
type Service struct {
	mu    sync.Mutex
	state Session

	tokens TokenStore
	log    logging.Logger

	inFlightMutations int
}

// New creates a Service in the initial state: unauthenticated and loading
// until the first profile restore resolves.
func New(tokens TokenStore) *Service {
	return &Service{
		state: Session{
			Token:           "",
			User:            nil,
			IsAuthenticated: false,
			IsLoading:       true,
			Message:         "",
		},
		tokens: tokens,
		log:    logging.GetLogger("svc.sessionsvc.session"),
	}
}

// SetCredentials records a successful authentication. The token must be
// non-empty; user may be nil to keep the previous profile. The token is
// persisted as a side effect; a persistence failure is logged but does not
// roll back the in-memory state.
func (s *Service) SetCredentials(ctx context.Context, token, message string, user *domain.Profile) error {
	if token == "" {
		return domain.ErrEmptyToken
	}

	s.mu.Lock()
	if user == nil {
		user = s.state.User
	}
	s.state = Session{
		Token:           token,
		User:            user,
		IsAuthenticated: true,
		IsLoading:       false,
		Message:         message,
	}
	s.mu.Unlock()

	if err := s.tokens.Put(ctx, token); err != nil {
		s.log.ErrorContext(ctx, "persist token failed", "error", err)
	}

	s.log.DebugContext(ctx, "credentials set")

	return nil
}

// SetProfile records a successful profile refresh without touching the token.
func (s *Service) SetProfile(ctx context.Context, message string, user *domain.Profile) {
	s.mu.Lock()
	s.state = Session{
		Token:           s.state.Token,
		User:            user,
		IsAuthenticated: true,
		IsLoading:       false,
		Message:         message,
	}
	s.mu.Unlock()

	s.log.DebugContext(ctx, "profile set")
}

// Logout clears the session and deletes the persisted token. A deletion
// failure is logged only.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.state = Session{
		Token:           "",
		User:            nil,
		IsAuthenticated: false,
		IsLoading:       false,
		Message:         logoutMessage,
	}
	s.mu.Unlock()

	if err := s.tokens.Delete(ctx); err != nil {
		s.log.ErrorContext(ctx, "delete token failed", "error", err)
	}

	s.log.DebugContext(ctx, "logged out")
}

// ClearError resets the session after a failed or empty profile refresh.
// Calling it repeatedly is idempotent.
func (s *Service) ClearError(ctx context.Context) {
	s.mu.Lock()
	s.state = Session{
		Token:           "",
		User:            nil,
		IsAuthenticated: false,
		IsLoading:       false,
		Message:         authErrorMessage,
	}
	s.mu.Unlock()

	s.log.DebugContext(ctx, "session cleared after error")
}

// Snapshot returns a copy of the current session state. The profile is
// copied, so callers cannot mutate the stored state through it.
func (s *Service) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state

	if s.state.User != nil {
		user := *s.state.User
		snapshot.User = &user
	}

	return snapshot
}

// Token returns the current bearer token, or empty when signed out.
func (s *Service) Token() string {
	return s.Snapshot().Token
}

// User returns a copy of the current profile, or nil.
func (s *Service) User() *domain.Profile {
	return s.Snapshot().User
}

// IsAuthenticated reports whether a user is signed in.
func (s *Service) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated
}

// IsLoading reports whether the initial session restore is still pending.
func (s *Service) IsLoading() bool {
	return s.Snapshot().IsLoading
}

// Message returns the last status or error string.
func (s *Service) Message() string {
	return s.Snapshot().Message
}

// BeginProfileMutation marks a profile update as in flight so the poller
// skips refreshes until the returned done func is called. This serializes
// the periodic refresh against manual updates instead of letting the last
// response win.
func (s *Service) BeginProfileMutation() func() {
	s.mu.Lock()
	s.inFlightMutations++
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.inFlightMutations--
			s.mu.Unlock()
		})
	}
}

// MutationInFlight reports whether a profile update is currently in flight.
func (s *Service) MutationInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inFlightMutations > 0
}

// Bootstrap restores the session at process start: a persisted token moves
// the session to authenticated and triggers the initial profile fetch; a
// missing token or failed fetch resolves the loading state through ClearError.
func (s *Service) Bootstrap(ctx context.Context, tokens TokenReader, profiles ProfileFetcher) {
	token, ok, err := tokens.Get(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "restore token failed", "error", err)
		s.ClearError(ctx)

		return
	}

	if !ok {
		s.ClearError(ctx)

		return
	}

	if err := s.SetCredentials(ctx, token, "", nil); err != nil {
		s.ClearError(ctx)

		return
	}

	profile, release, err := profiles.GetProfile(ctx)
	if release != nil {
		defer release()
	}

	if err != nil || profile.IsZero() {
		s.log.WarnContext(ctx, "initial profile fetch failed", "error", err)
		s.ClearError(ctx)

		return
	}

	s.SetProfile(ctx, "", &profile)
}
