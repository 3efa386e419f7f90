package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/yks-app/yks-go/internal/domain"
)

// endpoint declares one REST operation: its route, the tags its cached
// results provide, and the tags a successful call invalidates.
type endpoint struct {
	name        string
	method      string
	path        string
	provides    []Tag
	invalidates []Tag
	retention   time.Duration
}

//nolint:gochecknoglobals,exhaustruct
var (
	epLogin          = endpoint{name: "login", method: http.MethodPost, path: "/user/login"}
	epRegistration   = endpoint{name: "registration", method: http.MethodPost, path: "/user/register"}
	epForgotPassword = endpoint{name: "forgetPassword", method: http.MethodPost, path: "/user/forgetpassword"}
	epResetPassword  = endpoint{name: "resetpassword", method: http.MethodPost, path: "/user/resetpassword"}

	// The profile query keeps nothing between subscribers: every mount of a
	// profile view refetches instead of trusting a cached copy, since the
	// profile changes from other sessions.
	epGetProfile = endpoint{
		name: "get_profile", method: http.MethodGet, path: "/user/profile",
		provides: []Tag{TagUser}, retention: 0,
	}
	epUpdateProfile = endpoint{name: "update_profile", method: http.MethodPut, path: "/user/profile"}

	epCreatePost = endpoint{
		name: "create_post", method: http.MethodPost, path: "/post",
		invalidates: []Tag{TagPost},
	}
	epGetPost = endpoint{
		name: "get_post", method: http.MethodGet, path: "/post",
		provides: []Tag{TagPost}, retention: retentionDefault,
	}
	epGetPostByID = endpoint{
		name: "get_post_by_id", method: http.MethodGet, path: "/post",
		provides: []Tag{TagPost}, retention: retentionDefault,
	}

	epCreateSociety = endpoint{
		name: "create_society", method: http.MethodPost, path: "/society",
		invalidates: []Tag{TagSociety},
	}
	epGetSociety = endpoint{
		name: "get_society", method: http.MethodGet, path: "/society",
		provides: []Tag{TagSociety}, retention: retentionDefault,
	}
)

// LoginRequest is the body of the login operation.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationRequest is the body of the registration operation.
type RegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts a password reset for the given account.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes a password reset with the emailed code.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"password"`
}

// CreatePostRequest is the body of the create_post operation.
type CreatePostRequest struct {
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateSocietyRequest is the body of the create_society operation.
type CreateSocietyRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	OwnerName   string `json:"ownerName"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginResponse is the parsed login payload.
type LoginResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Token   string          `json:"token"`
	User    *domain.Profile `json:"user,omitempty"`
}

// StatusResponse is the generic success/message payload shared by mutations.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type profileEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	User    domain.Profile `json:"user"`
}

type postsEnvelope struct {
	Success bool          `json:"success"`
	Data    []domain.Post `json:"data"`
}

type postEnvelope struct {
	Success bool        `json:"success"`
	Data    domain.Post `json:"data"`
}

type societiesEnvelope struct {
	Success bool             `json:"success"`
	Data    []domain.Society `json:"data"`
}

// Login authenticates with email and password, returning the bearer token
// and the signed-in user's profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	raw, err := c.mutate(ctx, epLogin, "", req)
	if err != nil {
		return LoginResponse{}, err
	}

	return decode[LoginResponse](raw)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (StatusResponse, error) {
	raw, err := c.mutate(ctx, epRegistration, "", req)
	if err != nil {
		return StatusResponse{}, err
	}

	return decode[StatusResponse](raw)
}

// ForgotPassword requests a password reset code for the given email.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (StatusResponse, error) {
	raw, err := c.mutate(ctx, epForgotPassword, "", req)
	if err != nil {
		return StatusResponse{}, err
	}

	return decode[StatusResponse](raw)
}

// ResetPassword sets a new password using the emailed reset code.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (StatusResponse, error) {
	raw, err := c.mutate(ctx, epResetPassword, "", req)
	if err != nil {
		return StatusResponse{}, err
	}

	return decode[StatusResponse](raw)
}

// GetProfile fetches the signed-in user's profile. The returned release func
// ends the caller's cache subscription; with zero retention every call after
// release hits the network again.
func (c *Client) GetProfile(ctx context.Context) (domain.Profile, func(), error) {
	raw, release, err := c.query(ctx, epGetProfile, "")
	if err != nil {
		return domain.Profile{}, release, err
	}

	env, err := decode[profileEnvelope](raw)
	if err != nil {
		release()

		return domain.Profile{}, func() {}, err
	}

	return env.User, release, nil
}

// UpdateProfile replaces the signed-in user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, profile domain.Profile) (StatusResponse, error) {
	raw, err := c.mutate(ctx, epUpdateProfile, "", profile)
	if err != nil {
		return StatusResponse{}, err
	}

	return decode[StatusResponse](raw)
}

// CreatePost publishes a new feed entry and invalidates cached post queries.
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (StatusResponse, error) {
	raw, err := c.mutate(ctx, epCreatePost, "", req)
	if err != nil {
		return StatusResponse{}, err
	}

	return decode[StatusResponse](raw)
}

// GetPosts fetches the feed.
func (c *Client) GetPosts(ctx context.Context) ([]domain.Post, func(), error) {
	raw, release, err := c.query(ctx, epGetPost, "")
	if err != nil {
		return nil, release, err
	}

	env, err := decode[postsEnvelope](raw)
	if err != nil {
		release()

		return nil, func() {}, err
	}

	return env.Data, release, nil
}

// GetPostByID fetches a single feed entry.
func (c *Client) GetPostByID(ctx context.Context, id string) (domain.Post, func(), error) {
	raw, release, err := c.query(ctx, epGetPostByID, id)
	if err != nil {
		return domain.Post{}, release, err
	}

	env, err := decode[postEnvelope](raw)
	if err != nil {
		release()

		return domain.Post{}, func() {}, err
	}

	return env.Data, release, nil
}

// CreateSociety registers a new society and invalidates cached society queries.
func (c *Client) CreateSociety(ctx context.Context, req CreateSocietyRequest) (StatusResponse, error) {
	raw, err := c.mutate(ctx, epCreateSociety, "", req)
	if err != nil {
		return StatusResponse{}, err
	}

	return decode[StatusResponse](raw)
}

// GetSocieties fetches all registered societies.
func (c *Client) GetSocieties(ctx context.Context) ([]domain.Society, func(), error) {
	raw, release, err := c.query(ctx, epGetSociety, "")
	if err != nil {
		return nil, release, err
	}

	env, err := decode[societiesEnvelope](raw)
	if err != nil {
		release()

		return nil, func() {}, err
	}

	return env.Data, release, nil
}
