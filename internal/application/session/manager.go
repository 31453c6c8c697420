// Package session implements the client's session lifecycle: login, logout,
// registration, and identity hydration. The manager is the exclusive owner of
// the credential; the token store is its storage delegate and the request
// pipeline only ever reads the current value.
//
// The session has two states: Anonymous (no credential) and Authenticated
// (credential plus hydrated identity). Login and registration are atomic from
// the outside - a credential whose identity cannot be hydrated is cleared
// rather than left half-installed.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/edubase/edubase-client/internal/domain/user"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
	"github.com/edubase/edubase-client/internal/infrastructure/credentials"
)

const (
	loginPath    = "/api/v1/auth/login"
	registerPath = "/api/v1/auth/register"
	profilePath  = "/api/v1/auth/me"
)

// Manager orchestrates the session state machine.
type Manager struct {
	api    *api.Client
	creds  credentials.Store
	logger *slog.Logger

	mu       sync.RWMutex
	identity *user.Identity
}

// NewManager creates a session manager over the given pipeline and store.
func NewManager(client *api.Client, creds credentials.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: client, creds: creds, logger: logger}
}

// IsAuthenticated reports whether a credential is present. This is derived
// from the store on every call; nothing caches it independently.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.creds.Get()
	return ok
}

// CurrentUser returns the hydrated identity, or nil while anonymous or during
// the hydration window.
func (m *Manager) CurrentUser() *user.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity
}

// tokenGrant is the authentication endpoint's response.
type tokenGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates with the backend's token grant endpoint. The endpoint
// follows the OAuth2 password-grant convention and takes form-encoded
// parameters. On success the credential is installed and the identity
// hydrated; any failure leaves the session anonymous.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if err := validateLogin(username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var grant tokenGrant
	if err := m.api.PostForm(ctx, loginPath, form, &grant); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if grant.AccessToken == "" {
		return fmt.Errorf("login: no access token in response")
	}

	if err := m.creds.Set(grant.AccessToken); err != nil {
		return fmt.Errorf("login: store credential: %w", err)
	}

	if err := m.Hydrate(ctx); err != nil {
		// Hydrate has already torn the session down.
		return fmt.Errorf("login: %w", err)
	}

	m.logger.Info("logged in", "user", m.CurrentUser().DisplayName())
	return nil
}

// Hydrate fetches the identity for the present credential. Any failure
// (transport, authorization, malformed profile) logs the session out and is
// propagated; hydration failure is never silently ignored.
func (m *Manager) Hydrate(ctx context.Context) error {
	if _, ok := m.creds.Get(); !ok {
		return fmt.Errorf("hydrate: no credential present")
	}

	var identity user.Identity
	if err := m.api.Get(ctx, profilePath, &identity); err != nil {
		m.Logout()
		return fmt.Errorf("hydrate: %w", err)
	}
	if identity.ID == 0 {
		m.Logout()
		return fmt.Errorf("hydrate: malformed profile response")
	}

	m.mu.Lock()
	m.identity = &identity
	m.mu.Unlock()
	return nil
}

// Logout clears the identity and the credential. Idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.identity = nil
	m.mu.Unlock()

	if err := m.creds.Clear(); err != nil {
		m.logger.Warn("clear credential", "error", err)
	}
}

// Registration is the sign-up payload.
type Registration struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"role"`
}

// Validate checks the registration payload before it is sent.
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(2, 50)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(&r.Role, validation.In(user.RoleStudent, user.RoleUser, user.RoleAdmin)),
	)
}

// Register creates an account and immediately logs it in, chaining the two
// flows the way the browser client did (the follow-up login uses the email).
// The created profile is returned; a failure in either step is propagated.
func (m *Manager) Register(ctx context.Context, reg Registration) (*user.Identity, error) {
	if reg.Role == "" {
		reg.Role = user.RoleStudent
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	var created user.Identity
	if err := m.api.Post(ctx, registerPath, reg, &created); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if err := m.Login(ctx, reg.Email, reg.Password); err != nil {
		return nil, fmt.Errorf("register: post-registration login: %w", err)
	}

	return &created, nil
}

func validateLogin(username, password string) error {
	return validation.Errors{
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
}
