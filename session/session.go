package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/ribbitkit/credentials"
	"github.com/kbukum/ribbitkit/httpclient"
	"github.com/kbukum/ribbitkit/logger"
)

// LoginURI is the platform's login resource, relative to the endpoint.
const LoginURI = "login"

// ErrInvalidCredentials is returned when the platform rejects the username
// and password or answers with something that is not a session.
var ErrInvalidCredentials = errors.New("Invalid User name or password") //nolint:staticcheck // platform wording

// Poster sends a signed POST.
type Poster interface {
	Post(ctx context.Context, payload any, uri string, opts ...httpclient.CallOption) (*httpclient.Response, error)
}

// Manager logs users in and out of a credential store. The Poster must sign
// with the same store.
type Manager struct {
	client Poster
	store  *credentials.Store
	log    *logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Logins are not logged by default.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a Manager.
func NewManager(client Poster, store *credentials.Store, opts ...Option) *Manager {
	m := &Manager{client: client, store: store, log: logger.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithComponent("session")
	return m
}

// Login exchanges username and password for a user token and installs it
// in the store. Any previous session is dropped first, so the login request
// is signed with the application keys alone.
//
// A rejected login or an unreadable answer leaves the store logged out and
// returns an error matching ErrInvalidCredentials. Transport failures are
// returned as they are, also leaving the store logged out.
func (m *Manager) Login(ctx context.Context, username, password string) (credentials.User, error) {
	m.store.ClearAccessToken()

	resp, err := m.client.Post(ctx, nil, LoginURI, httpclient.WithXAuth(username, password))
	if err != nil {
		m.store.ClearAccessToken()
		if rejected(err) {
			m.log.Warn("login rejected", logger.Fields("username", username, logger.FieldKind, httpclient.KindOf(err).String()))
			return credentials.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return credentials.User{}, err
	}

	token, secret, userID, err := parseLogin(string(resp.Body))
	if err != nil {
		m.store.ClearAccessToken()
		m.log.Warn("login answer unreadable", logger.ErrorFields("login", err))
		return credentials.User{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	user := credentials.User{ID: userID, Name: username}
	m.store.SetUser(user, token, secret)
	m.log.Info("logged in", logger.Fields(logger.FieldUserID, userID))
	return user, nil
}

// Logout drops the user session. Requests are signed with the application
// keys alone afterwards.
func (m *Manager) Logout() {
	if u, ok := m.store.User(); ok {
		m.log.Info("logged out", logger.Fields(logger.FieldUserID, u.ID))
	}
	m.store.ClearAccessToken()
}

// Current returns the logged-in user, if any.
func (m *Manager) Current() (credentials.User, bool) {
	return m.store.User()
}

// rejected reports whether the platform itself turned the login down.
func rejected(err error) bool {
	switch httpclient.KindOf(err) {
	case httpclient.KindUnauthorized, httpclient.KindBadRequest, httpclient.KindForbidden, httpclient.KindNotFound:
		return true
	}
	return false
}

// parseLogin reads "oauth_token=T&oauth_token_secret=S&user_id=U". The
// fields are positional.
func parseLogin(body string) (token, secret, userID string, err error) {
	parts := strings.Split(strings.TrimSpace(body), "&")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("expected 3 fields, got %d", len(parts))
	}
	values := make([]string, 3)
	for i := range values {
		_, v, ok := strings.Cut(parts[i], "=")
		if !ok || v == "" {
			return "", "", "", fmt.Errorf("field %d has no value", i+1)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}
