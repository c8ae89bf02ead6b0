// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/roomapi"
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Store  TokenStore
	Client *roomapi.Client
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Manager holds the current token and its decoded claims. Claims are
// always Decode(token), and nil when there is no token.
type Manager struct {
	store  TokenStore
	client *roomapi.Client
	logger *slog.Logger

	mu     sync.Mutex
	token  string
	claims *Claims
}

// NewManager creates a Manager with an empty session. Call
// LoadPersistedToken to resume a previous login.
func NewManager(config ManagerConfig) *Manager {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: config.Store, client: config.Client, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (r loginResponse) Validate() error {
	if r.AccessToken == "" {
		return errors.New("missing access_token")
	}
	return nil
}

// LoadPersistedToken adopts the token saved by a previous login, if
// any. An unreadable stored token is logged and treated as absent.
func (m *Manager) LoadPersistedToken() (string, bool) {
	token, ok, err := m.store.Load()
	if err != nil {
		m.logger.Warn("ignoring unreadable stored token", "error", err)
		token, ok = "", false
	}
	m.adopt(token)
	return token, ok
}

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Claims returns a copy of the current decoded claims, or nil.
func (m *Manager) Claims() *Claims {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims == nil {
		return nil
	}
	claims := *m.claims
	return &claims
}

// Login exchanges username and password for an access token at
// authBaseURL. On success the token is persisted and then adopted. A 401
// or 403 is returned as *AuthError. password is borrowed, not closed.
func (m *Manager) Login(ctx context.Context, authBaseURL, username string, password *secret.Buffer) (string, error) {
	endpoint := roomapi.Endpoint(authBaseURL, "v8", "auth", "login")
	response, err := roomapi.PostJSON[loginResponse](ctx, m.client, endpoint,
		loginRequest{Username: username, Password: password.String()}, "")
	if err != nil {
		var httpErr *roomapi.HTTPError
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return "", &AuthError{Username: username, StatusCode: httpErr.StatusCode, Message: httpErr.Body, Err: err}
		}
		return "", err
	}

	if err := m.store.Save(response.AccessToken); err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}
	m.adopt(response.AccessToken)

	claims := Decode(response.AccessToken)
	if claims == nil {
		m.logger.Info("logged in", "username", username)
	} else {
		m.logger.Info("logged in", "username", username, "sub", claims.Sub, "role", claims.Role)
	}
	return response.AccessToken, nil
}

// Logout clears the in-memory session and the stored token. It may be
// called any number of times.
func (m *Manager) Logout() error {
	m.adopt("")
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clearing stored token: %w", err)
	}
	return nil
}

func (m *Manager) adopt(token string) {
	var claims *Claims
	if token != "" {
		claims = Decode(token)
	}
	m.mu.Lock()
	m.token = token
	m.claims = claims
	m.mu.Unlock()
}
