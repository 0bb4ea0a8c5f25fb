// Package auth handles account passwords, login sessions and the HTTP
// middleware that gates the admin and user endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrichat/internal/logging"
)

// Account roles
const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
)

// DefaultTTL is how long a login token stays valid when no TTL is configured.
const DefaultTTL = 3 * time.Hour

// User is the account view the manager needs
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// UserStore persists accounts
type UserStore interface {
	// GetUserByUsername returns ErrUserNotFound when there is no such account.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// CreateUser returns ErrUsernameTaken or ErrEmailTaken on collisions.
	CreateUser(ctx context.Context, username, email, passwordHash, role string) (int64, error)
}

// Manager issues and verifies login sessions
type Manager struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewManager creates a Manager. A non-positive ttl falls back to DefaultTTL.
func NewManager(users UserStore, sessions SessionStore, ttl time.Duration, logger *logging.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// TTL returns the lifetime of newly issued sessions
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login checks credentials and issues a new session. With requireAdmin set,
// accounts whose role is not admin get ErrNotAdmin even when the password
// is correct.
func (m *Manager) Login(ctx context.Context, username, password string, requireAdmin bool) (Session, error) {
	logger := m.logger.WithContext("username", username)

	user, err := m.users.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		logger.Info("login failed: unknown user")
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		logger.Info("login failed: wrong password")
		return Session{}, ErrInvalidCredentials
	}
	if requireAdmin && user.Role != RoleAdmin {
		logger.Warn("admin login refused for role %s", user.Role)
		return Session{}, ErrNotAdmin
	}

	s := Session{
		Token:     newToken(),
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.sessions.Save(ctx, s); err != nil {
		return Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	logger.WithContext("role", user.Role).Info("login succeeded")
	return s, nil
}

// Verify returns the session for token. Unknown and expired tokens yield
// ErrInvalidToken; an expired session is removed on the failing check.
func (m *Manager) Verify(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidToken
	}

	s, ok, err := m.sessions.Get(ctx, token)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return Session{}, ErrInvalidToken
	}

	if s.Expired(m.now()) {
		if err := m.sessions.Delete(ctx, token); err != nil {
			m.logger.Warn("failed to evict expired session: %v", err)
		}
		return Session{}, ErrInvalidToken
	}
	return s, nil
}

// Logout removes token. Unknown tokens are not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.sessions.Delete(ctx, token)
}

// Register creates a farmer account. Input validation is the caller's job.
func (m *Manager) Register(ctx context.Context, username, email, password string) (int64, error) {
	return m.createUser(ctx, username, email, password, RoleFarmer)
}

// EnsureUser creates the account unless one with that username exists. It
// is safe to call on every start.
func (m *Manager) EnsureUser(ctx context.Context, username, email, password, role string) error {
	_, err := m.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to look up user %s: %w", username, err)
	}

	_, err = m.createUser(ctx, username, email, password, role)
	if errors.Is(err, ErrUsernameTaken) {
		// created concurrently
		return nil
	}
	if err != nil {
		return err
	}
	m.logger.WithContext("username", username).WithContext("role", role).Info("created account")
	return nil
}

// EnsureAdmin guarantees the bootstrap "admin" account exists.
func (m *Manager) EnsureAdmin(ctx context.Context, email, password string) error {
	return m.EnsureUser(ctx, "admin", email, password, RoleAdmin)
}

func (m *Manager) createUser(ctx context.Context, username, email, password, role string) (int64, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	return m.users.CreateUser(ctx, username, email, hash, role)
}
