package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateUser inserts an account. Collisions are detected by the table's
// UNIQUE constraints and reported as ErrUsernameTaken or ErrEmailTaken.
// An empty email is stored as NULL.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash, role string) (int64, error) {
	if role == "" {
		role = RoleFarmer
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password, role, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		username, nullable(strings.TrimSpace(email)), passwordHash, role,
	)
	if err != nil {
		if mapped := uniqueViolation(err); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

// uniqueViolation maps a SQLite UNIQUE constraint failure on users to the
// matching sentinel, or returns nil.
func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	}
	return nil
}

// GetUserByUsername returns the account or ErrNotFound
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var (
		u         User
		email     sql.NullString
		createdAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, role, created_at FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Email = email.String
	u.CreatedAt = createdAt.Time
	return &u, nil
}

// CountUsers returns the number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
