package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the username is unknown or the
	// password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAdmin is returned by the admin login flow for non-admin accounts.
	ErrNotAdmin = errors.New("not an admin user")
	// ErrInvalidToken is returned for unknown or expired session tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// User store errors. UserStore implementations must return these.
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)
