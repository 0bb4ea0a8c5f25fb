package auth

import "github.com/google/uuid"

// newToken returns a random opaque session token (UUID v4).
func newToken() string {
	return uuid.NewString()
}
