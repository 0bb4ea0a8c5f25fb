package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// SessionKey is the context key for the verified session
const SessionKey contextKey = "session"

// Verifier checks session tokens
type Verifier interface {
	Verify(ctx context.Context, token string) (Session, error)
}

// RequireAdmin only lets requests with a valid admin session through.
func RequireAdmin(v Verifier) func(http.Handler) http.Handler {
	return requireRole(v, true)
}

// RequireSession lets any valid session through.
func RequireSession(v Verifier) func(http.Handler) http.Handler {
	return requireRole(v, false)
}

func requireRole(v Verifier, admin bool) func(http.Handler) http.Handler {
	invalid := "Invalid or expired token"
	if admin {
		invalid = "Invalid or expired admin token"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := v.Verify(r.Context(), TokenFromRequest(r))
			if errors.Is(err, ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "unauthorized", invalid)
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
				return
			}
			if admin && s.Role != RoleAdmin {
				writeError(w, http.StatusForbidden, "forbidden", "Not an admin user")
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts the session token from the request.
// Checks the X-Token header, then an "Authorization: Bearer" header, then
// the token query parameter (browsers cannot set headers on websockets).
// Returns empty string if none is found.
func TokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get("X-Token")); t != "" {
		return t
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}

	return r.URL.Query().Get("token")
}

// SessionFromContext returns the session stored by the middleware
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(SessionKey).(Session)
	return s, ok
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
