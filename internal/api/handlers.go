package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"agrichat/internal/auth"
	"agrichat/internal/chat"
)

type chatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// handleChat answers a chat message from a JSON body or the query string.
// It always responds 200.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req := chatRequest{
		Message:  r.URL.Query().Get("message"),
		Language: r.URL.Query().Get("language"),
	}
	if r.Method == http.MethodPost && r.ContentLength != 0 {
		var body chatRequest
		if err := decodeJSON(r, &body); err != nil {
			s.Logger.WithContext("error", err.Error()).Debug("ignoring unreadable chat body")
		} else {
			if body.Message != "" {
				req.Message = body.Message
			}
			if body.Language != "" {
				req.Language = body.Language
			}
		}
	}
	if req.Language == "" {
		req.Language = chat.LanguageAuto
	}

	resp := s.Chat.Respond(r.Context(), chat.Request{Message: req.Message, Language: req.Language})
	WriteJSON(w, http.StatusOK, resp)
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// handleSignup registers a farmer account
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.Validate(req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	_, err := s.Auth.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Username already exists")
		return
	case errors.Is(err, auth.ErrEmailTaken):
		ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Email already exists")
		return
	case err != nil:
		s.internalError(w, r, "signup failed", err)
		return
	}

	s.Logger.WithContext("username", req.Username).Info("new account registered")
	WriteJSON(w, http.StatusOK, map[string]string{
		"message":  "Signup successful!",
		"username": req.Username,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Username  string `json:"username"`
	Role      string `json:"role,omitempty"`
}

// handleLogin serves both login flows. The admin flow refuses non-admin
// accounts and leaves the role out of the response.
func (s *Server) handleLogin(admin bool) http.HandlerFunc {
	flow := "user"
	if admin {
		flow = "admin"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			ErrorResponse(w, http.StatusBadRequest, codeBadRequest, "Invalid request body")
			return
		}

		session, err := s.Auth.Login(r.Context(), req.Username, req.Password, admin)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			s.recordLogin(flow, "invalid")
			ErrorResponse(w, http.StatusUnauthorized, codeUnauthorized, "Invalid credentials")
			return
		case errors.Is(err, auth.ErrNotAdmin):
			s.recordLogin(flow, "forbidden")
			ErrorResponse(w, http.StatusForbidden, codeForbidden, "Not an admin user")
			return
		case err != nil:
			s.recordLogin(flow, "error")
			s.internalError(w, r, "login failed", err)
			return
		}
		s.recordLogin(flow, "success")

		resp := loginResponse{
			Token:     session.Token,
			ExpiresIn: int64(s.Auth.TTL().Seconds()),
			Username:  session.Username,
		}
		if !admin {
			resp.Role = session.Role
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) recordLogin(flow, result string) {
	if s.Metrics != nil {
		s.Metrics.RecordLogin(flow, result)
	}
}

// handleLogout drops the caller's token. It succeeds for unknown tokens.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		s.Logger.WithContext("error", err.Error()).Warn("logout failed")
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleMe returns the account behind the token
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	WriteJSON(w, http.StatusOK, map[string]string{
		"username": session.Username,
		"role":     session.Role,
	})
}

// handleIndex serves the landing page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.config.StaticDir, "index.html"))
}

// handleHealth reports liveness and the knowledge base size
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Knowledge.Ping(r.Context()); err != nil {
		s.Logger.WithContext("error", err.Error()).Error("database unreachable")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error"})
		return
	}

	n, err := s.Knowledge.CountKnowledge(r.Context())
	if err != nil {
		s.Logger.WithContext("error", err.Error()).Error("health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"knowledge": n,
	})
}
