// Package api is the HTTP surface: the public chat and account endpoints,
// the token-gated admin endpoints and the live chat feed.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"agrichat/internal/auth"
	"agrichat/internal/chat"
	"agrichat/internal/chatlog"
	"agrichat/internal/ingest"
	"agrichat/internal/logging"
	"agrichat/internal/metrics"
	"agrichat/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// KnowledgeStore is the knowledge table as seen by the admin endpoints
type KnowledgeStore interface {
	ListKnowledge(ctx context.Context, query string, limit int) ([]store.KnowledgeEntry, error)
	GetKnowledge(ctx context.Context, id int64) (*store.KnowledgeEntry, error)
	CreateKnowledge(ctx context.Context, in store.KnowledgeInput) (int64, error)
	UpdateKnowledge(ctx context.Context, id int64, in store.KnowledgeInput) error
	DeleteKnowledge(ctx context.Context, id int64) error
	CountKnowledge(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// Authenticator issues and checks login sessions
type Authenticator interface {
	auth.Verifier
	Login(ctx context.Context, username, password string, requireAdmin bool) (auth.Session, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, username, email, password string) (int64, error)
	TTL() time.Duration
}

// ChatResponder answers one chat message
type ChatResponder interface {
	Respond(ctx context.Context, req chat.Request) chat.Response
}

// ChatLog reads back logged exchanges
type ChatLog interface {
	Tail(limit int) ([]chatlog.Record, error)
	Export(w io.Writer) (int, error)
}

// Importer loads knowledge entries from uploads and web pages
type Importer interface {
	ImportCSV(ctx context.Context, r io.Reader, source string) (ingest.Result, error)
	ImportURL(ctx context.Context, fetcher ingest.Fetcher, question, rawURL, intent, crop string) (int64, error)
}

// Config holds HTTP surface settings
type Config struct {
	StaticDir   string
	CORSOrigins []string
}

// Deps are the services behind the handlers. Metrics, Importer and
// Fetcher may be nil; the routes that need them are then not mounted.
type Deps struct {
	Knowledge KnowledgeStore
	Auth      Authenticator
	Chat      ChatResponder
	ChatLog   ChatLog
	Importer  Importer
	Fetcher   ingest.Fetcher
	Hub       *Hub
	Metrics   *metrics.Collector
	Logger    *logging.Logger
}

// Server holds dependencies and provides HTTP handlers
type Server struct {
	Deps
	config    Config
	validator *Validator
}

// NewServer creates a server. A nil Hub gets a fresh one; the caller runs it.
func NewServer(cfg Config, deps Deps) *Server {
	if deps.Hub == nil {
		deps.Hub = NewHub(cfg.CORSOrigins, deps.Logger.Named("hub"))
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Server{
		Deps:      deps,
		config:    cfg,
		validator: NewValidator(),
	}
}

// Router builds the HTTP handler with every route mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(s.Logger.Zap()))
	r.Use(chimw.Recoverer)
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Token"},
		MaxAge:         300,
	}))

	// Static files
	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.StaticDir))))

	r.Get("/health", s.handleHealth)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	// Public
	r.Get("/chat", s.handleChat)
	r.Post("/chat", s.handleChat)
	r.Post("/signup", s.handleSignup)

	r.Post("/user/login", s.handleLogin(false))
	r.Post("/user/logout", s.handleLogout)
	r.With(auth.RequireSession(s.Auth)).Get("/user/me", s.handleMe)

	r.Post("/admin/login", s.handleLogin(true))
	r.Post("/admin/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin(s.Auth))

		r.Get("/knowledge", s.handleListKnowledge)
		r.Post("/knowledge", s.handleCreateKnowledge)
		r.Get("/knowledge/{id}", s.handleGetKnowledge)
		r.Put("/knowledge/{id}", s.handleUpdateKnowledge)
		r.Delete("/knowledge/{id}", s.handleDeleteKnowledge)
		if s.Importer != nil {
			r.Post("/knowledge/import", s.handleImportCSV)
			if s.Fetcher != nil {
				r.Post("/knowledge/import/url", s.handleImportURL)
			}
		}

		r.Get("/chats", s.handleListChats)
		r.Get("/chats/export", s.handleExportChats)
		r.Get("/chats/live", s.handleLiveChats)
	})

	return r
}
