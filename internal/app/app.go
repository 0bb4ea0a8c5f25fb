// Package app assembles the chat services from configuration. The server
// and the admin CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"agrichat/internal/auth"
	"agrichat/internal/chat"
	"agrichat/internal/chatlog"
	"agrichat/internal/config"
	"agrichat/internal/ingest"
	"agrichat/internal/knowledge"
	"agrichat/internal/logging"
	"agrichat/internal/metrics"
	"agrichat/internal/reply"
	"agrichat/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services is the wired object graph
type Services struct {
	Store    *store.Store
	Sessions auth.SessionStore
	Auth     *auth.Manager
	ChatLog  *chatlog.Log
	Searcher *knowledge.Searcher
	Chat     *chat.Service
	Importer *ingest.Importer
	Metrics  *metrics.Collector

	redis *redis.Client
}

type options struct {
	notifier chat.Notifier
	sessions auth.SessionStore
}

// Option configures New
type Option func(*options)

// WithNotifier sends every logged chat exchange to n.
func WithNotifier(n chat.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithSessionStore overrides the configured session backend.
func WithSessionStore(s auth.SessionStore) Option {
	return func(o *options) { o.sessions = s }
}

// New opens the store, connects the session backend and builds every
// service. The bootstrap admin account is created if missing.
func New(ctx context.Context, cfg *config.Config, zl *zap.Logger, opts ...Option) (*Services, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	svc := &Services{Store: st}

	if err := svc.build(ctx, cfg, zl, o); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

func (svc *Services) build(ctx context.Context, cfg *config.Config, zl *zap.Logger, o options) error {
	if cfg.Metrics.Enabled {
		svc.Metrics = metrics.NewCollector("agrichat")
	}

	sessions := o.sessions
	if sessions == nil {
		switch cfg.Auth.SessionStore {
		case "redis":
			client, err := auth.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			svc.redis = client
			sessions = auth.NewRedisSessionStore(client, cfg.Redis.KeyPrefix)
		default:
			sessions = auth.NewMemorySessionStore()
		}
	}
	svc.Sessions = sessions

	svc.Auth = auth.NewManager(userAdapter{svc.Store}, sessions, cfg.Auth.TokenTTL, logging.New("auth", zl))
	if err := svc.Auth.EnsureAdmin(ctx, cfg.Auth.DefaultAdminEmail, cfg.Auth.DefaultAdminPassword); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	var (
		searchOpts []knowledge.Option
		chatOpts   []chat.Option
	)
	if svc.Metrics != nil {
		searchOpts = append(searchOpts, knowledge.WithRecorder(svc.Metrics))
		chatOpts = append(chatOpts, chat.WithRecorder(svc.Metrics))
	}
	if o.notifier != nil {
		chatOpts = append(chatOpts, chat.WithNotifier(o.notifier))
	}

	svc.Searcher = knowledge.NewSearcher(knowledgeAdapter{svc.Store}, logging.New("knowledge", zl), searchOpts...)
	svc.ChatLog = chatlog.New(cfg.ChatLog.Path)
	svc.Chat = chat.NewService(reply.NewGenerator(svc.Searcher), svc.ChatLog, logging.New("chat", zl), chatOpts...)
	svc.Importer = ingest.NewImporter(importAdapter{svc.Store}, logging.New("ingest", zl))
	return nil
}

// Close releases the database and Redis connections
func (svc *Services) Close() error {
	var errs []error
	if svc.redis != nil {
		errs = append(errs, svc.redis.Close())
	}
	if svc.Store != nil {
		errs = append(errs, svc.Store.Close())
	}
	return errors.Join(errs...)
}
