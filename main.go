package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrichat/internal/api"
	"agrichat/internal/app"
	"agrichat/internal/config"
	"agrichat/internal/ingest"
	"agrichat/internal/logging"
	"agrichat/internal/watcher"

	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	configPath := os.Getenv("AGRICHAT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logFile string
	if cfg.Logging.FileEnabled {
		logFile = cfg.Logging.File
	}
	zl, closer, err := logging.Build(logging.Options{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		FilePath:   logFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer closer.Close()
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Error("agrichat stopped with error", zap.Error(err))
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	logger := logging.New("main", zl)
	logger.Info("Starting agrichat v%s...", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiLogger := logging.New("api", zl)
	hub := api.NewHub(cfg.Server.CORSOrigins, apiLogger.Named("hub"))
	go hub.Run(ctx)

	svc, err := app.New(ctx, cfg, zl, app.WithNotifier(hub))
	if err != nil {
		return err
	}
	defer svc.Close()
	logger.WithContext("sessions", cfg.Auth.SessionStore).Info("Services initialized")

	fetcher := ingest.NewPageFetcher(&http.Client{Timeout: 15 * time.Second}, logging.New("fetch", zl))

	if cfg.Import.Enabled {
		w, err := watcher.NewWatcher(cfg.Import.Folder, svc.Importer, logging.New("watcher", zl))
		if err != nil {
			return fmt.Errorf("failed to initialize watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer func() {
			stop()
			w.Wait()
		}()
		logger.Info("Watching import folder: %s", cfg.Import.Folder)
	}

	srv := api.NewServer(api.Config{
		StaticDir:   cfg.Server.StaticDir,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, api.Deps{
		Knowledge: svc.Store,
		Auth:      svc.Auth,
		Chat:      svc.Chat,
		ChatLog:   svc.ChatLog,
		Importer:  svc.Importer,
		Fetcher:   fetcher,
		Hub:       hub,
		Metrics:   svc.Metrics,
		Logger:    apiLogger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithContext("error", err.Error()).Warn("Shutdown did not complete")
	}
	logger.Info("agrichat stopped")
	return nil
}
