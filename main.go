package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/revisit-app/decks-service/internal/collaborator"
	"github.com/revisit-app/decks-service/internal/config"
	"github.com/revisit-app/decks-service/internal/domain"
	"github.com/revisit-app/decks-service/internal/handler"
	"github.com/revisit-app/decks-service/internal/repository/redis"
	"github.com/revisit-app/decks-service/internal/repository/sqlite"
	"github.com/revisit-app/decks-service/internal/service"
)

// store is what both storage backends provide.
type store interface {
	domain.Database
	Decks() domain.DeckRepository
	SavedDecks() domain.SavedDecksRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(handler.NewContextLogHandler(slog.NewJSONHandler(os.Stdout, logOpts)))
	slog.SetDefault(logger)

	db, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("store ready", "backend", cfg.StoreBackend)

	signer := collaborator.NewTokenSigner(cfg.ServiceTokenSecret)
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	directory := collaborator.NewDirectoryClient(httpClient, cfg.UserDirectoryURL, signer)
	profiles := collaborator.NewProfileClient(httpClient, cfg.UserProfileURL, signer)

	deckService := service.NewDeckService(db.Decks(), db.SavedDecks(), directory, profiles, cfg.UpstreamTimeout)
	saveService := service.NewSaveService(db.Decks(), db.SavedDecks())

	opts := handler.RouterOptions{CORSOrigins: cfg.CORSOrigins}
	if cfg.RateLimitEnabled() {
		limiter := service.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer limiter.Close()
		opts.Limiter = limiter
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(deckService, saveService, opts),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return sqlite.New(cfg.DatabasePath)
	case config.BackendRedis:
		return redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
