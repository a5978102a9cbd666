// Command main is the entry point for the Vecinu API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vecinu/internal/bootstrap"
	"vecinu/internal/cache"
	"vecinu/internal/config"
	"vecinu/internal/database"
	"vecinu/internal/identity"
	"vecinu/internal/middleware"
	"vecinu/internal/notifications"
	"vecinu/internal/observability"
	"vecinu/internal/repository"
	"vecinu/internal/server"
	"vecinu/internal/service"
	"vecinu/internal/storage"

	"github.com/redis/go-redis/v9"
)

// @title Vecinu API
// @version 1.0
// @description Neighborhood social feed: posts, comments, marketplace listings, reports and moderation.

// @contact.name API Support
// @contact.email support@vecinu.ro

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	middleware.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "vecinu-api",
		ServiceVersion: server.Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	// The API degrades without Redis: no cache, no rate limiting, no
	// session revocation and no realtime fan-out.
	var rdb *redis.Client
	if client, err := cache.Connect(ctx, cfg.RedisURL); err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without it", slog.String("error", err.Error()))
	} else {
		rdb = client
	}

	objects, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	media, _ := objects.(*storage.MemoryStore)

	if err := bootstrap.InitRuntime(ctx, cfg, db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	tokens := identity.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.SessionTTL())
	auth := identity.NewAuthenticator(tokens, users, rdb)
	provider, err := identity.NewProvider(cfg, users, tokens)
	if err != nil {
		return err
	}

	dispatcher := notifications.NewDispatcher(cfg.NotificationWorkers, cfg.NotificationQueueSize)
	notifier := notifications.NewNotifier(rdb)
	if cfg.IsDevLike() {
		err := notifier.StartUserSubscriber(ctx, func(channel, payload string) {
			middleware.Logger.Debug("realtime event", slog.String("channel", channel), slog.Int("bytes", len(payload)))
		})
		if err != nil {
			middleware.Logger.Warn("realtime subscriber not started", slog.String("error", err.Error()))
		}
	}

	svc := service.New(service.Deps{
		DB:            db,
		Cache:         cache.NewStore(rdb, cfg.CacheEnabled),
		Objects:       objects,
		Provider:      provider,
		Authenticator: auth,
		Dispatcher:    dispatcher,
		Notifier:      notifier,
		CacheTTLs: service.CacheTTLs{
			Feed: cfg.FeedCacheTTL(),
			Post: cfg.PostCacheTTL(),
		},
	})

	srv := server.New(server.Deps{
		Config:        cfg,
		DB:            db,
		Redis:         rdb,
		Services:      svc,
		Authenticator: auth,
		Media:         media,
	})

	listenErr := make(chan error, 1)
	go func() { listenErr <- srv.Listen() }()

	select {
	case err := <-listenErr:
		if err != nil {
			middleware.Logger.Error("listener stopped", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		middleware.Logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		middleware.Logger.Error("http shutdown", slog.String("error", err.Error()))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		middleware.Logger.Error("notification dispatcher shutdown", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		middleware.Logger.Error("tracing shutdown", slog.String("error", err.Error()))
	}
	if err := database.Close(db); err != nil {
		middleware.Logger.Error("database close", slog.String("error", err.Error()))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			middleware.Logger.Error("redis close", slog.String("error", err.Error()))
		}
	}
	return nil
}
