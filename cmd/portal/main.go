// @title        ERP Portal API
// @version      1.0
// @description  Session-aware portal in front of the ERP REST backend.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api"
	"github.com/enterprisepro/erp-portal/internal/api/middleware"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
	"github.com/enterprisepro/erp-portal/internal/core/service"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/backend"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/db/memory"
	mongostore "github.com/enterprisepro/erp-portal/internal/infrastructure/db/mongo"
	redisstore "github.com/enterprisepro/erp-portal/internal/infrastructure/db/redis"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/db/sqlite"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/http/handlers"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/queue"
	"github.com/enterprisepro/erp-portal/internal/pkg/config"
	"github.com/enterprisepro/erp-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type tokenStore interface {
	ports.TokenStore
	handlers.Pinger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadContext(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "erp-portal",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openTokenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	transport, err := backend.NewTransport(backend.TransportConfig{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("backend transport: %w", err)
	}
	authAPI := backend.NewAuthAPI(transport)
	jars := service.NewTokenJars(store)

	// The factory and the session service depend on each other: a rejected
	// refresh must tear the session down.
	var sessions *service.SessionService
	clients := backend.NewFactory(transport, authAPI, jars, log,
		backend.WithExpiryHook(func(ctx context.Context, sessionID string) {
			sessions.Expire(ctx, sessionID)
		}),
	)

	notifications := service.NewNotificationService(clients, log,
		service.WithPendingThreshold(cfg.Notifications.PendingOrderThreshold),
	)
	poller := queue.NewPoller(cfg.Notifications.Interval, func(ctx context.Context, sessionID string) {
		// Expiry has already torn the session down and stopped this worker.
		if _, err := notifications.Poll(ctx, sessionID); err != nil {
			log.Debug().Err(err).Msg("notification poll ended the session")
		}
	}, log)
	poller.Start(ctx)
	defer poller.Stop()

	sessions = service.NewSessionService(jars, authAPI, poller, notifications, log)

	e := api.NewRouter(api.Deps{
		Sessions:      sessions,
		Notifications: notifications,
		Dashboards:    service.NewDashboardService(clients, log),
		Reports:       service.NewReportService(clients, log),
		Clients:       clients,
		Readiness: map[string]handlers.Pinger{
			"session_store": store,
			"erp_backend":   transport,
		},
		Session: middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			MaxAge:     cfg.Session.TTL,
		},
		Logger: logger.Component("http"),
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("received signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Env).
		Str("backend", cfg.Backend.URL).
		Str("session_store", cfg.Session.Store).
		Msg("portal listening")

	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info().Msg("portal stopped")
	return nil
}

func openTokenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (tokenStore, func(), error) {
	switch cfg.Session.Store {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewTokenStore(client, cfg.Session.TTL), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			SessionTTL: cfg.Session.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return mongostore.NewTokenStore(db), func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewTokenStore(db), func() { _ = db.Close() }, nil

	default:
		log.Warn().Msg("using in-memory session store; sessions will not survive a restart")
		return memory.NewTokenStore(), func() {}, nil
	}
}
