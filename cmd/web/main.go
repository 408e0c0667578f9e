// Command web serves the defect tracker's session and dashboard backend.
//
// @title        Defect Web API
// @version      1.0
// @description  Session lifecycle and dashboard backend for the defect tracker web client.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/api"
	"github.com/controlsys/defect-web/internal/api/middleware"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/core/service"
	"github.com/controlsys/defect-web/internal/infrastructure/apiclient"
	"github.com/controlsys/defect-web/internal/infrastructure/db/memory"
	mongostore "github.com/controlsys/defect-web/internal/infrastructure/db/mongo"
	redisstore "github.com/controlsys/defect-web/internal/infrastructure/db/redis"
	"github.com/controlsys/defect-web/internal/pkg/config"
	"github.com/controlsys/defect-web/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "defect-web",
	})

	store, closeStore, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, log)
	if err != nil {
		return err
	}

	forms := service.NewFormValidator()
	authService := service.NewAuthService(client, store, forms, log)

	health := map[string]ports.HealthChecker{"remote_api": client}
	if hc, ok := store.(ports.HealthChecker); ok {
		health["session_store"] = hc
	}

	e := api.NewRouter(api.Deps{
		Auth:   authService,
		Guard:  service.NewGuard(store, authService, log),
		Loader: service.NewDashboardLoader(client, log),
		Forms:  forms,
		Cookies: middleware.CookieConfig{
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
		Health:     health,
		Registerer: prometheus.DefaultRegisterer,
		Log:        log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("api", cfg.API.BaseURL).
			Str("session_backend", cfg.Session.Backend).
			Msg("web listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openSessionStore connects the configured session backend.
func openSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewSessionStore(rdb, cfg.Session.TTL), func() { _ = rdb.Close() }, nil

	case config.BackendMongo:
		db, disconnect, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "defect-web",
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.NewSessionStore(db, cfg.Session.TTL)
		if err := store.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, err
		}
		return store, disconnect, nil

	default:
		log.Warn().Msg("using in-memory session store; sessions do not survive a restart")
		return memory.NewSessionStore(cfg.Session.TTL), func() {}, nil
	}
}
