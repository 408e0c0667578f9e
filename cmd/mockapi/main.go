// Command mockapi runs a local stand-in for the remote defect-tracking API.
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

	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/infrastructure/db/memory"
	mongostore "github.com/controlsys/defect-web/internal/infrastructure/db/mongo"
	"github.com/controlsys/defect-web/internal/infrastructure/queue"
	"github.com/controlsys/defect-web/internal/mockapi"
	"github.com/controlsys/defect-web/internal/pkg/config"
	"github.com/controlsys/defect-web/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mockapi: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadMockAPI(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "defect-mockapi",
	})

	accounts, closeAccounts, err := openAccounts(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAccounts()

	n, err := mockapi.Seed(ctx, accounts, mockapi.DevAccounts())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int("accounts", n).Msg("seeded development accounts")
	}

	// Not tied to ctx: Stop runs once the server has drained.
	mailCtx, cancelMail := context.WithCancel(context.Background())
	defer cancelMail()
	mailer := queue.NewDispatcher(0, mockapi.LogSender{Log: log}, log)
	mailer.Start(mailCtx)

	srv := mockapi.New(mockapi.Config{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		FrontendURL: cfg.FrontendURL,
		PublicURL:   cfg.PublicURL,
	}, accounts, mailer, log)
	e := srv.Router()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("mock api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		mailer.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = e.Shutdown(shutdownCtx)

	mailer.Stop()
	log.Info().Msg("confirmation mails flushed")
	return err
}

func openAccounts(ctx context.Context, cfg *config.MockAPIConfig, log zerolog.Logger) (ports.AccountRepository, func(), error) {
	if cfg.Store != config.BackendMongo {
		log.Warn().Msg("using in-memory account store; accounts do not survive a restart")
		return memory.NewAccountRepository(), func() {}, nil
	}

	db, disconnect, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.MongoURI,
		Database: cfg.MongoDB,
		AppName:  "defect-mockapi",
	})
	if err != nil {
		return nil, nil, err
	}
	repo := mongostore.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, err
	}
	return repo, disconnect, nil
}
