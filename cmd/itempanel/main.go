package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	mongoadapter "github.com/ericfisherdev/itempanel/internal/adapter/driven/mongo"
	sqliteadapter "github.com/ericfisherdev/itempanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/itempanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/itempanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/itempanel/internal/application"
	"github.com/ericfisherdev/itempanel/internal/config"
	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (.env first, real environment wins).
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"backend", cfg.Backend,
		"db_name", cfg.DBName,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Select the document store backend.
	connector, err := newConnector(ctx, cfg)
	if err != nil {
		return err
	}

	// 4. Wire application services. Nothing connects until someone logs in.
	creds := application.NewCredentialHolder(cfg.DefaultCredential)
	session := application.NewSessionService(connector, cfg.DBName, creds, slog.Default())
	itemSvc := application.NewItemService(session, slog.Default())
	nav := application.NewNavigator(slog.Default())

	// 5. Register API and GUI routes on one mux.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(session, itemSvc, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(session, itemSvc, nav, slog.Default()))

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("itempanel started", "listen_addr", cfg.ListenAddr, "backend", cfg.Backend)

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 7. Close the store connection held by the session.
	session.Logout(shutdownCtx)

	slog.Info("shutdown complete")
	return nil
}

// newConnector builds the connector for the configured backend. The sqlite
// backend creates the bootstrap account when one is configured.
func newConnector(ctx context.Context, cfg *config.Config) (driven.Connector, error) {
	switch cfg.Backend {
	case model.BackendSQLite:
		c := sqliteadapter.NewConnector(cfg.DataDir, slog.Default())
		if cfg.HasBootstrapAccount() {
			created, err := c.EnsureAccount(ctx, cfg.DBName, model.Credential{
				Username: cfg.BootstrapUsername,
				Password: cfg.BootstrapPassword,
			})
			if err != nil {
				return nil, err
			}
			slog.Info("bootstrap account checked", "username", cfg.BootstrapUsername, "created", created)
		}
		return c, nil
	default:
		slog.Info("using mongodb backend", "auth_source", cfg.MongoAuthSource, "connect_timeout", cfg.MongoConnectTimeout)
		return mongoadapter.NewConnector(cfg.MongoURI, cfg.MongoAuthSource, cfg.MongoConnectTimeout, slog.Default()), nil
	}
}
