package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/namansharma3007/Equi-share/internal/auth"
	"github.com/namansharma3007/Equi-share/internal/config"
	"github.com/namansharma3007/Equi-share/internal/ledger"
	"github.com/namansharma3007/Equi-share/internal/middleware"
	"github.com/namansharma3007/Equi-share/internal/models"
	"github.com/namansharma3007/Equi-share/internal/server"
	"github.com/namansharma3007/Equi-share/internal/storage"
	"github.com/namansharma3007/Equi-share/internal/storage/memory"
	"github.com/namansharma3007/Equi-share/internal/storage/postgres"
	"github.com/namansharma3007/Equi-share/internal/storage/sqlite"
	"github.com/namansharma3007/Equi-share/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.Configure(cfg.LogLevel, cfg.LogFormat)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "backend", cfg.StorageBackend)

	ledgerSvc := ledger.NewService(store, ledger.Options{
		Tolerance:         cfg.SplitTolerance,
		EnforceMembership: cfg.EnforceMembership,
		Logger:            logger,
		OnExpenseSettled:  func(models.Expense) { middleware.RecordExpenseSettled() },
	})

	handler := server.NewRouter(server.Deps{
		Store:          store,
		Ledger:         ledgerSvc,
		Authenticator:  auth.NewPasswordAuthenticator(store),
		JWT:            auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS, which Connect's gRPC protocol needs
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.BackendMemory:
		return memory.New(), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}
