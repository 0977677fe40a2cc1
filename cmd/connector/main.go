package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecomkit/qualpay-connector/internal/application/services"
	"github.com/ecomkit/qualpay-connector/internal/config"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/persistence"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/persistence/postgres"
	"github.com/ecomkit/qualpay-connector/internal/infrastructure/qualpay"
	"github.com/ecomkit/qualpay-connector/internal/interfaces/rest"
	"github.com/ecomkit/qualpay-connector/internal/interfaces/rest/middleware"
)

// staticSettings serves the settings loaded at startup. A store embedding
// this connector would back this with its settings service instead, so
// changes apply without a restart.
type staticSettings struct {
	settings config.Settings
}

func (s staticSettings) Settings(ctx context.Context) (config.Settings, error) {
	return s.settings, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting qualpay connector",
		"port", cfg.Server.Port,
		"sandbox", cfg.Qualpay.UseSandbox,
	)

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tokenRepo := postgres.NewCardTokenRepository(db.Pool)
	client := qualpay.NewClient(cfg.Qualpay.ConnTimeout, logger)
	settings := staticSettings{settings: cfg.Qualpay}

	paymentService := services.NewPaymentService(client, settings, tokenRepo, logger)
	webhookService := services.NewWebhookService(client, settings, logger)

	h := rest.NewHandlers(paymentService, webhookService, logger)

	mux := http.NewServeMux()
	h.Register(mux)

	handler := middleware.Recovery(logger)(http.Handler(mux))
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
