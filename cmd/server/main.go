package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/api"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/config"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/exchangerate"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/logger"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/metrics"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/service"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck // nothing useful to do on exit
	zap.ReplaceGlobals(zl)

	m := metrics.New(metrics.WithRuntimeCollectors())

	// Create provider client and services
	client := exchangerate.NewProviderClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIKey,
		cfg.Upstream.Timeout,
		exchangerate.WithRecorder(m),
	)
	exchangeService := service.NewExchangeService(client)
	systemService := service.NewSystemService(cfg.Upstream)

	router := api.NewRouter(exchangeService, systemService, m, zl, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
		// History lookups make up to 30 sequential provider calls.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30*cfg.Upstream.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("version", version.Version),
			zap.String("upstream", cfg.Upstream.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Wait for interrupt signal (or a server failure) for graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}

	zl.Info("server exited")
}
