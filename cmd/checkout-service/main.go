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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/cached"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/domain"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/httpx"
	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/sqlite"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEndpoint != "" {
		shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
			ServiceName: cfg.OTelServiceName,
			Endpoint:    cfg.OTelEndpoint,
			Environment: cfg.Environment,
		})
		if err != nil {
			slog.Error("failed to initialise tracer", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	repo, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	var orders domain.Repository = repo
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, "checkout")
		orders = cached.New(repo, redisCache, cfg.CacheTTL)
		slog.Info("order cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	router := httpx.NewRouter(httpx.NewHandler(orders))
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(router, "checkout"),
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("checkout service running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
