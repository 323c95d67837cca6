package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/davidrangel/poscenter-gateway/api/routes"
	cartpkg "github.com/davidrangel/poscenter-gateway/internal/cart"
	"github.com/davidrangel/poscenter-gateway/internal/catalog"
	"github.com/davidrangel/poscenter-gateway/internal/checkout"
	"github.com/davidrangel/poscenter-gateway/internal/directory"
	"github.com/davidrangel/poscenter-gateway/pkg/config"
	"github.com/davidrangel/poscenter-gateway/pkg/logger"
	"github.com/davidrangel/poscenter-gateway/pkg/metrics"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
	"github.com/davidrangel/poscenter-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cache catalog.Cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		cache = redisClient
	} else {
		logg.Info(ctx, "redis not configured, catalog cache disabled")
	}

	backend, err := posapi.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(ctx, "failed to build backend client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogService, err := catalog.NewService(backend, cache, cfg.Catalog.CacheTTL, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	directoryService, err := directory.NewService(backend)
	if err != nil {
		logg.Error(ctx, "failed to create directory service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(backend, checkoutMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	cartStore := cartpkg.NewStore(cfg.Cart, logg)
	go cartStore.RunSweeper(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting gateway server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			CartStore:      cartStore,
			Catalog:        catalogService,
			Directory:      directoryService,
			Checkout:       checkoutService,
			Orders:         backend,
			HTTPMetrics:    httpMetrics,
			MetricsHandler: registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "gateway server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		shutdownErr := server.Shutdown(shutdownCtx)
		if redisClient != nil {
			shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
		}
		if shutdownErr != nil {
			logg.Error(startCtx, "shutdown finished with errors", shutdownErr)
			os.Exit(1)
		}
		logg.Info(startCtx, "shutdown complete")
	}
}
