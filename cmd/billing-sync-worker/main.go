package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/vora-labs/gogo-admin/internal/billingsync"
	product "github.com/vora-labs/gogo-admin/internal/products"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/instance"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/metrics"
	"github.com/vora-labs/gogo-admin/pkg/migrate"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
	"github.com/vora-labs/gogo-admin/pkg/outbox/idempotency"
	"github.com/vora-labs/gogo-admin/pkg/outbox/registry"
	"github.com/vora-labs/gogo-admin/pkg/redis"
)

const (
	serviceName    = "billing-sync-worker"
	idempotencyTTL = 24 * time.Hour
	metricsAddr    = ":9102"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		File: &logger.FileOptions{
			Path:       cfg.App.LogFile,
			MaxSizeMB:  cfg.App.LogMaxSizeMB,
			MaxBackups: cfg.App.LogMaxBackups,
		},
	})

	if err := run(cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(context.Background(), "billing sync worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "billing sync worker shutting down gracefully")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
		"instance":    instance.ID(),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	provider, err := billingsync.NewProvider(ctx, cfg, logg)
	if err != nil {
		return err
	}
	if provider == nil {
		return errors.New("billing sync worker requires a billing provider")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	syncer, err := billingsync.NewService(billingsync.ServiceParams{
		Repo:        product.NewRepository(dbClient.DB()),
		Provider:    provider,
		Locks:       redisClient,
		Metrics:     metrics.NewBillingSyncMetrics(reg),
		Logger:      logg,
		LockTTL:     cfg.BillingSync.LockTTL,
		CallTimeout: cfg.BillingSync.CallTimeout,
	})
	if err != nil {
		return err
	}

	guard, err := idempotency.NewManager(redisClient, idempotencyTTL)
	if err != nil {
		return err
	}

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
		Registry:      registry.NewEventRegistry(),
		Syncer:        syncer,
		Idempotency:   guard,
		Metrics:       metrics.NewOutboxMetrics(reg),
	})
	if err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server failed", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, metricsServer.Shutdown(shutdownCtx))
	}()

	logg.Info(ctx, "starting billing sync worker")
	return service.Run(ctx)
}
