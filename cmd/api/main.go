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
	"golang.org/x/sync/errgroup"

	"github.com/vora-labs/gogo-admin/api/routes"
	"github.com/vora-labs/gogo-admin/internal/admins"
	"github.com/vora-labs/gogo-admin/internal/auth"
	"github.com/vora-labs/gogo-admin/internal/billingsync"
	"github.com/vora-labs/gogo-admin/internal/members"
	product "github.com/vora-labs/gogo-admin/internal/products"
	tool "github.com/vora-labs/gogo-admin/internal/tools"
	"github.com/vora-labs/gogo-admin/pkg/auth/session"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/db"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/metrics"
	"github.com/vora-labs/gogo-admin/pkg/migrate"
	"github.com/vora-labs/gogo-admin/pkg/outbox"
	"github.com/vora-labs/gogo-admin/pkg/redis"
)

const (
	serviceName     = "api"
	shutdownTimeout = 15 * time.Second
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
		logg.Error(context.Background(), "api stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api shut down gracefully")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	productRepo := product.NewRepository(dbClient.DB())

	var syncer product.Syncer
	if cfg.BillingSync.InlineSync {
		provider, err := billingsync.NewProvider(ctx, cfg, logg)
		if err != nil {
			return err
		}
		if provider != nil {
			svc, err := billingsync.NewService(billingsync.ServiceParams{
				Repo:        productRepo,
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
			syncer = svc
		}
	}

	productService, err := product.NewService(productRepo, dbClient, outbox.NewService(outbox.NewRepository(dbClient.DB()), logg), syncer, logg)
	if err != nil {
		return err
	}

	toolService, err := tool.NewService(tool.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		return err
	}

	adminRepo := admins.NewRepository(dbClient.DB())
	adminService, err := admins.NewService(adminRepo, logg)
	if err != nil {
		return err
	}

	memberService, err := members.NewService(members.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		AdminRepo:      adminRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Cache:           redisClient,
		Sessions:        sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		ProductService:  productService,
		ToolService:     toolService,
		AdminService:    adminService,
		MemberService:   memberService,
		SyncFailures:    outbox.NewDLQRepository(dbClient.DB()),
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.App.RequestTimeout + 5*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logg.WithField(gctx, "port", cfg.App.Port), "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
