// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/esb-backend/internal/billing"
	"github.com/carterperez-dev/esb-backend/internal/complaint"
	"github.com/carterperez-dev/esb-backend/internal/config"
	"github.com/carterperez-dev/esb-backend/internal/connection"
	"github.com/carterperez-dev/esb-backend/internal/core"
	"github.com/carterperez-dev/esb-backend/internal/health"
	"github.com/carterperez-dev/esb-backend/internal/identity"
	"github.com/carterperez-dev/esb-backend/internal/middleware"
	"github.com/carterperez-dev/esb-backend/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	timeout := cfg.Store.OperationTimeout

	var billCache *billing.Cache
	if cfg.Cache.Enabled {
		billCache = billing.NewCache(redis.Client, cfg.Cache.BillTTL)
		logger.Info("bill cache enabled", "ttl", cfg.Cache.BillTTL)
	}

	identitySvc := identity.NewService(identity.NewRepository(db.DB), billCache, timeout)
	identityHandler := identity.NewHandler(identitySvc, identity.Tokens{
		Consumer:  cfg.Auth.ConsumerToken,
		Inspector: cfg.Auth.InspectorToken,
	})

	billingSvc := billing.NewService(billing.NewRepository(db.DB), billCache, timeout)
	billingHandler := billing.NewHandler(billingSvc)

	connectionSvc := connection.NewService(connection.NewRepository(db.DB), billCache, timeout)
	connectionHandler := connection.NewHandler(connectionSvc)

	complaintSvc := complaint.NewService(complaint.NewRepository(db.DB), timeout)
	complaintHandler := complaint.NewHandler(complaintSvc)

	healthHandler := health.NewHandler(health.Config{
		Checks: []health.Check{
			{Name: "database", Checker: db},
			{Name: "redis", Checker: redis},
		},
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	generalLimit, authLimit := middleware.Limits(cfg.RateLimit)

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:      generalLimit,
			BypassFunc: middleware.SkipProbes,
			FailOpen:   true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	attemptLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit:    authLimit,
			KeyFunc:  middleware.KeyByIPAndEndpoint,
			FailOpen: true,
		},
	).Handler

	router.Get("/", server.Welcome)
	router.Route("/esb", func(r chi.Router) {
		r.Get("/", server.Welcome)

		identityHandler.RegisterRoutes(r, attemptLimiter)
		billingHandler.RegisterRoutes(r)
		connectionHandler.RegisterRoutes(r)
		complaintHandler.RegisterRoutes(r)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
