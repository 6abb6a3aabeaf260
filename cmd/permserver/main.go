package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/certa-platform/certa-permissions/internal/app"
	"github.com/certa-platform/certa-permissions/internal/assignment"
	"github.com/certa-platform/certa-permissions/internal/audit"
	"github.com/certa-platform/certa-permissions/internal/catalog"
	"github.com/certa-platform/certa-permissions/internal/observability"
	"github.com/certa-platform/certa-permissions/internal/permission"
	"github.com/certa-platform/certa-permissions/internal/platform/cache"
	"github.com/certa-platform/certa-permissions/internal/platform/db"
	"github.com/certa-platform/certa-permissions/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	var permCache permission.Cache
	switch cfg.CacheBackend {
	case "redis":
		permCache = permission.NewRedisCache(redisClient)
	case "local":
		permCache = permission.NewLocalCache(cfg.CacheTTL)
	}

	var recorder permission.AuditRecorder
	var jobsClient *jobs.Client
	if cfg.AuditEnabled {
		jobsClient = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("asynq close", slog.Any("error", err))
			}
		}()
		recorder = jobsClient
	}

	service := permission.NewService(catalog.Default(), assignment.NewRepository(pool), permission.ServiceConfig{
		Cache:    permCache,
		CacheTTL: cfg.CacheTTL,
		Audit:    recorder,
		Metrics:  metrics,
		Logger:   logger,
	})

	auditService := audit.NewService(audit.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		PermissionHandler: permission.NewHandler(logger, service),
		AuditHandler:      audit.NewHandler(logger, auditService),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
