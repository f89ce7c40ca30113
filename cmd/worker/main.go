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

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/atelier-sur-mesure/atelier-admin/internal/app"
	jobmetrics "github.com/atelier-sur-mesure/atelier-admin/internal/jobs"
	"github.com/atelier-sur-mesure/atelier-admin/internal/observability"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/cache"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/httpx"
	"github.com/atelier-sur-mesure/atelier-admin/internal/reports"
	"github.com/atelier-sur-mesure/atelier-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("process", "worker"))

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
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
	apiClient, err := api.NewClient(api.Config{
		BaseURL:  cfg.APIBaseURL,
		Token:    cfg.APIToken,
		Timeout:  cfg.APITimeout,
		Logger:   logger,
		Observer: metrics,
	})
	if err != nil {
		logger.Error("configure api client", slog.Any("error", err))
		os.Exit(1)
	}

	reportCache := cache.NewJSON(redisClient, "atelier:rapports", cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(apiClient), reportCache, logger)
	warmupJob := jobs.NewReportsWarmupJob(reportService, logger, jobmetrics.NewMetrics(metrics.Registerer()))

	warmupTask, err := jobs.NewReportsWarmupTask(jobs.ReasonSchedule)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	var cron []jobs.CronRegistration
	if cfg.ReportCacheTTL > 0 && cfg.ReportWarmupCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.ReportWarmupCron, Task: warmupTask})
	} else {
		logger.Info("report cache disabled, warmup not scheduled")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	ops := chi.NewRouter()
	ops.Method(http.MethodGet, "/metrics", metrics.Handler())
	ops.Method(http.MethodGet, "/healthz", httpx.Health(5*time.Second, map[string]httpx.Check{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}))
	opsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: ops, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics server", slog.Any("error", err))
		}
	}()

	logger.Info("starting worker", slog.String("warmup_cron", cfg.ReportWarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("worker metrics shutdown", slog.Any("error", err))
	}
}
