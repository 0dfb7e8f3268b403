package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/Amos-12/stock-management-sub001/internal/app"
	"github.com/Amos-12/stock-management-sub001/internal/currency"
	"github.com/Amos-12/stock-management-sub001/internal/observability"
	"github.com/Amos-12/stock-management-sub001/internal/platform/cache"
	"github.com/Amos-12/stock-management-sub001/internal/platform/db"
	"github.com/Amos-12/stock-management-sub001/internal/reporting"
	"github.com/Amos-12/stock-management-sub001/internal/shared"
	"github.com/Amos-12/stock-management-sub001/internal/stock"
	"github.com/Amos-12/stock-management-sub001/jobs"
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

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, warmup runs uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()

	stockRepo := stock.NewRepository(pool)
	reconciler := stock.NewReconciler(stockRepo, auditLogger, logger)
	reconcileJob := jobs.NewReconcileJob(reconciler, metrics, logger)

	rateRepo := currency.NewRateRepository(pool)
	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	reportRepo := reporting.NewRepository(pool)
	reportService := reporting.NewService(reportRepo, rateRepo, reportCache)
	warmupJob := jobs.NewWarmupJob(reportService, logger)

	reconcileTask, err := jobs.NewReconcileTask(jobs.ReconcilePayload{})
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewWarmupTask(jobs.WarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerReconcile, Handler: reconcileJob.Handle},
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReconcileCron, Task: reconcileTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
