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
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports run uncached", slog.Any("error", err))
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
	idempotencyStore := shared.NewIdempotencyStore(pool)
	metrics := observability.NewMetrics()

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, auditLogger, idempotencyStore, stock.ServiceConfig{
		RejectOverRemove: cfg.StockRejectOverRemove,
	})
	stockHandler := stock.NewHandler(logger, stockService, metrics)

	rateRepo := currency.NewRateRepository(pool)

	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	reportRepo := reporting.NewRepository(pool)
	reportService := reporting.NewService(reportRepo, rateRepo, reportCache)
	reportHandler := reporting.NewHandler(logger, reportService, cfg.ReportMaxTimeout)

	rateHandler := currency.NewHandler(logger, rateRepo, reportCache)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		StockHandler:  stockHandler,
		RateHandler:   rateHandler,
		ReportHandler: reportHandler,
		JobHandler:    jobHandler,
		Metrics:       metrics,
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
