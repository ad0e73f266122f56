package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/tavern-pos/tavern-pos/internal/app"
	"github.com/tavern-pos/tavern-pos/internal/billing"
	"github.com/tavern-pos/tavern-pos/internal/catalog"
	jobmetrics "github.com/tavern-pos/tavern-pos/internal/jobs"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/platform/cache"
	"github.com/tavern-pos/tavern-pos/internal/platform/db"
	"github.com/tavern-pos/tavern-pos/internal/reporting"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/transfer"
	"github.com/tavern-pos/tavern-pos/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	mailer := jobs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	money := shared.NewMoneyFormatter(cfg.CurrencySymbol)
	auditLogger := shared.NewAuditLogger(pool)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger)
	billingService := billing.NewService(logger, billing.NewRepository(pool), ledgerService, catalogService, auditLogger)

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	stagingStore := transfer.NewStagingStore(redisClient, cfg.StagingTTL)
	transferService := transfer.NewService(logger, stagingStore, transfer.NewRepository(pool), ledgerService, catalogService, shared.NewIdempotencyStore(pool))

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	reportingService := reporting.NewService(logger, reporting.NewRepository(pool), billingService, transferService, catalogService, queueClient, money)

	reportEmailJob := jobs.NewReportEmailJob(mailer, logger, metrics)
	lowStockJob := jobs.NewLowStockScanJob(catalogService, logger, metrics)
	scheduledReportJob := jobs.NewScheduledReportJob(reportingService, mailer, cfg.ReportEmailTo, logger, metrics)

	var cron []jobs.CronRegistration
	if cfg.LowStockCron != "" {
		cron = append(cron, jobs.CronRegistration{
			Spec: cfg.LowStockCron,
			Task: jobs.NewLowStockScanTask(),
		})
	}
	if cfg.ReportEmailCron != "" && cfg.ReportEmailTo != "" {
		cron = append(cron, jobs.CronRegistration{
			Spec: cfg.ReportEmailCron,
			Task: jobs.NewScheduledReportTask(),
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeReportEmail, Handler: reportEmailJob.Handle},
			{Type: jobs.TaskTypeLowStockScan, Handler: lowStockJob.Handle},
			{Type: jobs.TaskTypeScheduledReport, Handler: scheduledReportJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
		return worker.Run(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}
