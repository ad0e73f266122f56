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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/tavern-pos/tavern-pos/internal/app"
	"github.com/tavern-pos/tavern-pos/internal/billing"
	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/observability"
	"github.com/tavern-pos/tavern-pos/internal/platform/cache"
	"github.com/tavern-pos/tavern-pos/internal/platform/db"
	"github.com/tavern-pos/tavern-pos/internal/reporting"
	"github.com/tavern-pos/tavern-pos/internal/shared"
	"github.com/tavern-pos/tavern-pos/internal/staff"
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

	money := shared.NewMoneyFormatter(cfg.CurrencySymbol)
	auditLogger := shared.NewAuditLogger(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	staffService := staff.NewService(staff.NewRepository(pool), redisClient, cfg.TokenTTL)
	staffMW := staff.Middleware{Service: staffService, Logger: logger}

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger)

	stagingStore := transfer.NewStagingStore(redisClient, cfg.StagingTTL)
	transferService := transfer.NewService(logger, stagingStore, transfer.NewRepository(pool), ledgerService, catalogService, idemStore)
	transferExporter := transfer.NewExporter(cfg.ExportDir)

	billingService := billing.NewService(logger, billing.NewRepository(pool), ledgerService, catalogService, auditLogger)

	reportingService := reporting.NewService(logger, reporting.NewRepository(pool), billingService, transferService, catalogService, queueClient, money)
	reportingExporter := reporting.NewExporter(cfg.ExportDir, money)

	metrics := observability.NewMetrics()
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Metrics:          metrics,
		StaffHandler:     staff.NewHandler(logger, staffService),
		StaffMiddleware:  staffMW,
		CatalogHandler:   catalog.NewHandler(logger, catalogService),
		LedgerHandler:    ledger.NewHandler(logger, ledgerService),
		TransferHandler:  transfer.NewHandler(logger, transferService, transferExporter),
		BillingHandler:   billing.NewHandler(logger, billingService),
		ReportingHandler: reporting.NewHandler(logger, reportingService, reportingExporter),
		JobsHandler:      jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
