package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	jobmetrics "github.com/tavern-pos/tavern-pos/internal/jobs"
)

// LowStockSource lists products at or below their minimum stock level.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]catalog.ProductView, error)
}

// LowStockScanJob logs every product running low so the morning shift sees
// what to reorder.
type LowStockScanJob struct {
	Source  LowStockSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob initialises the handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Source: source, Logger: logger, Metrics: metrics}
}

// Handle executes one scan.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.Metrics.Track("low_stock_scan")
	products, err := j.Source.LowStock(ctx)
	if err != nil {
		return tracker.End(err)
	}
	for _, p := range products {
		j.Logger.Warn("product low on stock",
			slog.String("name", p.Name),
			slog.String("sku", p.SKU),
			slog.Int("total", p.TotalStock),
			slog.Int("min", p.MinStockLevel))
	}
	j.Metrics.SetLowStockCount(len(products))
	j.Logger.Info("low stock scan finished", slog.Int("low_products", len(products)))
	return tracker.End(nil)
}
