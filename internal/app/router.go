package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tavern-pos/tavern-pos/internal/billing"
	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/observability"
	"github.com/tavern-pos/tavern-pos/internal/reporting"
	"github.com/tavern-pos/tavern-pos/internal/staff"
	"github.com/tavern-pos/tavern-pos/internal/transfer"
	"github.com/tavern-pos/tavern-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Metrics          *observability.Metrics
	StaffHandler     *staff.Handler
	StaffMiddleware  staff.Middleware
	CatalogHandler   *catalog.Handler
	LedgerHandler    *ledger.Handler
	TransferHandler  *transfer.Handler
	BillingHandler   *billing.Handler
	ReportingHandler *reporting.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter assembles the HTTP routing tree.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/staff", func(sr chi.Router) {
			p.StaffHandler.MountRoutes(sr, p.StaffMiddleware)
		})

		api.Group(func(authed chi.Router) {
			authed.Use(p.StaffMiddleware.RequireAuth)
			p.CatalogHandler.MountRoutes(authed)
			p.LedgerHandler.MountRoutes(authed)
			authed.Route("/transfers", p.TransferHandler.MountRoutes)
			authed.Route("/bills", p.BillingHandler.MountRoutes)
			authed.Route("/reports", p.ReportingHandler.MountRoutes)
			if p.JobsHandler != nil {
				authed.Route("/jobs", p.JobsHandler.MountRoutes)
			}
		})
	})

	return r
}
