package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rielbooks/rielbooks/internal/accounting/accounts"
	"github.com/rielbooks/rielbooks/internal/accounting/journals"
	"github.com/rielbooks/rielbooks/internal/accounting/reports"
	"github.com/rielbooks/rielbooks/internal/inventory"
	"github.com/rielbooks/rielbooks/internal/masterdata/categories"
	"github.com/rielbooks/rielbooks/internal/masterdata/items"
	"github.com/rielbooks/rielbooks/internal/masterdata/units"
	"github.com/rielbooks/rielbooks/internal/observability"
	"github.com/rielbooks/rielbooks/internal/procurement"
	"github.com/rielbooks/rielbooks/internal/sales"
	"github.com/rielbooks/rielbooks/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	UnitsHandler       *units.Handler
	ItemsHandler       *items.Handler
	CategoriesHandler  *categories.Handler
	InventoryHandler   *inventory.Handler
	AccountsHandler    *accounts.Handler
	JournalsHandler    *journals.Handler
	ReportsHandler     *reports.Handler
	ProcurementHandler *procurement.Handler
	SalesHandler       *sales.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with rielbooks defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/units", params.UnitsHandler.MountRoutes)
		api.Route("/items", params.ItemsHandler.MountRoutes)
		api.Route("/categories", params.CategoriesHandler.MountRoutes)
		api.Route("/inventory", params.InventoryHandler.MountRoutes)
		api.Route("/accounts", params.AccountsHandler.MountRoutes)
		api.Route("/journals", params.JournalsHandler.MountRoutes)
		api.Route("/reports", params.ReportsHandler.MountRoutes)
		api.Route("/purchases", params.ProcurementHandler.MountRoutes)
		api.Route("/sales", params.SalesHandler.MountRoutes)
		if params.JobsHandler != nil {
			api.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
