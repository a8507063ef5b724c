package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vertice-erp/vertice-erp/internal/auth"
	"github.com/vertice-erp/vertice-erp/internal/clients"
	"github.com/vertice-erp/vertice-erp/internal/dashboard"
	"github.com/vertice-erp/vertice-erp/internal/export"
	"github.com/vertice-erp/vertice-erp/internal/goals"
	"github.com/vertice-erp/vertice-erp/internal/materials"
	"github.com/vertice-erp/vertice-erp/internal/observability"
	"github.com/vertice-erp/vertice-erp/internal/orders"
	"github.com/vertice-erp/vertice-erp/internal/settlement"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthMiddleware    auth.Middleware
	AuthHandler       *auth.Handler
	ClientsHandler    *clients.Handler
	MaterialsHandler  *materials.Handler
	OrdersHandler     *orders.Handler
	SettlementHandler *settlement.Handler
	DashboardHandler  *dashboard.Handler
	GoalsHandler      *goals.Handler
	ExportHandler     *export.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the full API surface.
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

	requireUser := params.AuthMiddleware.RequireUser
	requireAdmin := params.AuthMiddleware.RequireAdmin

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.AuthMiddleware)
		params.ClientsHandler.MountRoutes(r, requireUser, requireAdmin)
		params.MaterialsHandler.MountRoutes(r, requireUser, requireAdmin)
		params.OrdersHandler.MountRoutes(r, requireUser, requireAdmin)
		params.SettlementHandler.MountRoutes(r, requireUser, requireAdmin)
		params.DashboardHandler.MountRoutes(r, requireUser)
		params.GoalsHandler.MountRoutes(r, requireUser, requireAdmin)
		params.ExportHandler.MountRoutes(r, requireUser)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
