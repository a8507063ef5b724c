package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Handler exposes the stats panel over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MountRoutes attaches the dashboard endpoint.
func (h *Handler) MountRoutes(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/stats", h.stats)
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
