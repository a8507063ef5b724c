package export

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Handler streams commission reports.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// MountRoutes attaches the export endpoints.
func (h *Handler) MountRoutes(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.Route("/export", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/comissoes", h.commissions)
	})
}

func (h *Handler) commissions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.CommissionRows(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("comissoes-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteCommissionCSV(w, rows); err != nil {
		httpx.RespondError(w, err)
	}
}
