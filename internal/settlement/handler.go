package settlement

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler exposes invoices and installments over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes attaches the nota fiscal and vencimento endpoints.
func (h *Handler) MountRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/notas-fiscais", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.listInvoices)
		r.Get("/{id}", h.getInvoice)
		r.With(requireAdmin).Post("/", h.issue)
		r.With(requireAdmin).Delete("/{id}", h.deleteInvoice)
	})
	r.Route("/vencimentos", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.listInstallments)
		r.With(requireAdmin).Put("/{id}", h.updateInstallment)
	})
}

type issueRequest struct {
	OrderID          uuid.UUID `json:"pedido_id" validate:"required"`
	Number           string    `json:"numero_nf" validate:"required"`
	TotalValue       float64   `json:"valor_total" validate:"gt=0"`
	InstallmentCount int       `json:"numero_parcelas" validate:"gte=1"`
	DueDates         []string  `json:"datas_manuais"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	dueDates := make([]time.Time, 0, len(req.DueDates))
	for _, raw := range req.DueDates {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid date %q", httpx.ErrValidation, raw))
			return
		}
		dueDates = append(dueDates, d)
	}
	detail, err := h.svc.IssueInvoice(r.Context(), IssueInvoiceInput{
		OrderID:          req.OrderID,
		Number:           req.Number,
		TotalValue:       req.TotalValue,
		InstallmentCount: req.InstallmentCount,
		DueDates:         dueDates,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	detail, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "nota fiscal removida"})
}

func (h *Handler) listInstallments(w http.ResponseWriter, r *http.Request) {
	var filter InstallmentFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := InstallmentStatus(raw)
		if !status.Valid() {
			httpx.RespondError(w, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, raw))
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("cliente_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid cliente_id", httpx.ErrValidation))
			return
		}
		filter.ClientID = id
	}
	out, err := h.svc.ListInstallments(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Installment{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type updateInstallmentRequest struct {
	Status      InstallmentStatus `json:"status" validate:"required"`
	PaymentDate string            `json:"data_pagamento"`
}

func (h *Handler) updateInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	var req updateInstallmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	var paymentDate *time.Time
	if req.PaymentDate != "" {
		d, err := time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid date %q", httpx.ErrValidation, req.PaymentDate))
			return
		}
		paymentDate = &d
	}
	inst, err := h.svc.UpdateInstallmentStatus(r.Context(), id, req.Status, paymentDate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inst)
}
