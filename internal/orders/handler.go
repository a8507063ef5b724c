package orders

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/auth"
	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Handler exposes the order ledger over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes attaches the order endpoints. Deletion is restricted to
// administrators; updates of invoiced orders are rejected in the service.
func (h *Handler) MountRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/pedidos", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.With(requireAdmin).Delete("/{id}", h.delete)
	})
}

type lineItemRequest struct {
	MaterialID      uuid.UUID `json:"material_id" validate:"required"`
	Quantity        int       `json:"quantidade" validate:"gt=0"`
	UnitWeightTotal float64   `json:"peso_total" validate:"gte=0"`
	UnitPrice       float64   `json:"valor_unitario" validate:"gte=0"`
	TaxAmount       float64   `json:"ipi" validate:"gte=0"`
	Subtotal        float64   `json:"subtotal" validate:"gte=0"`
}

type orderRequest struct {
	ClientID      uuid.UUID         `json:"cliente_id" validate:"required"`
	Items         []lineItemRequest `json:"itens" validate:"required,min=1,dive"`
	Status        Status            `json:"status"`
	FactoryNumber string            `json:"numero_pedido_fabrica"`
	PaymentTerms  string            `json:"condicao_pagamento"`
	DeliveryDate  *time.Time        `json:"data_entrega"`
	Notes         string            `json:"observacoes"`
	CommissionPct float64           `json:"porcentagem_comissao" validate:"gte=0,lte=100"`
}

func (req orderRequest) input() CreateInput {
	items := make([]LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = LineItem{
			MaterialID:      it.MaterialID,
			Quantity:        it.Quantity,
			UnitWeightTotal: it.UnitWeightTotal,
			UnitPrice:       it.UnitPrice,
			TaxAmount:       it.TaxAmount,
			Subtotal:        it.Subtotal,
		}
	}
	return CreateInput{
		ClientID:      req.ClientID,
		Items:         items,
		Status:        req.Status,
		FactoryNumber: req.FactoryNumber,
		PaymentTerms:  req.PaymentTerms,
		DeliveryDate:  req.DeliveryDate,
		Notes:         req.Notes,
		CommissionPct: req.CommissionPct,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Order{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	order, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	order, err := h.svc.Update(r.Context(), id, req.input(), principal.IsAdmin())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "pedido removido"})
}
