package materials

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Handler exposes the material catalog over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes attaches the catalog endpoints. Writes are restricted to
// administrators.
func (h *Handler) MountRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/materiais", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.With(requireAdmin).Post("/", h.create)
		r.With(requireAdmin).Put("/{id}", h.update)
		r.With(requireAdmin).Delete("/{id}", h.delete)
	})
}

type materialRequest struct {
	Code          string  `json:"codigo" validate:"required"`
	Description   string  `json:"descricao" validate:"required"`
	Segment       string  `json:"segmento"`
	UnitWeight    float64 `json:"peso_unitario" validate:"gte=0"`
	CommissionPct float64 `json:"porcentagem_comissao" validate:"gte=0,lte=100"`
	UnitPrice     float64 `json:"preco_unitario" validate:"gte=0"`
}

func (req materialRequest) input() CreateInput {
	return CreateInput{
		Code:          req.Code,
		Description:   req.Description,
		Segment:       req.Segment,
		UnitWeight:    req.UnitWeight,
		CommissionPct: req.CommissionPct,
		UnitPrice:     req.UnitPrice,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Material{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	material, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, material)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	material, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, material)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	var req materialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	material, err := h.svc.Update(r.Context(), id, req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, material)
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
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "material removido"})
}
