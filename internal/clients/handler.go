package clients

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Handler exposes the client registry over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes attaches the client endpoints. requireUser guards reads and
// writes; requireAdmin guards deletion.
func (h *Handler) MountRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/clientes", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.With(requireAdmin).Delete("/{id}", h.delete)
	})
}

type clientRequest struct {
	Name    string `json:"nome" validate:"required"`
	CNPJ    string `json:"cnpj" validate:"required"`
	Address string `json:"endereco"`
	City    string `json:"cidade" validate:"required"`
	State   string `json:"estado"`
	Buyer   string `json:"comprador"`
	Phone   string `json:"telefone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (req clientRequest) input() CreateInput {
	return CreateInput{
		Name:    req.Name,
		CNPJ:    req.CNPJ,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Buyer:   req.Buyer,
		Phone:   req.Phone,
		Email:   req.Email,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Client{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	client, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	client, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
		return
	}
	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	client, err := h.svc.Update(r.Context(), id, req.input())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
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
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "cliente removido"})
}
