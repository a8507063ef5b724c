// Package goals stores monthly tonnage targets per client. The server only
// keeps and serves them; progress charts are computed by the frontend.
package goals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Goal is a tonnage target for one client in one month.
type Goal struct {
	ID            uuid.UUID `json:"id"`
	ClientID      uuid.UUID `json:"cliente_id"`
	Month         string    `json:"mes"`
	TonnageTarget float64   `json:"meta_tonelagem"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository defines persistence operations for goals.
type Repository interface {
	List(ctx context.Context, month string) ([]Goal, error)
	Upsert(ctx context.Context, goal Goal) (*Goal, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns goals, optionally restricted to one month.
func (r *PGRepository) List(ctx context.Context, month string) ([]Goal, error) {
	query := "SELECT id, client_id, month, tonnage_target, created_at FROM goals"
	args := []any{}
	if month != "" {
		query += " WHERE month = $1"
		args = append(args, month)
	}
	query += " ORDER BY month, created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.ClientID, &g.Month, &g.TonnageTarget, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Upsert creates or replaces the goal for (client, month).
func (r *PGRepository) Upsert(ctx context.Context, goal Goal) (*Goal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO goals (id, client_id, month, tonnage_target, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, month)
		DO UPDATE SET tonnage_target = EXCLUDED.tonnage_target
		RETURNING id, client_id, month, tonnage_target, created_at`,
		goal.ID, goal.ClientID, goal.Month, goal.TonnageTarget, goal.CreatedAt)
	var g Goal
	if err := row.Scan(&g.ID, &g.ClientID, &g.Month, &g.TonnageTarget, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service validates goal inputs.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, month string) ([]Goal, error) {
	if month != "" && !monthPattern.MatchString(month) {
		return nil, fmt.Errorf("%w: month must be YYYY-MM", httpx.ErrValidation)
	}
	return s.repo.List(ctx, month)
}

func (s *Service) Set(ctx context.Context, clientID uuid.UUID, month string, target float64) (*Goal, error) {
	if !monthPattern.MatchString(month) {
		return nil, fmt.Errorf("%w: month must be YYYY-MM", httpx.ErrValidation)
	}
	if target < 0 {
		return nil, fmt.Errorf("%w: target must be non-negative", httpx.ErrValidation)
	}
	return s.repo.Upsert(ctx, Goal{
		ID:            uuid.New(),
		ClientID:      clientID,
		Month:         month,
		TonnageTarget: target,
		CreatedAt:     time.Now().UTC(),
	})
}

// Handler exposes goals over HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// MountRoutes attaches the goal endpoints. Writes are admin-only.
func (h *Handler) MountRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/metas", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/", h.list)
		r.With(requireAdmin).Post("/", h.set)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), r.URL.Query().Get("mes"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if out == nil {
		out = []Goal{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type goalRequest struct {
	ClientID      uuid.UUID `json:"cliente_id" validate:"required"`
	Month         string    `json:"mes" validate:"required"`
	TonnageTarget float64   `json:"meta_tonelagem" validate:"gte=0"`
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
		return
	}
	goal, err := h.svc.Set(r.Context(), req.ClientID, req.Month, req.TonnageTarget)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, goal)
}
