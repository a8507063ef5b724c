package materials

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Service applies catalog rules on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the caller-provided fields of a catalog entry.
type CreateInput struct {
	Code          string
	Description   string
	Segment       string
	UnitWeight    float64
	CommissionPct float64
	UnitPrice     float64
}

func (in CreateInput) validate() error {
	if in.UnitWeight < 0 || in.UnitPrice < 0 {
		return fmt.Errorf("%w: weight and price must be non-negative", httpx.ErrValidation)
	}
	if in.CommissionPct < 0 || in.CommissionPct > 100 {
		return fmt.Errorf("%w: commission must be between 0 and 100", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Material, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	material := Material{
		ID:            uuid.New(),
		Code:          in.Code,
		Description:   in.Description,
		Segment:       in.Segment,
		UnitWeight:    in.UnitWeight,
		CommissionPct: in.CommissionPct,
		UnitPrice:     in.UnitPrice,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, err
	}
	return &material, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput) (*Material, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, Material{
		ID:            id,
		Code:          in.Code,
		Description:   in.Description,
		Segment:       in.Segment,
		UnitWeight:    in.UnitWeight,
		CommissionPct: in.CommissionPct,
		UnitPrice:     in.UnitPrice,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Material, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Material, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
