package clients

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Service applies registry rules on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the caller-provided fields of a new client.
type CreateInput struct {
	Name    string
	CNPJ    string
	Address string
	City    string
	State   string
	Buyer   string
	Phone   string
	Email   string
}

// Create registers a new client with the next sequential reference. A
// concurrent create can claim the same reference first; the unique
// constraint surfaces that as a conflict and the reference is derived
// again from the fresh latest row.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Client, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		ref, err := s.nextReference(ctx)
		if err != nil {
			return nil, err
		}
		client := Client{
			ID:        uuid.New(),
			Reference: ref,
			Name:      in.Name,
			CNPJ:      in.CNPJ,
			Address:   in.Address,
			City:      in.City,
			State:     in.State,
			Buyer:     in.Buyer,
			Phone:     in.Phone,
			Email:     in.Email,
			CreatedAt: time.Now().UTC(),
		}
		err = s.repo.Create(ctx, client)
		if err == nil {
			return &client, nil
		}
		if !errors.Is(err, httpx.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Update rewrites a client's mutable fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput) (*Client, error) {
	err := s.repo.Update(ctx, Client{
		ID:      id,
		Name:    in.Name,
		CNPJ:    in.CNPJ,
		Address: in.Address,
		City:    in.City,
		State:   in.State,
		Buyer:   in.Buyer,
		Phone:   in.Phone,
		Email:   in.Email,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// List returns all clients in creation order.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

// Get fetches one client.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// nextReference derives the next CLI-%04d reference from the latest one.
// Unparseable references fall back to CLI-0001, matching the historical
// behavior of the registry.
func (s *Service) nextReference(ctx context.Context) (string, error) {
	latest, err := s.repo.LatestReference(ctx)
	if err != nil {
		return "", err
	}
	next := 1
	if _, suffix, ok := strings.Cut(latest, "-"); ok {
		if n, err := strconv.Atoi(suffix); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("CLI-%04d", next), nil
}
