package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Service applies ledger rules on top of the repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput carries the caller-provided fields of an order. Totals are
// not accepted here on purpose; they are derived from the items.
type CreateInput struct {
	ClientID      uuid.UUID
	Items         []LineItem
	Status        Status
	FactoryNumber string
	PaymentTerms  string
	DeliveryDate  *time.Time
	Notes         string
	CommissionPct float64
}

// Create registers an order with a generated OC number and derived totals.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", httpx.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = StatusImplanted
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, in.Status)
	}
	if in.CommissionPct < 0 || in.CommissionPct > 100 {
		return nil, fmt.Errorf("%w: commission must be between 0 and 100", httpx.ErrValidation)
	}
	now := s.now().UTC()
	total, weight := sumItems(in.Items)
	order := Order{
		ID:            uuid.New(),
		OCNumber:      "OC-" + now.Format("20060102150405"),
		ClientID:      in.ClientID,
		Items:         in.Items,
		Status:        status,
		FactoryNumber: in.FactoryNumber,
		TotalValue:    total,
		TotalWeight:   weight,
		PaymentTerms:  in.PaymentTerms,
		DeliveryDate:  in.DeliveryDate,
		Notes:         in.Notes,
		CommissionPct: in.CommissionPct,
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update rewrites an order. Once an order is invoiced only administrators
// may touch it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput, admin bool) (*Order, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusInvoiced && !admin {
		return nil, fmt.Errorf("%w: invoiced orders are locked", httpx.ErrForbidden)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", httpx.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = existing.Status
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, in.Status)
	}
	if in.CommissionPct < 0 || in.CommissionPct > 100 {
		return nil, fmt.Errorf("%w: commission must be between 0 and 100", httpx.ErrValidation)
	}
	total, weight := sumItems(in.Items)
	updated := *existing
	updated.ClientID = in.ClientID
	updated.Items = in.Items
	updated.Status = status
	updated.FactoryNumber = in.FactoryNumber
	updated.TotalValue = total
	updated.TotalWeight = weight
	updated.PaymentTerms = in.PaymentTerms
	updated.DeliveryDate = in.DeliveryDate
	updated.Notes = in.Notes
	updated.CommissionPct = in.CommissionPct
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// List returns all orders in creation order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func sumItems(items []LineItem) (total, weight float64) {
	for _, item := range items {
		total += item.Subtotal
		weight += item.UnitWeightTotal
	}
	return total, weight
}
