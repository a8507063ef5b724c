package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vertice-erp/vertice-erp/internal/materials"
	"github.com/vertice-erp/vertice-erp/internal/orders"
	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// CacheInvalidator is notified after every settlement write so derived
// read models can drop stale data.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service drives invoice issuance and installment tracking.
type Service struct {
	repo      Repository
	orders    orders.Repository
	materials materials.Repository
	mode      CommissionMode
	remainder RemainderPolicy
	cache     CacheInvalidator
	logger    *slog.Logger
	now       func() time.Time
}

// ServiceParams collects the dependencies of a settlement Service.
type ServiceParams struct {
	Repo      Repository
	Orders    orders.Repository
	Materials materials.Repository
	Mode      CommissionMode
	Remainder RemainderPolicy
	Cache     CacheInvalidator
	Logger    *slog.Logger
}

func NewService(p ServiceParams) *Service {
	if p.Mode == "" {
		p.Mode = ModeOrderRate
	}
	if p.Remainder == "" {
		p.Remainder = RemainderRedistribute
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Service{
		repo:      p.Repo,
		orders:    p.Orders,
		materials: p.Materials,
		mode:      p.Mode,
		remainder: p.Remainder,
		cache:     p.Cache,
		logger:    p.Logger,
		now:       time.Now,
	}
}

// IssueInvoiceInput is the issuance request. DueDates, when supplied, must
// carry exactly one date per installment.
type IssueInvoiceInput struct {
	OrderID          uuid.UUID
	Number           string
	TotalValue       float64
	InstallmentCount int
	DueDates         []time.Time
}

// IssueInvoice records a nota fiscal against an order, generates its
// installment schedule and marks the order as Faturado. The write is
// all-or-nothing: a concurrent issuance against the same order makes the
// loser fail with ErrConflict and leaves nothing behind.
func (s *Service) IssueInvoice(ctx context.Context, in IssueInvoiceInput) (*InvoiceDetail, error) {
	if in.InstallmentCount < 1 {
		return nil, fmt.Errorf("%w: installment count must be at least 1", httpx.ErrValidation)
	}
	if in.TotalValue <= 0 {
		return nil, fmt.Errorf("%w: total value must be positive", httpx.ErrValidation)
	}
	if len(in.DueDates) > 0 && len(in.DueDates) != in.InstallmentCount {
		return nil, fmt.Errorf("%w: expected %d due dates, got %d", httpx.ErrValidation, in.InstallmentCount, len(in.DueDates))
	}

	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == orders.StatusInvoiced {
		return nil, fmt.Errorf("%w: order %s already invoiced", httpx.ErrConflict, order.OCNumber)
	}

	pct, commissionTotal, err := s.resolveCommission(ctx, order, in.TotalValue)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	today := truncateToDay(now)
	invoice := Invoice{
		ID:               uuid.New(),
		Number:           in.Number,
		OrderID:          order.ID,
		TotalValue:       in.TotalValue,
		InstallmentCount: in.InstallmentCount,
		CommissionPct:    pct,
		CommissionTotal:  commissionTotal,
		IssuedAt:         now,
	}

	values := splitEven(in.TotalValue, in.InstallmentCount, s.remainder)
	commissions := splitEven(commissionTotal, in.InstallmentCount, s.remainder)
	installments := make([]Installment, in.InstallmentCount)
	for i := range installments {
		due := today.AddDate(0, 0, 30*(i+1))
		if len(in.DueDates) > 0 {
			due = truncateToDay(in.DueDates[i].UTC())
		}
		status := StatusPending
		if due.Before(today) {
			status = StatusPaid
		}
		installments[i] = Installment{
			ID:              uuid.New(),
			InvoiceID:       invoice.ID,
			OrderID:         order.ID,
			ClientID:        order.ClientID,
			Index:           i + 1,
			Of:              in.InstallmentCount,
			DueDate:         due,
			Value:           values[i],
			CommissionValue: commissions[i],
			Status:          status,
			CreatedAt:       now,
		}
	}

	if err := s.repo.Issue(ctx, invoice, installments); err != nil {
		if errors.Is(err, httpx.ErrConflict) {
			return nil, fmt.Errorf("%w: order %s already invoiced", httpx.ErrConflict, order.OCNumber)
		}
		return nil, err
	}
	s.bump(ctx)
	s.logger.Info("invoice issued",
		slog.String("invoice_id", invoice.ID.String()),
		slog.String("order", order.OCNumber),
		slog.Int("installments", in.InstallmentCount),
		slog.Float64("commission_total", commissionTotal))
	return &InvoiceDetail{Invoice: invoice, Installments: installments}, nil
}

// resolveCommission returns the effective rate and the rounded commission
// total for the invoice under the configured mode.
func (s *Service) resolveCommission(ctx context.Context, order *orders.Order, total float64) (pct, commission float64, err error) {
	switch s.mode {
	case ModePerItem:
		var sum float64
		for _, item := range order.Items {
			rate, err := s.materialRate(ctx, item.MaterialID)
			if err != nil {
				return 0, 0, err
			}
			sum += item.Subtotal * rate / 100
		}
		commission = round2(sum)
		if total > 0 {
			pct = round2(commission / total * 100)
		}
		return pct, commission, nil
	default:
		pct = order.CommissionPct
		if pct == 0 && len(order.Items) > 0 {
			pct, err = s.materialRate(ctx, order.Items[0].MaterialID)
			if err != nil {
				return 0, 0, err
			}
		}
		return pct, round2(total * pct / 100), nil
	}
}

// materialRate looks up a catalog rate; a missing material contributes 0.
func (s *Service) materialRate(ctx context.Context, id uuid.UUID) (float64, error) {
	mat, err := s.materials.FindByID(ctx, id)
	if errors.Is(err, httpx.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return mat.CommissionPct, nil
}

// DeleteInvoice removes an invoice and its schedule. The order stays
// Faturado; reissuing against it requires an admin status change first.
func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// ListInvoices returns all invoices, newest first.
func (s *Service) ListInvoices(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// GetInvoice returns an invoice with its schedule.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.repo.FindInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	installments, err := s.repo.InstallmentsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetail{Invoice: *invoice, Installments: installments}, nil
}

// ListInstallments sweeps overdue rows first, persisting every
// Pendente installment whose due date already passed as Atrasado, then
// returns the filtered listing sorted by due date.
func (s *Service) ListInstallments(ctx context.Context, filter InstallmentFilter) ([]Installment, error) {
	today := truncateToDay(s.now().UTC())
	changed, err := s.repo.MarkOverdue(ctx, today)
	if err != nil {
		return nil, err
	}
	if changed > 0 {
		s.bump(ctx)
		s.logger.Info("overdue sweep", slog.Int64("installments", changed))
	}
	return s.repo.ListInstallments(ctx, filter)
}

// UpdateInstallmentStatus applies an explicit status change. Paid is a
// terminal state and nothing can be moved back to Pendente.
func (s *Service) UpdateInstallmentStatus(ctx context.Context, id uuid.UUID, status InstallmentStatus, paymentDate *time.Time) (*Installment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	current, err := s.repo.FindInstallment(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == StatusPending {
		return nil, fmt.Errorf("%w: installments cannot be reverted to Pendente", httpx.ErrConflict)
	}
	if current.Status == StatusPaid && status != StatusPaid {
		return nil, fmt.Errorf("%w: paid installments are settled", httpx.ErrConflict)
	}

	var pd *time.Time
	if status == StatusPaid {
		if paymentDate != nil {
			d := truncateToDay(paymentDate.UTC())
			pd = &d
		} else {
			d := truncateToDay(s.now().UTC())
			pd = &d
		}
	}
	if err := s.repo.SetInstallmentStatus(ctx, id, status, pd); err != nil {
		return nil, err
	}
	s.bump(ctx)

	updated := *current
	updated.Status = status
	updated.PaymentDate = pd
	return &updated, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump failed", slog.String("error", err.Error()))
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
