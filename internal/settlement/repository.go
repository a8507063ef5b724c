package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vertice-erp/vertice-erp/internal/platform/db"
	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// InstallmentFilter narrows installment listings.
type InstallmentFilter struct {
	Status   InstallmentStatus
	ClientID uuid.UUID
}

// Repository defines persistence operations for invoices and installments.
// Issue and DeleteInvoice are transactional: either every write lands or
// none does.
type Repository interface {
	Issue(ctx context.Context, invoice Invoice, installments []Installment) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	ListInvoices(ctx context.Context) ([]Invoice, error)
	FindInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	InstallmentsOf(ctx context.Context, invoiceID uuid.UUID) ([]Installment, error)
	ListInstallments(ctx context.Context, filter InstallmentFilter) ([]Installment, error)
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
	FindInstallment(ctx context.Context, id uuid.UUID) (*Installment, error)
	SetInstallmentStatus(ctx context.Context, id uuid.UUID, status InstallmentStatus, paymentDate *time.Time) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Issue persists the invoice, its schedule and the order transition in one
// transaction. The order update is conditional on the order not being
// invoiced yet; losing that race raises ErrConflict and rolls everything
// back.
func (r *PGRepository) Issue(ctx context.Context, invoice Invoice, installments []Installment) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET status = 'Faturado', invoice_id = $2, updated_at = NOW()
			WHERE id = $1 AND status <> 'Faturado'`,
			invoice.OrderID, invoice.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrConflict
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO invoices (id, number, order_id, total_value, installment_count, commission_pct, commission_total, issued_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			invoice.ID, invoice.Number, invoice.OrderID, invoice.TotalValue,
			invoice.InstallmentCount, invoice.CommissionPct, invoice.CommissionTotal, invoice.IssuedAt)
		if err != nil {
			return err
		}
		for _, inst := range installments {
			_, err = tx.Exec(ctx, `
				INSERT INTO installments (id, invoice_id, order_id, client_id, idx, of_count, due_date, value, commission_value, status, payment_date, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				inst.ID, inst.InvoiceID, inst.OrderID, inst.ClientID, inst.Index, inst.Of,
				pgtype.Date{Time: inst.DueDate, Valid: true}, inst.Value, inst.CommissionValue,
				inst.Status, dateOrNull(inst.PaymentDate), inst.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteInvoice removes an invoice and its installments. The owning order
// keeps its Faturado status.
func (r *PGRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM installments WHERE invoice_id = $1", id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

const invoiceColumns = "id, number, order_id, total_value, installment_count, commission_pct, commission_total, issued_at"

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.TotalValue,
		&inv.InstallmentCount, &inv.CommissionPct, &inv.CommissionTotal, &inv.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+invoiceColumns+" FROM invoices ORDER BY issued_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *PGRepository) FindInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
}

const installmentColumns = "id, invoice_id, order_id, client_id, idx, of_count, due_date, value, commission_value, status, payment_date, created_at"

func scanInstallment(row pgx.Row) (*Installment, error) {
	var inst Installment
	err := row.Scan(&inst.ID, &inst.InvoiceID, &inst.OrderID, &inst.ClientID,
		&inst.Index, &inst.Of, &inst.DueDate, &inst.Value, &inst.CommissionValue,
		&inst.Status, &inst.PaymentDate, &inst.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &inst, nil
}

func (r *PGRepository) InstallmentsOf(ctx context.Context, invoiceID uuid.UUID) ([]Installment, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+installmentColumns+" FROM installments WHERE invoice_id = $1 ORDER BY idx", invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallments(rows)
}

func (r *PGRepository) ListInstallments(ctx context.Context, filter InstallmentFilter) ([]Installment, error) {
	query := "SELECT " + installmentColumns + " FROM installments WHERE 1=1"
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += " AND status = $1"
	}
	if filter.ClientID != uuid.Nil {
		args = append(args, filter.ClientID)
		if len(args) == 1 {
			query += " AND client_id = $1"
		} else {
			query += " AND client_id = $2"
		}
	}
	query += " ORDER BY due_date, idx"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallments(rows)
}

// MarkOverdue flips every pending installment due strictly before the given
// day to Atrasado and reports how many rows changed.
func (r *PGRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE installments SET status = $1 WHERE status = $2 AND due_date < $3",
		StatusOverdue, StatusPending, pgtype.Date{Time: before, Valid: true})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PGRepository) FindInstallment(ctx context.Context, id uuid.UUID) (*Installment, error) {
	return scanInstallment(r.pool.QueryRow(ctx,
		"SELECT "+installmentColumns+" FROM installments WHERE id = $1", id))
}

func (r *PGRepository) SetInstallmentStatus(ctx context.Context, id uuid.UUID, status InstallmentStatus, paymentDate *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE installments SET status = $2, payment_date = $3 WHERE id = $1",
		id, status, dateOrNull(paymentDate))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// dateOrNull encodes an optional day as a SQL date. Sending the value
// typed as date keeps the day independent of the session time zone.
func dateOrNull(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func collectInstallments(rows pgx.Rows) ([]Installment, error) {
	var out []Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inst)
	}
	return out, rows.Err()
}
