package export

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the joined receivables rows behind the report.
type Repository interface {
	CommissionRows(ctx context.Context) ([]CommissionRow, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CommissionRows returns every installment with its invoice, order and
// client context, ordered by due date.
func (r *PGRepository) CommissionRows(ctx context.Context) ([]CommissionRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.idx, i.of_count, inv.number, o.oc_number, c.name,
		       i.due_date, i.value, i.commission_value, i.status, i.payment_date
		FROM installments i
		JOIN invoices inv ON inv.id = i.invoice_id
		JOIN orders o ON o.id = i.order_id
		JOIN clients c ON c.id = i.client_id
		ORDER BY i.due_date, i.idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommissionRow
	for rows.Next() {
		var row CommissionRow
		err := rows.Scan(&row.InstallmentIndex, &row.InstallmentOf, &row.InvoiceNumber,
			&row.OCNumber, &row.ClientName, &row.DueDate, &row.Value,
			&row.CommissionValue, &row.Status, &row.PaymentDate)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
