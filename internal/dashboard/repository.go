package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderAggregates summarises the orders created inside a window.
type OrderAggregates struct {
	ImplantedWeight     float64
	InvoicedWeight      float64
	TotalValue          float64
	ProjectedCommission float64
}

// InvoiceAggregates summarises the invoices issued inside a window.
type InvoiceAggregates struct {
	TotalValue         float64
	RealizedCommission float64
}

// Repository defines the aggregate reads behind the stats panel.
type Repository interface {
	OrderAggregates(ctx context.Context, from, to time.Time) (OrderAggregates, error)
	InvoiceAggregates(ctx context.Context, from, to time.Time) (InvoiceAggregates, error)
	OutstandingCommission(ctx context.Context) (float64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// OrderAggregates computes the order-side figures for the window. The
// projected commission uses the order override when set and falls back to
// summing each line against its catalog rate.
func (r *PGRepository) OrderAggregates(ctx context.Context, from, to time.Time) (OrderAggregates, error) {
	var agg OrderAggregates
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(o.total_weight) FILTER (WHERE o.status = 'Implantado'), 0),
			COALESCE(SUM(o.total_weight) FILTER (WHERE o.status IN ('Faturado', 'Atendido')), 0),
			COALESCE(SUM(o.total_value), 0),
			COALESCE(SUM(
				CASE WHEN o.commission_pct > 0 THEN o.total_value * o.commission_pct / 100
				     ELSE COALESCE(li.line_commission, 0)
				END), 0)
		FROM orders o
		LEFT JOIN (
			SELECT oi.order_id, SUM(oi.subtotal * m.commission_pct / 100) AS line_commission
			FROM order_items oi
			JOIN materials m ON m.id = oi.material_id
			GROUP BY oi.order_id
		) li ON li.order_id = o.id
		WHERE o.created_at >= $1 AND o.created_at < $2`,
		from, to,
	).Scan(&agg.ImplantedWeight, &agg.InvoicedWeight, &agg.TotalValue, &agg.ProjectedCommission)
	return agg, err
}

// InvoiceAggregates computes the invoiced value and realized commission of
// the window.
func (r *PGRepository) InvoiceAggregates(ctx context.Context, from, to time.Time) (InvoiceAggregates, error) {
	var agg InvoiceAggregates
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_value), 0), COALESCE(SUM(commission_total), 0)
		FROM invoices
		WHERE issued_at >= $1 AND issued_at < $2`,
		from, to,
	).Scan(&agg.TotalValue, &agg.RealizedCommission)
	return agg, err
}

// OutstandingCommission sums the commission of every installment still
// waiting for payment, regardless of period.
func (r *PGRepository) OutstandingCommission(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(commission_value), 0)
		FROM installments
		WHERE status IN ('Pendente', 'Atrasado')`,
	).Scan(&total)
	return total, err
}
