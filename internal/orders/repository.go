package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vertice-erp/vertice-erp/internal/platform/db"
	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Repository defines persistence operations for the order ledger.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Create(ctx context.Context, order Order) error
	Update(ctx context.Context, order Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const orderColumns = `id, oc_number, client_id, status, COALESCE(factory_number, ''),
	total_value, total_weight, COALESCE(payment_terms, ''), delivery_date,
	commission_pct, invoice_id, COALESCE(notes, ''), created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OCNumber, &o.ClientID, &o.Status, &o.FactoryNumber,
		&o.TotalValue, &o.TotalWeight, &o.PaymentTerms, &o.DeliveryDate,
		&o.CommissionPct, &o.InvoiceID, &o.Notes, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// List returns all orders with their items, oldest first.
func (r *PGRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	index := map[uuid.UUID]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.ID] = len(out)
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.pool.Query(ctx, `
		SELECT order_id, material_id, quantity, unit_weight_total, unit_price, tax_amount, subtotal
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, line_order`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID uuid.UUID
		var item LineItem
		if err := itemRows.Scan(&orderID, &item.MaterialID, &item.Quantity, &item.UnitWeightTotal, &item.UnitPrice, &item.TaxAmount, &item.Subtotal); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			out[i].Items = append(out[i].Items, item)
		}
	}
	return out, itemRows.Err()
}

// FindByID fetches a single order with its items.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT material_id, quantity, unit_weight_total, unit_price, tax_amount, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.MaterialID, &item.Quantity, &item.UnitWeightTotal, &item.UnitPrice, &item.TaxAmount, &item.Subtotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// Create inserts an order and its items atomically.
func (r *PGRepository) Create(ctx context.Context, o Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, oc_number, client_id, status, factory_number, total_value,
			                    total_weight, payment_terms, delivery_date, commission_pct, notes, created_at)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), $9, $10, NULLIF($11, ''), $12)`,
			o.ID, o.OCNumber, o.ClientID, o.Status, o.FactoryNumber, o.TotalValue,
			o.TotalWeight, o.PaymentTerms, o.DeliveryDate, o.CommissionPct, o.Notes, o.CreatedAt)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: unknown client", httpx.ErrNotFound)
			}
			return err
		}
		return insertItems(ctx, tx, o.ID, o.Items)
	})
}

// Update rewrites an order's fields and replaces its items.
func (r *PGRepository) Update(ctx context.Context, o Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET client_id = $2, status = $3, factory_number = NULLIF($4, ''),
			    total_value = $5, total_weight = $6, payment_terms = NULLIF($7, ''),
			    delivery_date = $8, commission_pct = $9, notes = NULLIF($10, ''),
			    updated_at = NOW()
			WHERE id = $1`,
			o.ID, o.ClientID, o.Status, o.FactoryNumber, o.TotalValue, o.TotalWeight,
			o.PaymentTerms, o.DeliveryDate, o.CommissionPct, o.Notes)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: unknown client", httpx.ErrNotFound)
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, "DELETE FROM order_items WHERE order_id = $1", o.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, o.ID, o.Items)
	})
}

// Delete removes an order; items go with it via the cascade. Orders with
// an issued invoice cannot be removed while the invoice exists.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: order has an invoice", httpx.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []LineItem) error {
	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, material_id, quantity, unit_weight_total, unit_price, tax_amount, subtotal, line_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			orderID, item.MaterialID, item.Quantity, item.UnitWeightTotal, item.UnitPrice, item.TaxAmount, item.Subtotal, i)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: unknown material in item %d", httpx.ErrNotFound, i+1)
			}
			return err
		}
	}
	return nil
}
