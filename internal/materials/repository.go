package materials

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

// Repository defines persistence operations for the material catalog.
type Repository interface {
	List(ctx context.Context) ([]Material, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)
	Create(ctx context.Context, material Material) error
	Update(ctx context.Context, material Material) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const materialColumns = "id, code, description, segment, unit_weight, commission_pct, unit_price, created_at"

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Code, &m.Description, &m.Segment, &m.UnitWeight, &m.CommissionPct, &m.UnitPrice, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+materialColumns+" FROM materials ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Material, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+materialColumns+" FROM materials WHERE id = $1", id)
	return scanMaterial(row)
}

func (r *PGRepository) Create(ctx context.Context, m Material) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO materials (id, code, description, segment, unit_weight, commission_pct, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Code, m.Description, m.Segment, m.UnitWeight, m.CommissionPct, m.UnitPrice, m.CreatedAt)
	return err
}

func (r *PGRepository) Update(ctx context.Context, m Material) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE materials
		SET code = $2, description = $3, segment = $4, unit_weight = $5,
		    commission_pct = $6, unit_price = $7
		WHERE id = $1`,
		m.ID, m.Code, m.Description, m.Segment, m.UnitWeight, m.CommissionPct, m.UnitPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes a material. Materials referenced by order items cannot
// be removed.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM materials WHERE id = $1", id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: material is used by orders", httpx.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
