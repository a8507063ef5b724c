package clients

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

// Repository defines persistence operations for the client registry.
type Repository interface {
	List(ctx context.Context) ([]Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	LatestReference(ctx context.Context) (string, error)
	Create(ctx context.Context, client Client) error
	Update(ctx context.Context, client Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const clientColumns = "id, reference, name, cnpj, address, city, state, buyer, COALESCE(phone, ''), COALESCE(email, ''), created_at"

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Reference, &c.Name, &c.CNPJ, &c.Address, &c.City, &c.State, &c.Buyer, &c.Phone, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all clients ordered by creation time.
func (r *PGRepository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// FindByID fetches a single client.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id)
	return scanClient(row)
}

// LatestReference returns the reference of the most recently created client,
// or an empty string when the registry is empty.
func (r *PGRepository) LatestReference(ctx context.Context) (string, error) {
	var ref string
	err := r.pool.QueryRow(ctx, "SELECT reference FROM clients ORDER BY created_at DESC, reference DESC LIMIT 1").Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return ref, err
}

// Create inserts a new client.
func (r *PGRepository) Create(ctx context.Context, c Client) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clients (id, reference, name, cnpj, address, city, state, buyer, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)`,
		c.ID, c.Reference, c.Name, c.CNPJ, c.Address, c.City, c.State, c.Buyer, c.Phone, c.Email, c.CreatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: reference %s already taken", httpx.ErrConflict, c.Reference)
	}
	return err
}

// Update rewrites the mutable fields of a client.
func (r *PGRepository) Update(ctx context.Context, c Client) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET name = $2, cnpj = $3, address = $4, city = $5, state = $6,
		    buyer = $7, phone = NULLIF($8, ''), email = NULLIF($9, '')
		WHERE id = $1`,
		c.ID, c.Name, c.CNPJ, c.Address, c.City, c.State, c.Buyer, c.Phone, c.Email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes a client. Clients with orders cannot be removed.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: client has orders", httpx.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
