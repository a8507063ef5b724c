package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestConstraintViolationDetection(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "clients_reference_key"}
	foreign := &pgconn.PgError{Code: "23503", ConstraintName: "invoices_order_id_fkey"}

	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsForeignKeyViolation(unique))

	require.True(t, IsForeignKeyViolation(foreign))
	require.False(t, IsUniqueViolation(foreign))
}

func TestConstraintViolationDetectionWrapped(t *testing.T) {
	err := fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "23503"})
	require.True(t, IsForeignKeyViolation(err))
	require.False(t, IsUniqueViolation(err))
}

func TestConstraintViolationDetectionOtherErrors(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.False(t, IsForeignKeyViolation(nil))
	require.False(t, IsUniqueViolation(errors.New("connection refused")))
	require.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "40001"}))
}
