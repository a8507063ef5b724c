package materials

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

type memMaterialRepo struct {
	items map[uuid.UUID]Material
}

func newMemMaterialRepo() *memMaterialRepo {
	return &memMaterialRepo{items: map[uuid.UUID]Material{}}
}

func (m *memMaterialRepo) List(_ context.Context) ([]Material, error) {
	out := make([]Material, 0, len(m.items))
	for _, mat := range m.items {
		out = append(out, mat)
	}
	return out, nil
}

func (m *memMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*Material, error) {
	mat, ok := m.items[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &mat, nil
}

func (m *memMaterialRepo) Create(_ context.Context, mat Material) error {
	m.items[mat.ID] = mat
	return nil
}

func (m *memMaterialRepo) Update(_ context.Context, mat Material) error {
	existing, ok := m.items[mat.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	mat.CreatedAt = existing.CreatedAt
	m.items[mat.ID] = mat
	return nil
}

func (m *memMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestCreateMaterial(t *testing.T) {
	svc := NewService(newMemMaterialRepo())

	mat, err := svc.Create(context.Background(), CreateInput{
		Code:          "VB-100",
		Description:   "Viga padrão",
		Segment:       "Estrutural",
		UnitWeight:    12.5,
		CommissionPct: 2,
		UnitPrice:     350,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, mat.ID)
	require.Equal(t, 2.0, mat.CommissionPct)
}

func TestCreateRejectsCommissionOutOfRange(t *testing.T) {
	svc := NewService(newMemMaterialRepo())

	_, err := svc.Create(context.Background(), CreateInput{Code: "X", Description: "x", CommissionPct: 150})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{Code: "X", Description: "x", CommissionPct: -1})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateMaterial(t *testing.T) {
	svc := NewService(newMemMaterialRepo())
	ctx := context.Background()

	mat, err := svc.Create(ctx, CreateInput{Code: "VB-100", Description: "Viga", UnitPrice: 350})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, mat.ID, CreateInput{Code: "VB-100", Description: "Viga reforçada", UnitPrice: 420})
	require.NoError(t, err)
	require.Equal(t, "Viga reforçada", updated.Description)
	require.Equal(t, 420.0, updated.UnitPrice)
}

func TestDeleteUnknownMaterial(t *testing.T) {
	svc := NewService(newMemMaterialRepo())

	err := svc.Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
