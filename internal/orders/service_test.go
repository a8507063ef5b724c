package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

type memOrderRepo struct {
	items map[uuid.UUID]Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{items: map[uuid.UUID]Order{}}
}

func (m *memOrderRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.items))
	for _, o := range m.items {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.items[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &o, nil
}

func (m *memOrderRepo) Create(_ context.Context, o Order) error {
	m.items[o.ID] = o
	return nil
}

func (m *memOrderRepo) Update(_ context.Context, o Order) error {
	if _, ok := m.items[o.ID]; !ok {
		return httpx.ErrNotFound
	}
	m.items[o.ID] = o
	return nil
}

func (m *memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func testItems() []LineItem {
	return []LineItem{
		{MaterialID: uuid.New(), Quantity: 10, UnitWeightTotal: 125, UnitPrice: 350, TaxAmount: 35, Subtotal: 3535},
		{MaterialID: uuid.New(), Quantity: 5, UnitWeightTotal: 60, UnitPrice: 200, TaxAmount: 10, Subtotal: 1010},
	}
}

func TestCreateDerivesTotalsAndOCNumber(t *testing.T) {
	svc := NewService(newMemOrderRepo())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)
	}

	order, err := svc.Create(context.Background(), CreateInput{ClientID: uuid.New(), Items: testItems()})
	require.NoError(t, err)
	require.Equal(t, "OC-20260315103045", order.OCNumber)
	require.Equal(t, StatusImplanted, order.Status)
	require.Equal(t, 4545.0, order.TotalValue)
	require.Equal(t, 185.0, order.TotalWeight)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	svc := NewService(newMemOrderRepo())

	_, err := svc.Create(context.Background(), CreateInput{ClientID: uuid.New()})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemOrderRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID: uuid.New(),
		Items:    testItems(),
		Status:   Status("Cancelado"),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	svc := NewService(newMemOrderRepo())
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Items: testItems()})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, order.ID, CreateInput{
		ClientID: order.ClientID,
		Items:    []LineItem{{MaterialID: uuid.New(), Quantity: 1, UnitWeightTotal: 40, Subtotal: 1000}},
	}, false)
	require.NoError(t, err)
	require.Equal(t, 1000.0, updated.TotalValue)
	require.Equal(t, 40.0, updated.TotalWeight)
	require.Equal(t, order.OCNumber, updated.OCNumber)
}

func TestUpdateLocksInvoicedOrdersForNonAdmins(t *testing.T) {
	repo := newMemOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Items: testItems()})
	require.NoError(t, err)

	locked := repo.items[order.ID]
	locked.Status = StatusInvoiced
	repo.items[order.ID] = locked

	in := CreateInput{ClientID: order.ClientID, Items: testItems()}
	_, err = svc.Update(ctx, order.ID, in, false)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	_, err = svc.Update(ctx, order.ID, in, true)
	require.NoError(t, err)
}

func TestUpdateKeepsStatusWhenOmitted(t *testing.T) {
	svc := NewService(newMemOrderRepo())
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Items: testItems(), Status: StatusPending})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, order.ID, CreateInput{ClientID: order.ClientID, Items: testItems()}, false)
	require.NoError(t, err)
	require.Equal(t, StatusPending, updated.Status)
}

func TestDeleteUnknownOrder(t *testing.T) {
	svc := NewService(newMemOrderRepo())

	err := svc.Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
