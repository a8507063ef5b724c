package clients

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

type memClientRepo struct {
	items map[uuid.UUID]Client
	order []uuid.UUID
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{items: map[uuid.UUID]Client{}}
}

func (m *memClientRepo) List(_ context.Context) ([]Client, error) {
	out := make([]Client, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memClientRepo) FindByID(_ context.Context, id uuid.UUID) (*Client, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &c, nil
}

func (m *memClientRepo) LatestReference(_ context.Context) (string, error) {
	if len(m.order) == 0 {
		return "", nil
	}
	return m.items[m.order[len(m.order)-1]].Reference, nil
}

func (m *memClientRepo) Create(_ context.Context, c Client) error {
	for _, existing := range m.items {
		if existing.Reference == c.Reference {
			return httpx.ErrConflict
		}
	}
	m.items[c.ID] = c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memClientRepo) Update(_ context.Context, c Client) error {
	existing, ok := m.items[c.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	c.Reference = existing.Reference
	c.CreatedAt = existing.CreatedAt
	m.items[c.ID] = c
	return nil
}

func (m *memClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func TestCreateAssignsSequentialReferences(t *testing.T) {
	svc := NewService(newMemClientRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Name: "ACME", CNPJ: "1", City: "SP"})
	require.NoError(t, err)
	require.Equal(t, "CLI-0001", first.Reference)

	second, err := svc.Create(ctx, CreateInput{Name: "Beta", CNPJ: "2", City: "RJ"})
	require.NoError(t, err)
	require.Equal(t, "CLI-0002", second.Reference)
}

func TestCreateRecoversFromUnparseableReference(t *testing.T) {
	repo := newMemClientRepo()
	broken := Client{ID: uuid.New(), Reference: "LEGACY", Name: "Velho"}
	require.NoError(t, repo.Create(context.Background(), broken))

	svc := NewService(repo)
	client, err := svc.Create(context.Background(), CreateInput{Name: "Novo", CNPJ: "3", City: "BH"})
	require.NoError(t, err)
	require.Equal(t, "CLI-0001", client.Reference)
}

// collidingClientRepo lets a rival claim the derived reference right
// before the insert, once.
type collidingClientRepo struct {
	*memClientRepo
	raced bool
}

func (r *collidingClientRepo) Create(ctx context.Context, c Client) error {
	if !r.raced {
		r.raced = true
		rival := Client{ID: uuid.New(), Reference: c.Reference, Name: "Rival"}
		if err := r.memClientRepo.Create(ctx, rival); err != nil {
			return err
		}
	}
	return r.memClientRepo.Create(ctx, c)
}

func TestCreateRetriesAfterReferenceCollision(t *testing.T) {
	repo := &collidingClientRepo{memClientRepo: newMemClientRepo()}
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateInput{Name: "ACME", CNPJ: "1", City: "SP"})
	require.NoError(t, err)
	require.Equal(t, "CLI-0002", created.Reference)
}

type conflictingClientRepo struct{ *memClientRepo }

func (r *conflictingClientRepo) Create(context.Context, Client) error {
	return httpx.ErrConflict
}

func TestCreateSurfacesPersistentConflict(t *testing.T) {
	repo := &conflictingClientRepo{memClientRepo: newMemClientRepo()}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Name: "ACME", CNPJ: "1", City: "SP"})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdatePreservesReference(t *testing.T) {
	svc := NewService(newMemClientRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "ACME", CNPJ: "1", City: "SP"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, CreateInput{Name: "ACME Ltda", CNPJ: "1", City: "SP"})
	require.NoError(t, err)
	require.Equal(t, created.Reference, updated.Reference)
	require.Equal(t, "ACME Ltda", updated.Name)
}

func TestUpdateUnknownClient(t *testing.T) {
	svc := NewService(newMemClientRepo())

	_, err := svc.Update(context.Background(), uuid.New(), CreateInput{Name: "X", CNPJ: "1", City: "SP"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteRemovesClient(t *testing.T) {
	svc := NewService(newMemClientRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "ACME", CNPJ: "1", City: "SP"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
