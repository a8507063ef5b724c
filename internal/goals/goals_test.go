package goals

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

type memGoalRepo struct {
	items map[string]Goal
}

func newMemGoalRepo() *memGoalRepo {
	return &memGoalRepo{items: map[string]Goal{}}
}

func key(clientID uuid.UUID, month string) string {
	return clientID.String() + "|" + month
}

func (m *memGoalRepo) List(_ context.Context, month string) ([]Goal, error) {
	var out []Goal
	for _, g := range m.items {
		if month == "" || g.Month == month {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGoalRepo) Upsert(_ context.Context, goal Goal) (*Goal, error) {
	k := key(goal.ClientID, goal.Month)
	if existing, ok := m.items[k]; ok {
		existing.TonnageTarget = goal.TonnageTarget
		m.items[k] = existing
		return &existing, nil
	}
	m.items[k] = goal
	return &goal, nil
}

func TestSetUpsertsPerClientMonth(t *testing.T) {
	repo := newMemGoalRepo()
	svc := NewService(repo)
	ctx := context.Background()
	clientID := uuid.New()

	first, err := svc.Set(ctx, clientID, "2026-06", 120)
	require.NoError(t, err)
	require.Equal(t, 120.0, first.TonnageTarget)

	second, err := svc.Set(ctx, clientID, "2026-06", 150)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 150.0, second.TonnageTarget)
	require.Len(t, repo.items, 1)
}

func TestSetRejectsBadMonth(t *testing.T) {
	svc := NewService(newMemGoalRepo())

	for _, month := range []string{"2026-13", "06-2026", "2026/06", "junho"} {
		_, err := svc.Set(context.Background(), uuid.New(), month, 10)
		require.ErrorIs(t, err, httpx.ErrValidation, "month %q", month)
	}
}

func TestListFiltersByMonth(t *testing.T) {
	svc := NewService(newMemGoalRepo())
	ctx := context.Background()

	_, err := svc.Set(ctx, uuid.New(), "2026-06", 100)
	require.NoError(t, err)
	_, err = svc.Set(ctx, uuid.New(), "2026-07", 90)
	require.NoError(t, err)

	june, err := svc.List(ctx, "2026-06")
	require.NoError(t, err)
	require.Len(t, june, 1)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
