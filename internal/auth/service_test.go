package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

type memUserRepo struct {
	users map[uuid.UUID]User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]User{}}
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &u, nil
}

func (m *memUserRepo) List(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) Create(_ context.Context, user User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return httpx.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) Update(_ context.Context, id uuid.UUID, name, email string, role Role) error {
	u, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.Name, u.Email, u.Role = name, email, role
	m.users[id] = u
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.IsActive = active
	m.users[id] = u
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *memUserRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := newMemUserRepo()
	return NewService(repo, NewTokenManager(client, time.Hour)), repo
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleAdmin)
	require.NoError(t, err)

	result, err := svc.Login(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.Equal(t, "bearer", result.TokenType)
	require.Equal(t, "ana@example.com", result.User.Email)
	require.Equal(t, RoleAdmin, result.User.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleSeller)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "errada")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "ninguem@example.com", "x")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleSeller)
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, user.ID, false))

	_, err = svc.Login(ctx, "ana@example.com", "segredo1")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleSeller)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Outra", "ana@example.com", "segredo2", RoleSeller)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "  Ana@Example.COM ", "segredo1", Role("nope"))
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", user.Email)
	require.Equal(t, RoleSeller, user.Role)

	stored, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestResetPasswordReplacesCredential(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleSeller)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "novasenha"))

	_, err = svc.Login(ctx, "ana@example.com", "segredo1")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	_, err = svc.Login(ctx, "ana@example.com", "novasenha")
	require.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleSeller)
	require.NoError(t, err)

	result, err := svc.Login(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.AccessToken))

	_, err = svc.tokens.Verify(ctx, result.AccessToken)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, nil, "admin@example.com", "bootstrap1"))
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, nil, "admin@example.com", "bootstrap1"))

	require.Len(t, repo.users, 1)
	admin, err := repo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, admin.Role)
	require.True(t, admin.IsActive)
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1", RoleSeller)
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, user.ID, "Ana", "ana@example.com", Role("root"))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTokenVerifyRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	principal := Principal{UserID: uuid.New(), Email: "x@example.com", Name: "X", Role: RoleViewer}
	token, err := svc.tokens.Issue(ctx, principal)
	require.NoError(t, err)

	got, err := svc.tokens.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, principal, got)

	_, err = svc.tokens.Verify(ctx, "garbage")
	require.True(t, errors.Is(err, httpx.ErrUnauthorized))
}
