package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newGuardedRouter(t *testing.T) (http.Handler, *TokenManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := NewTokenManager(client, time.Hour)
	mw := Middleware{Tokens: tokens}

	r := chi.NewRouter()
	r.With(mw.RequireUser).Get("/vencimentos", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(mw.RequireAdmin).Post("/notas-fiscais", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r, tokens, mr
}

func issueToken(t *testing.T, tokens *TokenManager, role Role) string {
	t.Helper()
	token, err := tokens.Issue(context.Background(), Principal{
		UserID: uuid.New(),
		Email:  string(role) + "@vertice.local",
		Name:   "Conta de Teste",
		Role:   role,
	})
	require.NoError(t, err)
	return token
}

func doRequest(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireUserRejectsMissingToken(t *testing.T) {
	router, _, _ := newGuardedRouter(t)

	rec := doRequest(router, http.MethodGet, "/vencimentos", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserRejectsUnknownToken(t *testing.T) {
	router, _, _ := newGuardedRouter(t)

	rec := doRequest(router, http.MethodGet, "/vencimentos", uuid.NewString())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUserRejectsExpiredToken(t *testing.T) {
	router, tokens, mr := newGuardedRouter(t)
	token := issueToken(t, tokens, RoleSeller)

	rec := doRequest(router, http.MethodGet, "/vencimentos", token)
	require.Equal(t, http.StatusOK, rec.Code)

	mr.FastForward(2 * time.Hour)

	rec = doRequest(router, http.MethodGet, "/vencimentos", token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminRejectsSeller(t *testing.T) {
	router, tokens, _ := newGuardedRouter(t)
	token := issueToken(t, tokens, RoleSeller)

	rec := doRequest(router, http.MethodPost, "/notas-fiscais", token)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	router, tokens, _ := newGuardedRouter(t)
	token := issueToken(t, tokens, RoleAdmin)

	rec := doRequest(router, http.MethodPost, "/notas-fiscais", token)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequireUserAllowsAnyRole(t *testing.T) {
	router, tokens, _ := newGuardedRouter(t)

	for _, role := range []Role{RoleAdmin, RoleSeller, RoleViewer} {
		rec := doRequest(router, http.MethodGet, "/vencimentos", issueToken(t, tokens, role))
		require.Equal(t, http.StatusOK, rec.Code, "role %s", role)
	}
}
