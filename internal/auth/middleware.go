package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Middleware guards routes behind bearer-token authentication.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// RequireUser rejects requests without a valid bearer token.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Tokens.Verify(r.Context(), bearerToken(r))
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireAdmin rejects requests whose principal is not an administrator.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		if !principal.IsAdmin() {
			if m.Logger != nil {
				m.Logger.Warn("admin route denied",
					slog.String("email", principal.Email),
					slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
