package staff

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tavern-pos/tavern-pos/internal/platform/httpx"
)

// Middleware resolves bearer tokens and guards routes.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth rejects requests without a valid token.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, err := m.Service.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithMember(r.Context(), member)))
	})
}

// RequireAdmin rejects requests from non-admin staff.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, ok := FromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		if member.Role != RoleAdmin {
			if m.Logger != nil {
				m.Logger.Warn("admin route denied", slog.String("staff", member.Name), slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
