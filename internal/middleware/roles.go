package middleware

import (
	"net/http"
	"slices"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
)

// RequireRole lets through callers holding any of roles. It must run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := FromCtx(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
				return
			}
			if !slices.Contains(roles, u.Role) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
