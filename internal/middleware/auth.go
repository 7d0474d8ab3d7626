package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"github.com/baharkarakas/maverick-bank/internal/auth"
)

// Authenticate accepts "Authorization: Bearer <access JWT>" and puts the
// caller into the request context.
func Authenticate(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
				return
			}
			claims, err := tm.ParseAccess(strings.TrimSpace(ah[7:]))
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token", nil)
				return
			}
			ctx := WithUser(r.Context(), UserCtx{UserID: claims.UserID, SubjectID: claims.SubjectID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
