package middleware

import (
	"net/http"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"golang.org/x/time/rate"
)

// RateLimit applies one global token bucket of rps with an equal burst.
// rps <= 0 disables limiting.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	lim := rate.NewLimiter(rate.Limit(rps), rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
