package middleware

import (
	"net/http"

	"github.com/baharkarakas/maverick-bank/internal/logger"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID reuses a well-formed incoming X-Request-Id or generates one, and
// stores it in the context for loggers and audit entries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
