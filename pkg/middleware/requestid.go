package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/logger"
)

// RequestIDHeader carries the invocation id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates one, stores it as
// the invocation id on the request context, and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithInvocationID(r.Context(), id)))
	})
}
