package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each request with a context deadline. Handlers observe it
// through r.Context() and translate the resulting error themselves, so the
// response is always written from a single goroutine.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
