package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds the request context by d so store calls give up once it
// passes. A non-positive d disables it. Unlike chi's Timeout it writes
// nothing itself; the handler reports the failed call.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
