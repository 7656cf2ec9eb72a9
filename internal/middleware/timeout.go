package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout is the default request timeout.
const DefaultRequestTimeout = 30 * time.Second

// Timeout enforces a deadline on request handlers. The context deadline
// cancels in-flight store calls while TimeoutHandler guards the response.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			handler := http.TimeoutHandler(next, timeout, "Request timeout")
			handler.ServeHTTP(w, r)
		})
	}
}
