package middleware

import (
	"fmt"
	"net/http"
)

// DefaultMaxRequestSize is the default maximum request body size (1MB).
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize limits the size of request bodies.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reject oversized requests early when Content-Length is declared
			if r.ContentLength > maxBytes {
				respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
