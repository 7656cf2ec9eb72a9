package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	logpkg "github.com/timevault/api/internal/logger"
	"github.com/timevault/api/internal/models"
	"github.com/timevault/api/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier resolves a bearer token to the identity it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// Auth creates authentication middleware that validates bearer tokens and
// attaches the verified identity to the request context.
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondAuthError(w, "Not authenticated")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[1] == "" || !strings.EqualFold(parts[0], "Bearer") {
				respondAuthError(w, "Not authenticated")
				return
			}

			identity, err := verifier.Verify(r.Context(), parts[1])
			if err != nil {
				logger.Warn("token_verification_failed",
					zap.String("error", logpkg.SanitizeError(err)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				)
				respondAuthError(w, "Invalid authentication credentials")
				return
			}

			ctx := request.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// respondAuthError writes a 401 with the bearer challenge header.
func respondAuthError(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondError(w, http.StatusUnauthorized, detail)
}

// respondError writes an error in the API's detail shape.
func respondError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
