package auth

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/timevault/api/internal/models"
)

// Verifier validates bearer tokens against the configured identity
// provider and resolves them to an owner identity.
type Verifier struct {
	jwks     *JWKSManager
	issuer   string
	audience string
}

// NewVerifier creates a token verifier. An empty audience disables the
// audience check.
func NewVerifier(jwks *JWKSManager, issuer, audience string) *Verifier {
	return &Verifier{
		jwks:     jwks,
		issuer:   issuer,
		audience: audience,
	}
}

// Verify checks the token signature and claims and returns the identity
// it asserts.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.Identity, error) {
	keys, err := v.jwks.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString), jwt.WithKeySet(keys), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	if token.Issuer() != v.issuer {
		return nil, fmt.Errorf("token issuer mismatch: expected %s, got %s", v.issuer, token.Issuer())
	}

	if v.audience != "" {
		found := false
		for _, aud := range token.Audience() {
			if aud == v.audience {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("token audience mismatch: expected %s", v.audience)
		}
	}

	sub := token.Subject()
	if sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	identity := &models.Identity{UserID: sub}
	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			identity.Email = emailStr
		}
	}

	return identity, nil
}
