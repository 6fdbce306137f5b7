package tokens

import (
	"context"
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// AuthAlgorithm is the pinned signing algorithm for operator console tokens issued by the
// external identity provider.
var AuthAlgorithm = jwt.SigningMethodRS256

// KeyResolver resolves a verification key by its key identifier. Implementations front
// the identity provider's published key set with a cache.
type KeyResolver interface {
	ResolveKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// AuthClaims is the identity layer of an operator token. On top of the time bounds it
// requires audience, issuer and subject.
type AuthClaims struct {
	jwt.RegisteredClaims
}

// Operator returns the authenticated operator identity.
func (c *AuthClaims) Operator() string {
	return c.Subject
}

// DecodeAuth validates an operator token against the resolver and the expected audience.
func DecodeAuth(ctx context.Context, token string, resolver KeyResolver, audience string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			kid, ok := t.Header["kid"].(string)
			if !ok || kid == "" {
				return nil, errors.New("kid not present in token header")
			}
			return resolver.ResolveKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{AuthAlgorithm.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(audience),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode operator token")
	}

	// audience and expiry are enforced above; issuer and subject presence complete the
	// identity layer
	if claims.Issuer == "" {
		return nil, errors.New("operator token missing issuer")
	}
	if claims.Subject == "" {
		return nil, errors.New("operator token missing subject")
	}

	return claims, nil
}
