// Package tokens implements the signed claim envelopes that carry challenge state and
// verification verdicts between the server, the browser and the relying site. Every token
// kind pins its signing algorithm, always carries an expiry and is validated with zero
// clock leeway: a token is invalid at its exact expiry instant.
//
// Envelopes are composed, not inherited: each concrete token kind embeds its domain
// payload next to the time-bounding registered claims, which flattens both into a single
// JSON claims object on the wire.
package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/vouchpost/vouchpost/pkg/encodings"
)

// DefaultTimeout is the validity window of a token minted without an explicit timeout.
const DefaultTimeout = 30 * time.Second

// TimeClaims builds the exp/iat layer for a token minted now.
func TimeClaims(timeout time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(timeout)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

// IsExpired reports whether a decode failure was caused by token expiry. Callers use it
// to produce the "timeout or duplicate" user-facing code instead of the generic invalid
// response code.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func encodeSymmetric(method jwt.SigningMethod, claims jwt.Claims, encKey encodings.Standard) (string, error) {
	keyBytes, err := encKey.Bytes()
	if err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(keyBytes)
	if err != nil {
		return "", errors.Wrap(err, "unable to sign token")
	}

	return signed, nil
}

func decodeSymmetric(method jwt.SigningMethod, token string, decKey encodings.Standard, claims jwt.Claims) error {
	keyBytes, err := decKey.Bytes()
	if err != nil {
		return err
	}

	// the parser default leeway is zero; expiry is required explicitly so a stripped exp
	// claim cannot produce an eternal token
	_, err = jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) { return keyBytes, nil },
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return errors.Wrap(err, "unable to decode token")
	}

	return nil
}
