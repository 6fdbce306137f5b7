package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/pow"
)

// PowAlgorithm is the pinned signing algorithm for proof-of-work challenge tokens.
var PowAlgorithm = jwt.SigningMethodHS256

// PowTimeout is the solver grace period: how long a browser has to brute-force the
// puzzle before the challenge token expires.
const PowTimeout = 300 * time.Second

// PowClaims carries a proof-of-work challenge inside its time-bounding envelope.
type PowClaims struct {
	pow.Challenge
	jwt.RegisteredClaims
}

// EncodePow signs a challenge with the site's encoding key and the solver grace period.
func EncodePow(challenge pow.Challenge, encKey encodings.Standard) (string, error) {
	return EncodePowWithTimeout(challenge, encKey, PowTimeout)
}

// EncodePowWithTimeout signs a challenge with an explicit validity window.
func EncodePowWithTimeout(challenge pow.Challenge, encKey encodings.Standard, timeout time.Duration) (string, error) {
	return encodeSymmetric(PowAlgorithm, PowClaims{
		Challenge:        challenge,
		RegisteredClaims: TimeClaims(timeout),
	}, encKey)
}

// DecodePow validates a challenge token and returns its claims. Use IsExpired to tell a
// stale token from a forged one.
func DecodePow(token string, decKey encodings.Standard) (*PowClaims, error) {
	claims := &PowClaims{}
	if err := decodeSymmetric(PowAlgorithm, token, decKey, claims); err != nil {
		return nil, err
	}

	return claims, nil
}
