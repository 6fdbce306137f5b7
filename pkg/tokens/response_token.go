package tokens

import (
	"net"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/hostname"
)

// ResponseAlgorithm is the pinned signing algorithm for verification response tokens.
var ResponseAlgorithm = jwt.SigningMethodHS256

// ResponseTimeout is the window a relying site has to present a response token to the
// verification endpoint. Expiry doubles as the only duplicate-use defense.
const ResponseTimeout = DefaultTimeout

// ResponseClaims is the verdict payload bound into a response token. Immutable once
// minted.
type ResponseClaims struct {
	Score float32           `json:"score"`
	Addr  net.IP            `json:"addr"`
	Host  hostname.Hostname `json:"host"`
}

// ResponseTokenClaims is a verdict payload inside its time-bounding envelope.
type ResponseTokenClaims struct {
	ResponseClaims
	jwt.RegisteredClaims
}

// EncodeResponse signs a verdict with the site's encoding key and the verification
// window.
func EncodeResponse(claims ResponseClaims, encKey encodings.Standard) (string, error) {
	return EncodeResponseWithTimeout(claims, encKey, ResponseTimeout)
}

// EncodeResponseWithTimeout signs a verdict with an explicit validity window.
func EncodeResponseWithTimeout(claims ResponseClaims, encKey encodings.Standard, timeout time.Duration) (string, error) {
	return encodeSymmetric(ResponseAlgorithm, ResponseTokenClaims{
		ResponseClaims:   claims,
		RegisteredClaims: TimeClaims(timeout),
	}, encKey)
}

// DecodeResponse validates a response token and returns its claims. Use IsExpired to
// distinguish the timeout-or-duplicate verdict from a forged or mis-keyed token.
func DecodeResponse(token string, decKey encodings.Standard) (*ResponseTokenClaims, error) {
	claims := &ResponseTokenClaims{}
	if err := decodeSymmetric(ResponseAlgorithm, token, decKey, claims); err != nil {
		return nil, err
	}

	return claims, nil
}
