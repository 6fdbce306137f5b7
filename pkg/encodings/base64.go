// Package encodings defines the validated base64 key material used throughout the
// verification protocol: public site keys (URL-safe alphabet), token encoding keys and
// relying-site secrets (standard alphabet). Values are checked on construction so that a
// malformed encoding never crosses into the crypto layer, and they redact themselves in
// default formatting so that secrets cannot leak through logs.
package encodings

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
)

// KeySize is the decoded length, in bytes, of every key material value.
const KeySize = 48

// redacted replaces key material in any default formatting output.
const redacted = "<redacted key material>"

// Standard is validated key material in the standard base64 alphabet. Used for token
// encoding keys and relying-site secrets.
type Standard struct {
	value string
}

// URLSafe is validated key material in the URL-safe base64 alphabet. Used for public site
// keys, which travel inside URLs.
type URLSafe struct {
	value string
}

// RandomStandard generates KeySize cryptographically random bytes encoded in the standard
// alphabet.
func RandomStandard() (Standard, error) {
	encoded, err := randomEncoded(base64.StdEncoding)
	if err != nil {
		return Standard{}, err
	}
	return Standard{value: encoded}, nil
}

// RandomURLSafe generates KeySize cryptographically random bytes encoded in the URL-safe
// alphabet.
func RandomURLSafe() (URLSafe, error) {
	encoded, err := randomEncoded(base64.URLEncoding)
	if err != nil {
		return URLSafe{}, err
	}
	return URLSafe{value: encoded}, nil
}

// ParseStandard validates that `s` is well-formed standard base64 of exactly KeySize bytes.
// The error never contains partially decoded bytes.
func ParseStandard(s string) (Standard, error) {
	if err := validate(base64.StdEncoding, s); err != nil {
		return Standard{}, err
	}
	return Standard{value: s}, nil
}

// ParseURLSafe validates that `s` is well-formed URL-safe base64 of exactly KeySize bytes.
func ParseURLSafe(s string) (URLSafe, error) {
	if err := validate(base64.URLEncoding, s); err != nil {
		return URLSafe{}, err
	}
	return URLSafe{value: s}, nil
}

// Reveal returns the encoded text. Callers own not writing the result to logs.
func (k Standard) Reveal() string {
	return k.value
}

// Bytes decodes the key material for use as an HMAC key.
func (k Standard) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(k.value)
	if err != nil {
		return nil, errors.Wrap(err, "key material failed to decode")
	}
	return raw, nil
}

// IsZero reports whether the value is the unusable zero key.
func (k Standard) IsZero() bool {
	return k.value == ""
}

func (k Standard) String() string {
	return redacted
}

func (k Standard) GoString() string {
	return redacted
}

// Reveal returns the encoded text. Site keys are public identifiers, so revealing them is
// routine, but default formatting still redacts to keep log handling uniform.
func (k URLSafe) Reveal() string {
	return k.value
}

// IsZero reports whether the value is the unusable zero key.
func (k URLSafe) IsZero() bool {
	return k.value == ""
}

func (k URLSafe) String() string {
	return redacted
}

func (k URLSafe) GoString() string {
	return redacted
}

func randomEncoded(enc *base64.Encoding) (string, error) {
	raw := make([]byte, KeySize)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "unable to draw random key material")
	}
	return enc.EncodeToString(raw), nil
}

func validate(enc *base64.Encoding, s string) error {
	raw, err := enc.DecodeString(s)
	if err != nil {
		return errors.New("key material is not valid base64")
	}
	if len(raw) != KeySize {
		return errors.Errorf("key material must decode to %v bytes, got %v", KeySize, len(raw))
	}
	return nil
}
