// Package hostname provides a validated host value for response tokens. Only the host
// part of a URL is carried, never the full address the challenge was solved on.
package hostname

import (
	"encoding/json"
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Hostname is a syntactically valid DNS name or IP literal.
type Hostname struct {
	value string
}

// Parse validates `s` as a registered name or IP address.
func Parse(s string) (Hostname, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Hostname{}, errors.New("hostname must not be empty")
	}

	if ip := net.ParseIP(strings.Trim(s, "[]")); ip != nil {
		return Hostname{value: ip.String()}, nil
	}

	// url.Parse accepts almost anything in isolation; parsing as an authority catches
	// spaces, slashes and embedded userinfo.
	parsed, err := url.Parse("scheme://" + s)
	if err != nil || parsed.Host != s || parsed.Hostname() != s {
		return Hostname{}, errors.Errorf("invalid hostname: %q", s)
	}

	return Hostname{value: s}, nil
}

// NewUnchecked wraps a host string that has already been validated elsewhere.
func NewUnchecked(s string) Hostname {
	return Hostname{value: s}
}

func (h Hostname) String() string {
	return h.value
}

// IsZero reports whether the hostname is empty.
func (h Hostname) IsZero() bool {
	return h.value == ""
}

// MarshalJSON renders the hostname as a plain string.
func (h Hostname) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.value)
}

// UnmarshalJSON parses and validates a hostname from a JSON string.
func (h *Hostname) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}
