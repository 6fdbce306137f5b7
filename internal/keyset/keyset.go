// Package keyset resolves the RSA public keys that operator auth tokens are signed
// with. Keys are fetched from the auth origin's JWKS document, cached for a fixed TTL
// and refreshed with at most one request in flight at a time.
package keyset

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const jwksPath = "/.well-known/jwks.json"

// jwk is the subset of a JSON Web Key this service understands.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// Resolver caches the auth origin's key set. It satisfies tokens.KeyResolver.
type Resolver struct {
	origin string
	client *http.Client
	ttl    time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewResolver wires a resolver against the given auth origin, e.g.
// "https://auth.example.org". The HTTP client is injected so callers control
// timeouts and tests can stub the transport.
func NewResolver(origin string, client *http.Client, ttl time.Duration) *Resolver {
	return &Resolver{
		origin: origin,
		client: client,
		ttl:    ttl,
		keys:   map[string]*rsa.PublicKey{},
	}
}

// ResolveKey returns the public key for the given key ID, refreshing the cached set
// if it is stale or the ID is unknown.
func (r *Resolver) ResolveKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	r.mu.RLock()
	key, known := r.keys[kid]
	fresh := time.Since(r.fetchedAt) < r.ttl
	r.mu.RUnlock()

	if known && fresh {
		return key, nil
	}

	// Concurrent misses collapse onto a single fetch. The fetch is detached from the
	// first caller's cancellation, which would otherwise fail every collapsed waiter.
	// The injected client's timeout still bounds it.
	_, err, _ := r.group.Do("jwks", func() (interface{}, error) {
		return nil, r.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	key, known = r.keys[kid]
	r.mu.RUnlock()

	if !known {
		return nil, errors.Errorf("no key with ID '%v' in the key set", kid)
	}

	return key, nil
}

func (r *Resolver) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.origin+jwksPath, nil)
	if err != nil {
		return errors.Wrap(err, "unable to build JWKS request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "unable to fetch the JWKS document")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %v fetching the JWKS document", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "unable to read the JWKS document")
	}

	var doc jwks
	if err := json.Unmarshal(body, &doc); err != nil {
		return errors.Wrap(err, "unable to parse the JWKS document")
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}

		pub, err := parseRSAKey(k)
		if err != nil {
			return errors.Wrapf(err, "unable to parse the key with ID '%v'", k.Kid)
		}

		keys[k.Kid] = pub
	}

	r.mu.Lock()
	r.keys = keys
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	return nil
}

func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, errors.Wrap(err, "invalid modulus")
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, errors.Wrap(err, "invalid exponent")
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() <= 1 {
		return nil, fmt.Errorf("exponent out of range")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}
