package authn

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrKeyNotFound indicates the issuer's key set has no key for the token's
// kid, even after a refresh.
var ErrKeyNotFound = errors.New("authn: signing key not found")

// KeyProvider retrieves signing keys for federated token validation.
type KeyProvider interface {
	GetKey(ctx context.Context, keyID string) (*rsa.PublicKey, error)
}

// JWKSConfig configures the JWKS key provider.
type JWKSConfig struct {
	// URL is the JWKS endpoint URL.
	URL string

	// CacheTTL is how long to cache keys before refreshing. Default 1h.
	CacheTTL time.Duration

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// JWKSKeyProvider fetches and caches the issuer's current signing keys.
// Concurrent cache misses collapse into one fetch; on fetch failure the last
// good key set keeps serving.
type JWKSKeyProvider struct {
	config JWKSConfig

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	lastGood  map[string]*rsa.PublicKey
	cacheTime time.Time
	group     singleflight.Group
}

// NewJWKSKeyProvider creates a JWKS key provider.
func NewJWKSKeyProvider(config JWKSConfig) *JWKSKeyProvider {
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &JWKSKeyProvider{
		config:   config,
		keys:     make(map[string]*rsa.PublicKey),
		lastGood: make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the key for the given key id, refreshing the set when the
// cache is stale or the kid is unknown.
func (p *JWKSKeyProvider) GetKey(ctx context.Context, keyID string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	fresh := time.Since(p.cacheTime) < p.config.CacheTTL
	key := p.lookupLocked(p.keys, keyID)
	p.mu.RUnlock()
	if fresh && key != nil {
		return key, nil
	}

	_, err, _ := p.group.Do("refresh", func() (any, error) {
		return nil, p.refresh(ctx)
	})
	if err != nil {
		p.mu.RLock()
		key := p.lookupLocked(p.keys, keyID)
		if key == nil {
			key = p.lookupLocked(p.lastGood, keyID)
		}
		p.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	p.mu.RLock()
	key = p.lookupLocked(p.keys, keyID)
	p.mu.RUnlock()
	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupLocked finds a key by id; with an empty id any single key matches.
// Caller must hold at least RLock.
func (p *JWKSKeyProvider) lookupLocked(set map[string]*rsa.PublicKey, keyID string) *rsa.PublicKey {
	if keyID == "" {
		for _, key := range set {
			return key
		}
		return nil
	}
	return set[keyID]
}

func (p *JWKSKeyProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return fmt.Errorf("authn: create jwks request: %w", err)
	}
	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("authn: fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authn: jwks endpoint returned %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("authn: decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(jwk)
		if err != nil {
			continue
		}
		keys[jwk.Kid] = pub
	}

	p.mu.Lock()
	p.keys = keys
	p.cacheTime = time.Now()
	for kid, key := range keys {
		p.lastGood[kid] = key
	}
	p.mu.Unlock()
	return nil
}

type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseRSAPublicKey(jwk jwkKey) (*rsa.PublicKey, error) {
	if jwk.N == "" || jwk.E == "" {
		return nil, errors.New("missing modulus or exponent")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}
	e := new(big.Int).SetBytes(eBytes)
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

var _ KeyProvider = (*JWKSKeyProvider)(nil)
