package gourdianclaims

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ClaimsCache stores claim sets of tokens that already passed verification,
// keyed by an opaque digest computed by the Manager.
type ClaimsCache interface {
	// Get returns the cached claims, or false on a miss.
	Get(ctx context.Context, key string) (ClaimSet, bool, error)

	// Set stores claims for ttl, which must be positive.
	Set(ctx context.Context, key string, claims ClaimSet, ttl time.Duration) error
}

// cacheKey binds the digest to the signing key, so caches shared by managers
// with different secrets never serve each other's entries. Raw tokens are
// never stored.
func cacheKey(key SymmetricKey, token string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// cacheTTL bounds an entry by maxTTL and by the token expiry.
func cacheTTL(now, expiresAt time.Time, maxTTL time.Duration) time.Duration {
	ttl := maxTTL
	if !expiresAt.IsZero() {
		if remaining := expiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}
