// File: gourdianclaims.cache.redis.imp.go

package gourdianclaims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const verifiedClaimsPrefix = "claims:verified:"

// RedisClaimsCache shares verified claims between instances through Redis.
type RedisClaimsCache struct {
	client *redis.Client
}

// NewRedisClaimsCache creates a new Redis-based claims cache
func NewRedisClaimsCache(client *redis.Client) (*RedisClaimsCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisClaimsCache{
		client: client,
	}, nil
}

// Get loads and decodes the claims stored under key
func (r *RedisClaimsCache) Get(ctx context.Context, key string) (ClaimSet, bool, error) {
	if key == "" {
		return nil, false, fmt.Errorf("key cannot be empty")
	}

	data, err := r.client.Get(ctx, verifiedClaimsPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis error: %w", err)
	}

	var claims ClaimSet
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached claims: %w", err)
	}
	if claims == nil {
		return nil, false, fmt.Errorf("cached claims are not a JSON object")
	}

	return claims, true, nil
}

// Set stores the claims under key with the given ttl
func (r *RedisClaimsCache) Set(ctx context.Context, key string, claims ClaimSet, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	data, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to encode claims: %w", err)
	}

	return r.client.Set(ctx, verifiedClaimsPrefix+key, data, ttl).Err()
}

// TTL returns the remaining lifetime of the entry under key, zero when absent
func (r *RedisClaimsCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if key == "" {
		return 0, fmt.Errorf("key cannot be empty")
	}

	ttl, err := r.client.PTTL(ctx, verifiedClaimsPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}

	// Redis returns negative values for keys that don't exist or have no expiry
	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}
