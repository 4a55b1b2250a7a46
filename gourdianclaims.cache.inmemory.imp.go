// File: gourdianclaims.cache.inmemory.imp.go

package gourdianclaims

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// cacheEntry represents cached claims with their expiration time
type cacheEntry struct {
	claims    ClaimSet
	expiresAt time.Time
}

// MemoryClaimsCache is an in-memory implementation of ClaimsCache.
// Suitable for development, testing, or single-instance deployments.
type MemoryClaimsCache struct {
	mu              sync.RWMutex
	entries         map[string]cacheEntry
	now             func() time.Time
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

// MemoryCacheOption configures a MemoryClaimsCache.
type MemoryCacheOption func(*MemoryClaimsCache)

// WithCacheClock replaces time.Now for entry expiry. Pass the same clock given
// to the Manager with WithClock so TTLs and lookups agree.
func WithCacheClock(now func() time.Time) MemoryCacheOption {
	return func(m *MemoryClaimsCache) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryClaimsCache creates a new in-memory claims cache.
// cleanupInterval determines how often expired entries are removed (default: 5 minutes).
func NewMemoryClaimsCache(cleanupInterval time.Duration, opts ...MemoryCacheOption) *MemoryClaimsCache {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	cache := &MemoryClaimsCache{
		entries:         make(map[string]cacheEntry),
		now:             time.Now,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}

	go cache.periodicCleanup()

	return cache
}

// Get returns a copy of the cached claims for key
func (m *MemoryClaimsCache) Get(ctx context.Context, key string) (ClaimSet, bool, error) {
	if key == "" {
		return nil, false, fmt.Errorf("key cannot be empty")
	}

	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	// Expired entries are never served, even before cleanup runs
	if !m.now().Before(entry.expiresAt) {
		return nil, false, nil
	}

	return entry.claims.Clone(), true, nil
}

// Set stores a copy of claims under key for ttl
func (m *MemoryClaimsCache) Set(ctx context.Context, key string, claims ClaimSet, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	entry := cacheEntry{
		claims:    claims.Clone(),
		expiresAt: m.now().Add(ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry

	return nil
}

// CleanupExpired removes expired entries from memory
func (m *MemoryClaimsCache) CleanupExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}

	return nil
}

// periodicCleanup runs background cleanup of expired entries
func (m *MemoryClaimsCache) periodicCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case <-m.stopCleanup:
			return
		case <-ticker.C:
			_ = m.CleanupExpired(ctx)
		}
	}
}

// Close stops the background cleanup goroutine.
// Call this when shutting down the application.
func (m *MemoryClaimsCache) Close() error {
	m.cleanupOnce.Do(func() {
		close(m.stopCleanup)
	})
	return nil
}

// Len returns the number of stored entries, expired ones included until cleanup
func (m *MemoryClaimsCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
