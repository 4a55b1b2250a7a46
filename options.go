package gourdianclaims

import (
	"log/slog"
	"time"
)

// DefaultCacheTTL bounds how long verified claims stay cached when no other
// bound is given.
const DefaultCacheTTL = 5 * time.Minute

type options struct {
	logger      *slog.Logger
	metrics     *Metrics
	clock       func() time.Time
	cache       ClaimsCache
	cacheMaxTTL time.Duration
}

// Option configures a Manager or TokenCodec.
type Option func(*options)

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the counters updated by token operations.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithClock replaces time.Now for issuance and expiry checks. It does not reach
// a MemoryClaimsCache; give the cache the same clock with WithCacheClock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithClaimsCache caches verified claim sets across requests. Entries live no
// longer than maxTTL nor past the token expiry. A non-positive maxTTL uses
// DefaultCacheTTL.
func WithClaimsCache(cache ClaimsCache, maxTTL time.Duration) Option {
	return func(o *options) {
		o.cache = cache
		if maxTTL <= 0 {
			maxTTL = DefaultCacheTTL
		}
		o.cacheMaxTTL = maxTTL
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:      slog.Default(),
		clock:       time.Now,
		cacheMaxTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
