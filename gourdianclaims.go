// gourdianclaims.go

package gourdianclaims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Manager is the single access point to the token core: it issues tokens and
// exposes the claims of the current request. Construct one at startup and
// share it between handlers; it holds no per-request state.
type Manager struct {
	provider    ConfigProvider
	codec       *TokenCodec
	cache       ClaimsCache
	cacheMaxTTL time.Duration
	now         func() time.Time
	logger      *slog.Logger
	metrics     *Metrics
}

// NewManager creates a Manager reading its settings from provider.
//
// The secret is not checked here. A missing or invalid secret surfaces as
// ErrNotConfigured from the first token operation, so a misconfiguration never
// prevents unrelated code from starting.
//
// Example:
//
//	manager, err := gourdianclaims.NewManager(
//	    gourdianclaims.EnvConfig(),
//	    gourdianclaims.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mux.Handle("/profile", manager.Middleware(profileHandler(manager)))
//
// The returned Manager is safe for concurrent use by multiple goroutines.
func NewManager(provider ConfigProvider, opts ...Option) (*Manager, error) {
	if provider == nil {
		return nil, fmt.Errorf("config provider cannot be nil")
	}

	o := newOptions(opts)
	return &Manager{
		provider:    provider,
		codec:       newTokenCodec(o),
		cache:       o.cache,
		cacheMaxTTL: o.cacheMaxTTL,
		now:         o.clock,
		logger:      o.logger,
		metrics:     o.metrics,
	}, nil
}

// HTTPHeaderName returns the request header that carries the token.
func (m *Manager) HTTPHeaderName() string {
	return m.provider.Config().headerName()
}

// HTTPParameterKey returns the query parameter consulted when the header is
// blank, or an empty string when the fallback is disabled.
func (m *Manager) HTTPParameterKey() string {
	return m.provider.Config().HTTPParameterKey
}

// IsConfigured reports whether token operations can run.
func (m *Manager) IsConfigured() bool {
	return m.provider.Config().IsConfigured()
}

// Metrics returns the counters given with WithMetrics, or nil.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// signingKey derives the key for one token operation.
func (m *Manager) signingKey() (Config, SymmetricKey, error) {
	config := m.provider.Config()
	key, err := DeriveKey(config.Secret)
	if err != nil {
		return config, nil, err
	}
	return config, key, nil
}

// IssueToken signs claims into a token using the configured secret and
// validity period. See TokenCodec.Issue for the claims handling.
// It fails with ErrNotConfigured before any signing when the secret is unusable.
func (m *Manager) IssueToken(ctx context.Context, claims ClaimSet) (string, error) {
	config, key, err := m.signingKey()
	if err != nil {
		m.metrics.inc(metricIssueFailure)
		m.logger.LogAttrs(ctx, slog.LevelError, "cannot issue token", errorAttr(err))
		return "", fmt.Errorf("can not create jwt: %w", err)
	}

	token, err := m.codec.Issue(claims, key, config.Validity())
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "cannot issue token", errorAttr(err))
		return "", err
	}
	return token, nil
}

// VerifyToken verifies a token outside of a request. Rejected tokens return a
// nil ClaimSet and their Diagnostic; the error is only ErrNotConfigured.
func (m *Manager) VerifyToken(ctx context.Context, token string) (ClaimSet, Diagnostic, error) {
	_, key, err := m.signingKey()
	if err != nil {
		return nil, DiagnosticNone, err
	}

	claims, diag := m.verify(ctx, token, key)
	return claims, diag, nil
}

// verify consults the claims cache before the codec and fills it on success.
func (m *Manager) verify(ctx context.Context, token string, key SymmetricKey) (ClaimSet, Diagnostic) {
	if m.cache == nil {
		claims, _, diag := m.codec.verify(ctx, token, key)
		return claims, diag
	}

	digest := cacheKey(key, token)
	cached, ok, err := m.cache.Get(ctx, digest)
	switch {
	case err != nil:
		m.metrics.inc(metricCacheError)
		m.logger.LogAttrs(ctx, slog.LevelWarn, "claims cache lookup failed", errorAttr(err))
	case ok:
		m.metrics.inc(metricCacheHit)
		return cached, DiagnosticNone
	default:
		m.metrics.inc(metricCacheMiss)
	}

	claims, expiresAt, diag := m.codec.verify(ctx, token, key)
	if diag != DiagnosticNone {
		return nil, diag
	}

	if ttl := cacheTTL(m.now(), expiresAt, m.cacheMaxTTL); ttl > 0 {
		if err := m.cache.Set(ctx, digest, claims, ttl); err != nil {
			m.metrics.inc(metricCacheError)
			m.logger.LogAttrs(ctx, slog.LevelWarn, "claims cache store failed", errorAttr(err))
		}
	}
	return claims, DiagnosticNone
}

// resolveRequest is the first-access resolution of a RequestClaims slot.
func (m *Manager) resolveRequest(r *http.Request) (ClaimSet, error) {
	ctx := r.Context()

	config, key, err := m.signingKey()
	if err != nil {
		m.metrics.incState(StateFailed)
		m.logger.LogAttrs(ctx, slog.LevelError, "cannot resolve request claims", errorAttr(err))
		return nil, err
	}

	var claims ClaimSet
	if token := TokenFromRequest(r, config.headerName(), config.HTTPParameterKey); token != "" {
		claims, _ = m.verify(ctx, token, key)
	}

	state := StateResolved
	if claims == nil {
		state = StateResolvedAbsent
	}
	m.metrics.incState(state)
	m.logger.LogAttrs(ctx, slog.LevelDebug, "request claims resolved", stateAttr(state))
	return claims, nil
}

// WithRequest returns r with a fresh claims slot in its context. A request
// that already carries a slot is returned unchanged.
func (m *Manager) WithRequest(r *http.Request) *http.Request {
	if _, ok := ClaimsFromContext(r.Context()); ok {
		return r
	}

	rc := newRequestClaims(nil, m.resolveRequest)
	r = r.WithContext(contextWithRequestClaims(r.Context(), rc))
	rc.request = r
	return r
}

// Middleware attaches a claims slot to every request. The token is only read
// and verified when a handler first asks for claims.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, m.WithRequest(r))
	})
}

// RequireClaims resolves the claims before calling next. Requests without a
// trusted token get 401 Unauthorized; a configuration error gets 500.
func (m *Manager) RequireClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = m.WithRequest(r)

		claims, err := m.Claims(r.Context())
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				http.Error(w, "jwt is not configured", http.StatusInternalServerError)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if claims == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Claims returns the claim set of the request carried by ctx, or nil when the
// request has no trusted token. The error is ErrNotConfigured or ErrNoRequestScope.
func (m *Manager) Claims(ctx context.Context) (ClaimSet, error) {
	rc, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, ErrNoRequestScope
	}
	return rc.Claims()
}

// Claim returns one claim of the current request, or nil when absent.
func (m *Manager) Claim(ctx context.Context, key string) (any, error) {
	rc, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, ErrNoRequestScope
	}
	return rc.Claim(key)
}

// ClaimAs returns the claim under key converted to T. The boolean is false
// when the claim is absent or holds another type.
func ClaimAs[T any](ctx context.Context, m *Manager, key string) (T, bool, error) {
	var zero T

	v, err := m.Claim(ctx, key)
	if err != nil {
		return zero, false, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false, nil
	}
	return typed, true, nil
}
