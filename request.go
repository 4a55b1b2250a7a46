package gourdianclaims

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// ResolutionState tracks a RequestClaims slot.
type ResolutionState int32

const (
	StateUninitialized  ResolutionState = iota // Nothing read yet
	StateResolved                              // A verified claim set is held
	StateResolvedAbsent                        // No token, or the token was rejected
	StateFailed                                // Resolution hit a configuration error
)

func (s ResolutionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolved:
		return "resolved"
	case StateResolvedAbsent:
		return "resolved_absent"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type resolveFunc func(r *http.Request) (ClaimSet, error)

// RequestClaims is the claim resolution slot of a single request. It resolves
// once, on first access, and memoizes the outcome for the rest of the request.
// A slot belongs to exactly one request context and is never shared.
type RequestClaims struct {
	once    sync.Once
	state   atomic.Int32
	request *http.Request
	resolve resolveFunc
	claims  ClaimSet
	err     error
}

func newRequestClaims(r *http.Request, resolve resolveFunc) *RequestClaims {
	return &RequestClaims{request: r, resolve: resolve}
}

// Claims resolves the slot if needed and returns the claim set. A nil set with
// a nil error means the request carries no trusted token. The only error is a
// configuration error, which is fatal to the request.
//
// The returned map is a copy; nested values are shared and must not be modified.
func (rc *RequestClaims) Claims() (ClaimSet, error) {
	rc.ensureResolved()
	if rc.claims == nil {
		return nil, rc.err
	}
	return rc.claims.Clone(), nil
}

// Claim returns a single claim value, or nil when absent.
func (rc *RequestClaims) Claim(key string) (any, error) {
	rc.ensureResolved()
	if rc.err != nil {
		return nil, rc.err
	}
	v, _ := rc.claims.Get(key)
	return v, nil
}

// State reports the resolution state without triggering resolution.
func (rc *RequestClaims) State() ResolutionState {
	return ResolutionState(rc.state.Load())
}

func (rc *RequestClaims) ensureResolved() {
	rc.once.Do(func() {
		claims, err := rc.resolve(rc.request)
		switch {
		case err != nil:
			rc.err = err
			rc.state.Store(int32(StateFailed))
		case claims == nil:
			rc.state.Store(int32(StateResolvedAbsent))
		default:
			rc.claims = claims
			rc.state.Store(int32(StateResolved))
		}
		rc.request = nil
		rc.resolve = nil
	})
}

type requestClaimsKey struct{}

// ClaimsFromContext returns the slot attached by Manager.Middleware or Manager.WithRequest.
func ClaimsFromContext(ctx context.Context) (*RequestClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(requestClaimsKey{}).(*RequestClaims)
	return rc, ok
}

func contextWithRequestClaims(ctx context.Context, rc *RequestClaims) context.Context {
	return context.WithValue(ctx, requestClaimsKey{}, rc)
}

// TokenFromRequest reads the raw token from header. When the header is blank
// and param is set, the query parameter named param is used instead.
func TokenFromRequest(r *http.Request, header, param string) string {
	if r == nil {
		return ""
	}

	token := strings.TrimSpace(r.Header.Get(header))
	if token == "" && strings.TrimSpace(param) != "" && r.URL != nil {
		token = strings.TrimSpace(r.URL.Query().Get(param))
	}
	return token
}
