package gourdianclaims

import (
	"encoding/json"
	"maps"
	"math"
	"time"
)

// IssuedAtClaim is the reserved claim holding the issuance time in epoch
// milliseconds. IssueToken always overwrites a caller supplied value.
const IssuedAtClaim = "_jwt_iat"

// ClaimSet is an arbitrary set of claims carried inside a token. Values must be
// JSON serializable. After verification numbers decode as float64 and nested
// objects as map[string]any.
type ClaimSet map[string]any

// Get returns the value stored under key.
func (c ClaimSet) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c ClaimSet) GetString(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Clone returns a shallow copy. A nil ClaimSet clones to an empty one.
func (c ClaimSet) Clone() ClaimSet {
	clone := make(ClaimSet, len(c)+1)
	maps.Copy(clone, c)
	return clone
}

// IssuedAt returns the time stored under IssuedAtClaim.
func (c ClaimSet) IssuedAt() (time.Time, bool) {
	v, ok := c.Get(IssuedAtClaim)
	if !ok {
		return time.Time{}, false
	}

	var millis int64
	switch n := v.(type) {
	case int64:
		millis = n
	case int:
		millis = int64(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return time.Time{}, false
		}
		millis = int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return time.Time{}, false
		}
		millis = parsed
	default:
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
