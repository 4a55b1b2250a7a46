// helpers_test.go

package gourdianclaims

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// Test Helper Functions

const (
	// base64 of "gourdian-test-secret-0123456789a"
	testSecret = "Z291cmRpYW4tdGVzdC1zZWNyZXQtMDEyMzQ1Njc4OWE="
	// base64 of "another-test-secret-abcdefghijkl"
	otherSecret = "YW5vdGhlci10ZXN0LXNlY3JldC1hYmNkZWZnaGlqa2w="
)

var testEpoch = time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testKey(t testing.TB, secret string) SymmetricKey {
	t.Helper()
	key, err := DeriveKey(secret)
	require.NoError(t, err)
	return key
}

func newTestManager(t testing.TB, config Config, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithLogger(DiscardLogger())}, opts...)
	manager, err := NewManager(StaticConfig(config), opts...)
	require.NoError(t, err)
	return manager
}

func newTestCodec(clock *testClock, metrics *Metrics) *TokenCodec {
	return NewTokenCodec(WithClock(clock.Now), WithLogger(DiscardLogger()), WithMetrics(metrics))
}

// requestWithToken builds a GET request carrying token in the given header.
func requestWithToken(target, header, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set(header, token)
	}
	return req
}

// signRaw signs arbitrary registered claims with HS256, bypassing the codec.
func signRaw(t testing.TB, key SymmetricKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

// replaceAt returns s with the character at i swapped for another base64url character.
func replaceAt(s string, i int) string {
	replacement := byte('A')
	if s[i] == 'A' {
		replacement = 'B'
	}
	var b strings.Builder
	b.WriteString(s[:i])
	b.WriteByte(replacement)
	b.WriteString(s[i+1:])
	return b.String()
}
