package gourdianclaims

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentRequestIsolation(t *testing.T) {
	const requests = 100

	ctx := context.Background()
	metrics := NewMetrics()
	m := newTestManager(t, NewConfig(testSecret, "Jwt", "", time.Hour), WithMetrics(metrics))

	tokens := make([]string, requests)
	for i := range tokens {
		token, err := m.IssueToken(ctx, ClaimSet{"user_id": fmt.Sprintf("user-%d", i)})
		require.NoError(t, err)
		tokens[i] = token
	}

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := m.Claim(r.Context(), "user_id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if v == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, v)
	}))

	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			// Every other request carries no token.
			token := ""
			if i%2 == 0 {
				token = tokens[i]
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithToken("/", "Jwt", token))

			if i%2 == 0 {
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, fmt.Sprintf("user-%d", i), rec.Body.String())
			} else {
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
			}
		}(i)
	}
	wg.Wait()

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(requests/2), snapshot.Resolved)
	assert.Equal(t, uint64(requests/2), snapshot.ResolvedAbsent)
	assert.Equal(t, uint64(requests/2), snapshot.Verified)
}

func TestConcurrentIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, DefaultConfig(testSecret))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			token, err := m.IssueToken(ctx, ClaimSet{"n": i})
			if !assert.NoError(t, err) {
				return
			}

			claims, diag, err := m.VerifyToken(ctx, token)
			assert.NoError(t, err)
			assert.Equal(t, DiagnosticNone, diag)
			assert.Equal(t, float64(i), claims["n"])
		}(i)
	}
	wg.Wait()
}
