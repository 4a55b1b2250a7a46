package gourdianclaims

import (
	"context"
	"testing"
	"time"
)

func BenchmarkIssueToken(b *testing.B) {
	m := newTestManager(b, NewConfig(testSecret, "", "", time.Hour))
	ctx := context.Background()
	claims := ClaimSet{"user_id": "42", "role": "admin"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.IssueToken(ctx, claims); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyToken(b *testing.B) {
	ctx := context.Background()
	claims := ClaimSet{"user_id": "42", "role": "admin"}

	b.Run("Uncached", func(b *testing.B) {
		m := newTestManager(b, NewConfig(testSecret, "", "", time.Hour))
		token, err := m.IssueToken(ctx, claims)
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, diag, _ := m.VerifyToken(ctx, token); diag != DiagnosticNone {
				b.Fatal(diag)
			}
		}
	})

	b.Run("Memory Cache", func(b *testing.B) {
		cache := NewMemoryClaimsCache(time.Minute)
		defer cache.Close()
		m := newTestManager(b, NewConfig(testSecret, "", "", time.Hour), WithClaimsCache(cache, time.Minute))
		token, err := m.IssueToken(ctx, claims)
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, diag, _ := m.VerifyToken(ctx, token); diag != DiagnosticNone {
				b.Fatal(diag)
			}
		}
	})
}

func BenchmarkRequestResolution(b *testing.B) {
	m := newTestManager(b, DefaultConfig(testSecret))
	token, err := m.IssueToken(context.Background(), ClaimSet{"user_id": "42"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := m.WithRequest(requestWithToken("/", "Jwt", token))
			if _, err := m.Claim(req.Context(), "user_id"); err != nil {
				b.Fatal(err)
			}
		}
	})
}
