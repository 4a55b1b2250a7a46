// docs.go

// Package gourdianclaims issues and validates HS256 session tokens carrying an
// arbitrary claim set, and exposes the claims of the current HTTP request to
// handlers without threading them through every call.
//
// # Overview
//
// The package provides:
// - Key derivation from a single base64 encoded secret
// - Token issuance with an automatic issued-at claim and optional expiry
// - Verification that never leaks why a token was rejected to the caller
// - A per-request claims slot resolved lazily and at most once
// - Optional caching of verified claims in memory or Redis
// - Diagnostics for every rejected token through log/slog and counters
//
// # Configuration
//
// A Manager reads its settings through a ConfigProvider:
//
//	GOURDIAN_JWT_SECRET=c2VjcmV0LXNlY3JldC1zZWNyZXQtc2VjcmV0LXNlY3JldA==
//	GOURDIAN_JWT_HTTP_HEADER_NAME=Jwt
//	GOURDIAN_JWT_HTTP_PARAMETER_KEY=jwt
//	GOURDIAN_JWT_VALIDITY_PERIOD=3600000
//
// ValidityPeriod is in milliseconds; 0 issues tokens that never expire.
// The secret is checked lazily, so a bad secret only fails token operations
// with ErrNotConfigured.
//
// # Issuing tokens
//
//	token, err := manager.IssueToken(ctx, gourdianclaims.ClaimSet{
//	    "user_id": "42",
//	    "role":    "admin",
//	})
//
// The claim set travels as JSON in the token subject together with the
// reserved IssuedAtClaim ("_jwt_iat", epoch milliseconds), which always
// overwrites a caller supplied value.
//
// # Reading claims in handlers
//
//	mux.Handle("/me", manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    userID, ok, err := gourdianclaims.ClaimAs[string](r.Context(), manager, "user_id")
//	    ...
//	})))
//
// The middleware only attaches an empty slot. The first read extracts the
// token from the configured header (falling back to the query parameter when
// the header is blank), verifies it and memoizes the result for the rest of
// the request. Every request has its own slot, so concurrent requests never
// observe each other's claims.
//
// # Security Notes
//
// Tampered, malformed, expired and undecodable tokens all look like "no
// token" to the caller. The reason is reported as a Diagnostic to the logger
// and to Metrics only.
package gourdianclaims
