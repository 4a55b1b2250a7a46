package gourdianclaims

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotConfigured is returned when the secret is missing or cannot be decoded.
	// It is checked before any cryptographic work.
	ErrNotConfigured = errors.New("jwt secret is not configured")

	// ErrNoRequestScope is returned when claims are read from a context that was
	// not prepared by Manager.Middleware or Manager.WithRequest.
	ErrNoRequestScope = errors.New("no request claims in context")

	// ErrEmptyKey is returned when signing is attempted with an empty key.
	ErrEmptyKey = errors.New("signing key is empty")
)

// Diagnostic names the reason a token failed verification. It is reported to
// logs and metrics only; callers of Verify see every failure as absent claims.
type Diagnostic string

const (
	DiagnosticNone                Diagnostic = ""                      // Token verified
	DiagnosticTamperedOrMalformed Diagnostic = "tampered_or_malformed" // Bad signature or structure
	DiagnosticExpired             Diagnostic = "expired"               // Valid signature, expiry passed
	DiagnosticDecodeError         Diagnostic = "decode_error"          // Anything else
)

// String returns the diagnostic name, "ok" for DiagnosticNone.
func (d Diagnostic) String() string {
	if d == DiagnosticNone {
		return "ok"
	}
	return string(d)
}

// classifyParseError maps golang-jwt parse errors onto a Diagnostic.
func classifyParseError(err error) Diagnostic {
	switch {
	case err == nil:
		return DiagnosticNone
	case errors.Is(err, jwt.ErrTokenExpired):
		return DiagnosticExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed):
		return DiagnosticTamperedOrMalformed
	default:
		return DiagnosticDecodeError
	}
}
