package gourdianclaims

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec signs claim sets into HS256 tokens and verifies them back.
// It holds no key material and is safe for concurrent use.
type TokenCodec struct {
	signingMethod jwt.SigningMethod
	parser        *jwt.Parser
	now           func() time.Time
	logger        *slog.Logger
	metrics       *Metrics
}

// NewTokenCodec creates a codec. WithClock, WithLogger and WithMetrics apply;
// other options are ignored.
func NewTokenCodec(opts ...Option) *TokenCodec {
	o := newOptions(opts)
	return newTokenCodec(o)
}

func newTokenCodec(o *options) *TokenCodec {
	method := jwt.SigningMethodHS256
	return &TokenCodec{
		signingMethod: method,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(o.clock),
		),
		now:     o.clock,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Issue signs the claim set with key. The caller's map is not modified.
// IssuedAtClaim is set to the current time in epoch milliseconds, replacing
// any value the caller put there. A positive validity adds an exp claim,
// rounded up to the whole second the claim can hold;
// otherwise the token never expires.
func (c *TokenCodec) Issue(claims ClaimSet, key SymmetricKey, validity time.Duration) (string, error) {
	if len(key) == 0 {
		c.metrics.inc(metricIssueFailure)
		return "", ErrEmptyKey
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		c.metrics.inc(metricIssueFailure)
		return "", fmt.Errorf("failed to generate token ID: %w", err)
	}

	now := c.now()
	set := claims.Clone()
	set[IssuedAtClaim] = now.UnixMilli()

	subject, err := encodeSubject(set)
	if err != nil {
		c.metrics.inc(metricIssueFailure)
		return "", err
	}

	var expiresAt time.Time
	if validity > 0 {
		expiresAt = expiryAfter(now, validity)
	}

	token := jwt.NewWithClaims(c.signingMethod, toMapClaims(subject, tokenID, now, expiresAt))
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		c.metrics.inc(metricIssueFailure)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	c.metrics.inc(metricIssued)
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns its claim
// set. It never fails loudly: a nil ClaimSet means the token must not be
// trusted, and the Diagnostic says why. Every failure is logged and counted.
func (c *TokenCodec) Verify(tokenString string, key SymmetricKey) (ClaimSet, Diagnostic) {
	claims, _, diag := c.verify(context.Background(), tokenString, key)
	return claims, diag
}

// verify also returns the token expiry, zero when the token never expires.
func (c *TokenCodec) verify(ctx context.Context, tokenString string, key SymmetricKey) (ClaimSet, time.Time, Diagnostic) {
	if len(key) == 0 {
		c.report(ctx, DiagnosticDecodeError, ErrEmptyKey, "")
		return nil, time.Time{}, DiagnosticDecodeError
	}

	token, err := c.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != c.signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(key), nil
	})
	if err != nil {
		diag := classifyParseError(err)
		tokenID := ""
		if diag == DiagnosticExpired {
			// The signature was checked before expiry, so the ID can be trusted.
			tokenID = tokenIDOf(token)
		}
		c.report(ctx, diag, err, tokenID)
		return nil, time.Time{}, diag
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		c.report(ctx, DiagnosticDecodeError, fmt.Errorf("invalid token claims"), "")
		return nil, time.Time{}, DiagnosticDecodeError
	}

	set, expiresAt, err := mapToClaimSet(mapClaims)
	if err != nil {
		c.report(ctx, DiagnosticDecodeError, err, tokenIDOf(token))
		return nil, time.Time{}, DiagnosticDecodeError
	}

	c.metrics.inc(metricVerified)
	return set, expiresAt, DiagnosticNone
}

// report is the observability side channel for verification failures.
func (c *TokenCodec) report(ctx context.Context, diag Diagnostic, err error, tokenID string) {
	c.metrics.incDiagnostic(diag)
	c.logger.LogAttrs(ctx, slog.LevelWarn, "token verification failed",
		diagnosticAttr(diag),
		errorAttr(err),
		tokenIDAttr(tokenID),
	)
}
