package gourdianclaims

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// toMapClaims builds the registered claims of a token. The claim set travels
// as a JSON document in the subject.
func toMapClaims(subject string, tokenID uuid.UUID, issuedAt, expiresAt time.Time) jwt.MapClaims {
	claims := jwt.MapClaims{
		"jti": tokenID.String(),
		"sub": subject,
		"iat": jwt.NewNumericDate(issuedAt),
	}
	if !expiresAt.IsZero() {
		claims["exp"] = jwt.NewNumericDate(expiresAt)
	}
	return claims
}

// expiryAfter returns now+validity rounded up to a whole second. The exp
// claim only carries seconds, and truncating would end the token early.
func expiryAfter(now time.Time, validity time.Duration) time.Time {
	expiresAt := now.Add(validity)
	if truncated := expiresAt.Truncate(time.Second); !truncated.Equal(expiresAt) {
		return truncated.Add(time.Second)
	}
	return expiresAt
}

// encodeSubject serializes the claim set. encoding/json sorts map keys, which
// keeps the subject canonical for a given claim set.
func encodeSubject(claims ClaimSet) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode claims: %w", err)
	}
	return string(data), nil
}

// decodeSubject parses the subject back into a ClaimSet. It must be a JSON object.
func decodeSubject(subject string) (ClaimSet, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("subject is empty")
	}

	var claims ClaimSet
	decoder := json.NewDecoder(strings.NewReader(subject))
	if err := decoder.Decode(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode subject: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("trailing data after subject")
	}
	if claims == nil {
		return nil, fmt.Errorf("subject is not a JSON object")
	}
	return claims, nil
}

// mapToClaimSet extracts the claim set and expiry from verified token claims.
func mapToClaimSet(claims jwt.MapClaims) (ClaimSet, time.Time, error) {
	subject, err := claims.GetSubject()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	set, err := decodeSubject(subject)
	if err != nil {
		return nil, time.Time{}, err
	}

	var expiresAt time.Time
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		expiresAt = exp.Time
	}

	return set, expiresAt, nil
}

// tokenIDOf returns the jti claim, or an empty string.
func tokenIDOf(token *jwt.Token) string {
	if token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	id, _ := claims["jti"].(string)
	return id
}
