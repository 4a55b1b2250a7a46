package gourdianclaims

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// SymmetricKey is the HMAC key derived from the configured secret.
type SymmetricKey []byte

// DeriveKey decodes the base64 secret into a SymmetricKey.
// Standard and URL alphabets are accepted, padded or not.
// Every failure matches ErrNotConfigured.
func DeriveKey(secret string) (SymmetricKey, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("%w: secret is empty", ErrNotConfigured)
	}

	decoded, err := decodeSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: secret is not valid base64: %v", ErrNotConfigured, err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: secret decodes to zero bytes", ErrNotConfigured)
	}

	return SymmetricKey(decoded), nil
}

func decodeSecret(secret string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var firstErr error
	for _, encoding := range encodings {
		decoded, err := encoding.DecodeString(secret)
		if err == nil {
			return decoded, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// GenerateSecret returns a random secret of n bytes encoded with standard base64.
func GenerateSecret(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("secret length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
