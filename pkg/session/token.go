package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// tokenBytes yields 256 bits of entropy per token.
const tokenBytes = 32

// generateToken creates a cryptographically secure opaque token. The
// token is the sole lookup key for a session and carries no payload.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
