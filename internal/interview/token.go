package interview

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of an access token. 128 bits keeps collisions
// astronomically unlikely; the store's unique constraint covers the rest.
const tokenBytes = 16

// TokenGenerator produces opaque bearer tokens. Injectable so tests can force
// collisions.
type TokenGenerator func() (string, error)

// NewToken returns a fresh lowercase-hex access token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
