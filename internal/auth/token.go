package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 16

// NewSessionToken returns a fresh opaque session token: 16 random bytes,
// hex encoded. The token carries no claims; everything about the session
// lives server-side.
func NewSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
