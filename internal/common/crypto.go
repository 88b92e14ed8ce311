package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns n cryptographically random bytes hex-encoded, giving
// a 2n-character bearer token.
func GenerateToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
