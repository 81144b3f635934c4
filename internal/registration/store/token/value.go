// Package token stores registration tokens. The opaque value is the only
// authorization for registration steps 2 and 3, so generation uses 256 bits
// from crypto/rand and lookups are expiry-aware everywhere.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewValue returns a fresh opaque token value. 32 random bytes hex-encoded;
// collision probability is negligible at this entropy.
func NewValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token value: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
