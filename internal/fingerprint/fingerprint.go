// Package fingerprint derives stable, non-reversible identifiers from form
// tokens so they can be logged or used as storage keys without exposing the
// token itself.
package fingerprint

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const shortLen = 12

// Sum returns the BLAKE2b-256 digest of token.
func Sum(token string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(token))
}

// Key returns the full hex digest of token.
func Key(token string) string {
	sum := Sum(token)
	return hex.EncodeToString(sum[:])
}

// Short returns an abbreviated hex digest suitable for log attributes.
func Short(token string) string {
	if token == "" {
		return ""
	}
	return Key(token)[:shortLen]
}
