// Package id generates short identifiers for listeners and script runs.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// size is the number of random bytes in an identifier (8 hex chars).
const size = 4

// Generate returns a random 8-character hex ID.
func Generate() string {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithPrefix returns a random ID of the form "<prefix>-<hex>".
// An empty prefix yields a bare hex ID.
func WithPrefix(prefix string) string {
	if prefix == "" {
		return Generate()
	}
	return prefix + "-" + Generate()
}
