// Package sessionkey derives the storage key for a browser session ID.
// Raw session IDs are bearer secrets and never reach a backing store.
package sessionkey

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hash returns the hex encoded BLAKE2b-256 digest of sessionID.
func Hash(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
