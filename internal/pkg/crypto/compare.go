package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
)

// SecureCompare reports whether two strings are equal in constant time.
// Both sides are hashed first so the comparison takes the same time
// regardless of input length or where a mismatch occurs.
func SecureCompare(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
