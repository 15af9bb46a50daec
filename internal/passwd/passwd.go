// Package passwd turns credentials into the fixed hex digests stored by the
// vote store. Plaintext never leaves this package: callers hash on arrival
// and only compare digests afterwards.
package passwd

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DigestLen is the length of a rendered digest in bytes.
const DigestLen = sha256.Size * 2

// Digest returns the lowercase hex SHA-256 of plaintext. Deterministic: the
// same input always yields the same output, so digests can be compared
// directly.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether plaintext hashes to digest, in constant time.
func Verify(digest string, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(Digest(plaintext))) == 1
}
