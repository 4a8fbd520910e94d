package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// TokenFingerprint returns a hex-encoded SHA-256 hash of a signed token
// string. Sessions store only fingerprints, so a valid bearer token cannot
// be reconstructed from the database.
func TokenFingerprint(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokenFingerprintEqual compares the fingerprint of a presented token with a
// stored fingerprint in constant time.
func TokenFingerprintEqual(token, storedFingerprint string) bool {
	fp := TokenFingerprint(token)
	return subtle.ConstantTimeCompare([]byte(fp), []byte(storedFingerprint)) == 1
}
