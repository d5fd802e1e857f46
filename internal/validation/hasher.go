package validation

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hasher fingerprints submitted media with SHA-256. This is
// exact-content duplicate detection only — two bit-identical uploads
// collide, a re-encoded copy of the same photo does not.
type SHA256Hasher struct{}

// Fingerprint implements ContentHasher.
func (SHA256Hasher) Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
