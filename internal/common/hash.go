package common

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint hashes parts into a lowercase hex SHA-256 digest. Parts are
// separated by a unit separator so ("a b", "c") and ("a", "b c") differ.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
