package passhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Hash produces a deterministic salted SHA-256 digest of the password,
// hex-encoded. The same (password, salt) pair always yields the same digest,
// which lets Verify recompute and compare instead of decrypting. Any input,
// including the empty string, produces a digest.
func Hash(password, salt string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the digest for (password, salt) and compares it against
// the stored digest in constant time to prevent timing-based side channels.
func Verify(password, salt, digest string) bool {
	computed := Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
