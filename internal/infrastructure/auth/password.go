package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SaltedHasher hashes passwords with a random per-password salt, encoded
// as "salt$hash".
type SaltedHasher struct{}

func NewSaltedHasher() SaltedHasher {
	return SaltedHasher{}
}

func (SaltedHasher) Hash(password string) string {
	salt := randomHex(8)
	h := sha256.Sum256([]byte(salt + password))
	return salt + "$" + hex.EncodeToString(h[:])
}

func (SaltedHasher) Verify(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	salt := parts[0]
	h := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(h[:]) == parts[1]
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "salt"
	}
	return hex.EncodeToString(buf)
}
