package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const legacyHashLen = sha256.Size * 2

// LegacySHA256Scheme verifies hashes written before bcrypt was introduced:
// the lower-case hex SHA-256 digest of the UTF-8 password, unsalted.
type LegacySHA256Scheme struct{}

func NewLegacySHA256Scheme() LegacySHA256Scheme { return LegacySHA256Scheme{} }

func (LegacySHA256Scheme) Name() string { return "legacy_sha256" }

// Hash exists for fixtures and imports. The credential service never
// stores a legacy hash.
func (LegacySHA256Scheme) Hash(raw string) (string, error) {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}

func (LegacySHA256Scheme) Recognizes(stored string) bool {
	if len(stored) != legacyHashLen {
		return false
	}
	for i := 0; i < len(stored); i++ {
		c := stored[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func (s LegacySHA256Scheme) Matches(raw, stored string) (bool, error) {
	if !s.Recognizes(stored) {
		return false, nil
	}
	digest, _ := s.Hash(raw)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1, nil
}
