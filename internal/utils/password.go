package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Two hash schemes coexist in the users table: bcrypt (current) and a bare
// hex SHA-256 digest inherited from an earlier deployment (legacy).  The
// verifier dispatches on the stored value's shape; new hashes are always
// bcrypt.  Legacy hashes survive only until the owner's next successful
// login, at which point the login path rewrites them.

const legacyHexLen = sha256.Size * 2

// HashPassword returns a bcrypt hash using the given cost.  It never
// produces a legacy-scheme hash.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a plaintext password against a stored hash,
// dispatching on the hash scheme.  Unknown formats never match.
func VerifyPassword(stored, plain string) bool {
	switch {
	case isBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	case isLegacy(stored):
		sum := sha256.Sum256([]byte(plain))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(stored))) == 1
	default:
		return false
	}
}

// NeedsRehash reports whether a stored hash should be rewritten with the
// current scheme.  It is true exactly for legacy hashes, so a current
// bcrypt hash is never churned or downgraded.
func NeedsRehash(stored string) bool {
	return isLegacy(stored)
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func isLegacy(s string) bool {
	if len(s) != legacyHexLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// LegacyHash computes a legacy-scheme digest.  Kept for fixtures and
// migration tests only; production code paths never store its output.
func LegacyHash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
