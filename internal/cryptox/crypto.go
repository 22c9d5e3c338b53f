// Package cryptox derives password verifiers for stored accounts.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of the per-user random salt.
const SaltSize = 32

// DeriveKey stretches a password with argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key so the key itself is never stored.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// CheckPassword reports whether password matches the stored salt and verifier.
// The comparison is constant-time.
func CheckPassword(password, salt, verifier []byte) bool {
	key := DeriveKey(password, salt)
	got := MakeVerifier(key)
	return subtle.ConstantTimeCompare(got, verifier) == 1
}
