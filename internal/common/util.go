package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// MakeRandHexString generates size random bytes and returns them hex-encoded,
// so the resulting string is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return b
}

// WipeByteArray overwrites b with zeros. Used for passwords after use.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ParseDate validates a daily log key and returns it normalised.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, s)
	}
	return t.Format(DateLayout), nil
}

// Today returns the UTC calendar day for now.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
