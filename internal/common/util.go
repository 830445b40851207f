package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size bytes from crypto/rand.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes b in place. Nil is allowed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
