package random

import (
	"crypto/rand"
	"fmt"
)

// Random provides random bytes that can be mocked for testing
type Random interface {
	// Bytes returns n random bytes
	Bytes(n int) ([]byte, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

var _ Random = (*CryptoRandom)(nil)

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Bytes returns n cryptographically random bytes
func (r *CryptoRandom) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	return b, nil
}
