package mocks

import (
	"github.com/mcoot/galapa/internal/dependencies/random"
)

// MockRandom returns a predictable byte sequence: each call continues
// counting up from where the previous one stopped
type MockRandom struct {
	next byte
	// Err, if set, is returned by every call
	Err error
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Bytes returns the next n bytes of the sequence
func (r *MockRandom) Bytes(n int) ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = r.next
		r.next++
	}
	return b, nil
}
