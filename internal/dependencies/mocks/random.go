package mocks

import (
	"sync"

	"github.com/mcoot/cardboard/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued strings are returned in order; once exhausted, String falls back
// to a deterministic counter so generated ids stay unique.
type MockRandom struct {
	mu sync.Mutex

	stringResults []string
	stringIndex   int
	fallback      int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result, or a generated one of the requested length
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex < len(r.stringResults) {
		result := r.stringResults[r.stringIndex]
		r.stringIndex++
		return result
	}

	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	r.fallback++
	out := make([]byte, length)
	n := r.fallback
	for i := length - 1; i >= 0; i-- {
		out[i] = alphabet[n%len(alphabet)]
		n /= len(alphabet)
	}
	return string(out)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = nil
	r.stringIndex = 0
	r.fallback = 0
}
