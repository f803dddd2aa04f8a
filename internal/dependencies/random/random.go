package random

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
	"sync"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// Shuffle permutes n elements in place with a Fisher-Yates pass driven by rnd
func Shuffle(rnd Random, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		swap(i, j)
	}
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// SeededRandom is a deterministic Random for reproducible simulations.
// It is safe for concurrent use, though interleaved callers no longer see a
// reproducible sequence.
type SeededRandom struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded creates a SeededRandom; equal seeds give equal sequences
func NewSeeded(seed uint64) *SeededRandom {
	return &SeededRandom{rng: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a pseudo-random int in [0, n)
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
