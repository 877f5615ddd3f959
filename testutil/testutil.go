package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n uniformly random bytes. Uniform bytes are
// effectively incompressible, which makes them the worst case for
// every codec.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	r.rand.Read(b)
	return b
}

// CompressibleBytes returns n bytes built from a small token
// vocabulary with Zipf-distributed token frequencies, resembling the
// redundancy of real data. Every codec compresses it well.
func (r *RNG) CompressibleBytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	const vocabSize = 32
	vocab := make([][]byte, vocabSize)
	for i := range vocab {
		tok := make([]byte, 8+r.rand.Intn(24))
		r.rand.Read(tok)
		vocab[i] = tok
	}

	b := make([]byte, 0, n)
	for len(b) < n {
		b = append(b, vocab[r.zipfLocked(vocabSize, 1.2)]...)
	}
	return b[:n]
}

// TextBytes returns n bytes of space-separated words, a stand-in for
// log or document payloads.
func (r *RNG) TextBytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := []string{"chunk", "frame", "archive", "offset", "seek", "table", "blob", "store", "compress", "verify"}
	b := make([]byte, 0, n)
	for len(b) < n {
		b = append(b, words[r.rand.Intn(len(words))]...)
		if r.rand.Intn(12) == 0 {
			b = append(b, '\n')
		} else {
			b = append(b, ' ')
		}
	}
	return b[:n]
}

// zipfLocked returns a Zipfian-distributed value in [0, n) with skew
// s. Caller must hold the lock.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}
