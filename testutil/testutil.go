package testutil

import (
	"fmt"
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
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
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

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, zipfNorm(n, s), s)
}

func zipfNorm(n int, s float64) float64 {
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}
	return hns
}

// zipfLocked samples by inverse transform (caller must hold lock).
func (r *RNG) zipfLocked(n int, hns, s float64) int {
	if n <= 1 {
		return 0
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

const letters = "abcdefghijklmnopqrstuvwxyz"

// String returns a random lowercase string of length n.
func (r *RNG) String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(n)
}

func (r *RNG) stringLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[r.rand.Intn(len(letters))]
	}
	return string(b)
}

// Vocabulary returns size distinct words. Word i has the prefix "w<i>-" so
// words never collide.
func (r *RNG) Vocabulary(size, wordLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := make([]string, size)
	for i := range words {
		words[i] = fmt.Sprintf("w%d-%s", i, r.stringLocked(wordLen))
	}
	return words
}

// ZipfWords draws n words from vocab with Zipfian frequency, the way
// identifiers and labels repeat in real data. Every returned string is a
// fresh allocation, so equal words never share storage.
func (r *RNG) ZipfWords(n int, vocab []string, s float64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	hns := zipfNorm(len(vocab), s)
	out := make([]string, n)
	for i := range out {
		w := vocab[r.zipfLocked(len(vocab), hns, s)]
		out[i] = string([]byte(w))
	}
	return out
}

// Payloads returns n byte slices drawn uniformly from distinct random
// payloads of the given size. Every slice is a fresh allocation.
func (r *RNG) Payloads(n, distinct, size int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool := make([][]byte, distinct)
	for i := range pool {
		pool[i] = []byte(fmt.Sprintf("%08d", i) + r.stringLocked(max(size-8, 0)))
	}

	out := make([][]byte, n)
	for i := range out {
		out[i] = append([]byte(nil), pool[r.rand.Intn(distinct)]...)
	}
	return out
}
