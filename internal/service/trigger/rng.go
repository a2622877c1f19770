package trigger

import (
	"math/rand"
	"sync"
)

// lockedRNG wraps math/rand behind a mutex so cascade goroutines can share
// one source.
type lockedRNG struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRNG creates a seeded randomness source safe for concurrent use.
func NewRNG(seed int64) RNG {
	return &lockedRNG{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}
