package rng

import "math/rand"

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Seeded returns a deterministic generator
// The returned generator is not safe for concurrent use. Give each goroutine its own.
func Seeded(seed int64) Generator {
	return rand.New(rand.NewSource(seed)) // nolint:gosec
}

// Derive returns a new seeded generator for a worker
// A zero base seed means the worker should be unpredictable, so the crypto generator is used to pick a seed.
func Derive(base int64, worker int) Generator {
	if base == 0 {
		return Seeded(int64(Crypto{}.Intn(1<<62)) + int64(worker))
	}

	return Seeded(base + int64(worker)*7919)
}
