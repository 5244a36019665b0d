package generator

import (
	"time"

	"golang.org/x/exp/rand"
)

// Random is a uniform pseudo-random source backed by a PCG generator.
// It is not safe for concurrent use: every worker owns its own instance,
// so the hot path never takes a lock.
type Random struct {
	r *rand.Rand
}

// NewRandom returns a source whose sequence is fully determined by seed.
func NewRandom(seed uint64) *Random {
	src := &rand.PCGSource{}
	src.Seed(seed)
	return &Random{
		r: rand.New(src),
	}
}

// NewRandomFor returns a source seeded from the given identity and the
// wall clock, so that sources created at the same instant for different
// ids produce uncorrelated sequences.
func NewRandomFor(id int64) *Random {
	return NewRandom(SeedFor(id, uint64(time.Now().UnixNano())))
}

// SeedFor mixes an identity into a base seed with the splitmix64 finalizer.
func SeedFor(id int64, base uint64) uint64 {
	z := base + uint64(id+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NextFloat64 returns a uniform value in [0, 1).
func (self *Random) NextFloat64() float64 {
	return self.r.Float64()
}

// NextInt64 returns a uniform value in [0, bound). It panics if bound <= 0.
func (self *Random) NextInt64(bound int64) int64 {
	if bound <= 0 {
		panic("invalid bound for NextInt64")
	}
	return self.r.Int63n(bound)
}
