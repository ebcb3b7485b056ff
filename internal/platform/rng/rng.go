// Package rng provides the randomness source used by variant assignment,
// reply simulation and outcome settlement. It is injected as a dependency
// so simulations can be made deterministic with a fixed seed.
package rng

import (
	"math/rand/v2"
	"time"
)

// Source is the subset of randomness the engine needs.
type Source interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// IntN returns a uniform value in [0,n).
	IntN(n int) int
}

type pcgSource struct {
	r *rand.Rand
}

func (s *pcgSource) Float64() float64 { return s.r.Float64() }
func (s *pcgSource) IntN(n int) int   { return s.r.IntN(n) }

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// New returns a time-seeded Source.
func New() Source {
	return NewSeeded(time.Now().UnixNano())
}
