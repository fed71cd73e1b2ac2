// Package generator builds randomized question sequences.
package generator

import (
	"math/rand"
	"time"
)

// Source is the randomness used for shuffling and sampling.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// NewSource returns a Source seeded with the current time.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Generator produces question hand sequences.
type Generator struct {
	rnd Source
}

// New returns a Generator drawing from src. A nil src is seeded with the current time.
func New(src Source) *Generator {
	if src == nil {
		src = NewSource()
	}
	return &Generator{rnd: src}
}

// Source exposes the generator's randomness.
func (g *Generator) Source() Source {
	return g.rnd
}

// Shuffle returns a Fisher-Yates shuffled copy of items.
func Shuffle[T any](rnd Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Sequence shuffles pool once and repeats the shuffled copy until count items
// are produced. Every hand of a pool no larger than count appears before any repeat.
func (g *Generator) Sequence(pool []string, count int) []string {
	if len(pool) == 0 || count <= 0 {
		return nil
	}
	shuffled := Shuffle(g.rnd, pool)
	result := make([]string, 0, count+len(shuffled))
	for len(result) < count {
		result = append(result, shuffled...)
	}
	return result[:count]
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](rnd Source, items []T) T {
	return items[rnd.Intn(len(items))]
}
