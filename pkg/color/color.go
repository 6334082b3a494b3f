// Package color supplies the marker and stroke colours assigned to track boundaries.
package color

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Generator hands out "#rrggbb" colours, one per call.
type Generator interface {
	Next() string
}

// Hex formats a 24-bit RGB value as "#rrggbb".
func Hex(rgb uint32) string {
	return fmt.Sprintf("#%06x", rgb&0xFFFFFF)
}

// Random draws uniform 24-bit colours.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns an unseeded generator; output differs on every run.
func NewRandom() *Random {
	return &Random{}
}

// NewSeeded returns a generator whose sequence is fixed by seed.
func NewSeeded(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (r *Random) Next() string {
	if r.rng == nil {
		return Hex(rand.Uint32N(0x1000000))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Hex(r.rng.Uint32N(0x1000000))
}

// Sequence cycles through a fixed list of colours.
type Sequence struct {
	mu     sync.Mutex
	colors []string
	next   int
}

// NewSequence panics when called without colours.
func NewSequence(colors ...string) *Sequence {
	if len(colors) == 0 {
		panic("color: NewSequence needs at least one colour")
	}
	return &Sequence{colors: colors}
}

func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.colors[s.next%len(s.colors)]
	s.next++
	return c
}
