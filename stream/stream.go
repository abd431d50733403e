// Package stream derives isolated, deterministic pseudo-random streams from a
// master seed and a hierarchical path.
//
// A stream is a pure function of (master seed, path): deriving the same pair
// twice yields generators that produce identical sequences, and changing any
// path segment yields an unrelated sequence. Nothing is cached, so re-seeding
// the master seed is reflected by the next derivation.
package stream

import (
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Separator joins path segments before hashing.
const Separator = "::"

const seedMask = math.MaxInt64

// Stream is a derived pseudo-random generator bound to one path.
// A Stream is not safe for concurrent use; every request derives its own.
type Stream struct {
	masterSeed int64
	path       []string
	seed       int64
	rng        *rand.Rand
}

// Seed hashes (masterSeed, path) into a non-negative 63-bit seed.
func Seed(masterSeed int64, path []string) int64 {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(masterSeed, 10))
	b.WriteByte('|')
	b.WriteString(strings.Join(path, Separator))
	return int64(xxhash.Sum64String(b.String()) & seedMask)
}

// Derive returns the stream for path under masterSeed.
func Derive(masterSeed int64, path []string) *Stream {
	seed := Seed(masterSeed, path)
	return &Stream{
		masterSeed: masterSeed,
		path:       slices.Clone(path),
		seed:       seed,
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
	}
}

// Child derives the stream at path ++ segments under the same master seed.
// The receiver's draw position does not influence the child.
func (s *Stream) Child(segments ...string) *Stream {
	return Derive(s.masterSeed, append(slices.Clone(s.path), segments...))
}

// Rebase derives the stream at the same path under another master seed.
func (s *Stream) Rebase(masterSeed int64) *Stream {
	return Derive(masterSeed, s.path)
}

// Path returns a copy of the stream's path.
func (s *Stream) Path() []string {
	return slices.Clone(s.path)
}

// PathString returns the path joined with Separator.
func (s *Stream) PathString() string {
	return strings.Join(s.path, Separator)
}

// MasterSeed returns the master seed the stream was derived from.
func (s *Stream) MasterSeed() int64 {
	return s.masterSeed
}

// DerivedSeed returns the hashed seed the generator was initialized with.
func (s *Stream) DerivedSeed() int64 {
	return s.seed
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Uint64 returns the next raw 64-bit value.
func (s *Stream) Uint64() uint64 {
	return s.rng.Uint64()
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int {
	return s.rng.IntN(n)
}

// IntRange returns a value in [lo, hi]; hi < lo returns lo.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// Weighted draws an index from weights using a cumulative distribution.
// Negative weights count as zero; if every weight is zero the draw falls back
// to uniform. Returns -1 for an empty slice.
func (s *Stream) Weighted(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	total := 0.0
	for _, w := range weights {
		if w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) {
			total += w
		}
	}
	if total <= 0 {
		return s.rng.IntN(len(weights))
	}

	u := s.rng.Float64()
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			continue
		}
		cumulative += w / total
		last = i
		if u < cumulative {
			return i
		}
	}
	// Rounding can leave u just above the final cumulative value.
	return last
}
