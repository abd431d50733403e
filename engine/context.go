// Package engine holds the process-level generation state: the master seed
// and the stream derivation bound to it.
//
// There is no ambient global. Callers construct a Context and pass it to the
// middleware; every request reads the seed through it.
package engine

import (
	"math/rand/v2"
	"sync"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/stream"
)

// StreamObserver is notified whenever a root stream is derived.
type StreamObserver interface {
	OnStreamDerived(path []string, masterSeed, derivedSeed int64)
}

// Context owns the master seed.
//
// Re-seeding takes a write lock, but requests already running keep the seed
// they started with. Re-seed between batches if outputs must line up with a
// specific seed.
type Context struct {
	mu        sync.RWMutex
	seed      int64
	observers []StreamObserver
}

// NewContext creates a context with the given master seed.
func NewContext(seed int64) *Context {
	return &Context{seed: seed}
}

// Seed returns the current master seed.
func (c *Context) Seed() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seed
}

// SetSeed replaces the master seed.
func (c *Context) SetSeed(seed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seed = seed
}

// Randomize replaces the master seed with a fresh non-negative value and
// returns it so the run can be replayed later.
func (c *Context) Randomize() int64 {
	seed := rand.Int64()
	c.SetSeed(seed)
	return seed
}

// AddObserver registers a stream observer.
func (c *Context) AddObserver(o StreamObserver) {
	if o == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Derive derives the stream for path under the current master seed.
func (c *Context) Derive(path ...string) *stream.Stream {
	return c.DeriveWithSeed(c.Seed(), path...)
}

// DeriveWithSeed derives the stream for path under an explicit seed without
// touching the master seed.
func (c *Context) DeriveWithSeed(seed int64, path ...string) *stream.Stream {
	s := stream.Derive(seed, path)

	c.mu.RLock()
	observers := c.observers
	c.mu.RUnlock()

	for _, o := range observers {
		o.OnStreamDerived(s.Path(), seed, s.DerivedSeed())
	}
	return s
}
