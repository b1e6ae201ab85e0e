// Package pool provides reusable-object caches that keep the solve loop
// allocation-free, plus a process-wide registry of pooled collections.
package pool

import "sync"

// Pool is a thread-safe cache of idle instances of T.
// Take never fails: it reuses a previously returned instance when one is
// available and constructs fresh otherwise. GiveBack clears the instance
// before storing it, so the next Take always hands out a logically empty
// value, and no instance is ever held by two takers at once
type Pool[T any] struct {
	pool  sync.Pool
	clear func(T)
}

// NewPool creates a pool with a constructor and a clear function applied
// on GiveBack
func NewPool[T any](construct func() T, clear func(T)) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any { return construct() },
		},
		clear: clear,
	}
}

// Take returns a ready-to-use, logically empty instance
func (p *Pool[T]) Take() T {
	return p.pool.Get().(T)
}

// GiveBack clears the instance and stores it for reuse.
// The caller must not retain a reference afterward
func (p *Pool[T]) GiveBack(instance T) {
	if p.clear != nil {
		p.clear(instance)
	}
	p.pool.Put(instance)
}
