// Package resourcepool is a thin example consumer showing how a resource
// manager (connection pools, worker buffers, anything expensive to
// construct) sits on top of pool.Pool: Get/TryGet for checkout, Reserve to
// pre-warm, ShrinkTo to release idle capacity back under memory pressure,
// and Stats for observability.
package resourcepool

import "github.com/vanyastaff/nebula-memcache/pool"

// Manager hands out pool.Poolable resources and tracks how often the pool
// had to construct a fresh one versus reuse an idle one.
type Manager[T pool.Poolable] struct {
	pool *pool.Pool[T]
}

// NewManager wraps capacity/factory in a Pool and a Manager.
func NewManager[T pool.Poolable](capacity int, factory func() T) *Manager[T] {
	return &Manager[T]{pool: pool.New(capacity, factory)}
}

// NewManagerWithConfig wraps an explicit pool.Config.
func NewManagerWithConfig[T pool.Poolable](cfg pool.Config, factory func() T) (*Manager[T], error) {
	p, err := pool.WithConfig(cfg, factory)
	if err != nil {
		return nil, err
	}
	return &Manager[T]{pool: p}, nil
}

// Acquire checks out a resource, blocking on none of pool.Pool's own
// operations (Get is non-blocking; it either reuses or constructs).
func (m *Manager[T]) Acquire() (*pool.Handle[T], error) { return m.pool.Get() }

// TryAcquire checks out a resource only if one is already idle.
func (m *Manager[T]) TryAcquire() (*pool.Handle[T], bool) { return m.pool.TryGet() }

// Warm pre-constructs n idle resources ahead of demand.
func (m *Manager[T]) Warm(n int) error { return m.pool.Reserve(n) }

// Shrink releases idle resources down to at most n, e.g. in response to a
// pressure signal.
func (m *Manager[T]) Shrink(n int) { m.pool.ShrinkTo(n) }

// Stats reports the pool's lifetime counters.
func (m *Manager[T]) Stats() pool.Stats { return m.pool.Stats() }

// Idle reports the number of resources currently available for reuse.
func (m *Manager[T]) Idle() int { return m.pool.Idle() }
