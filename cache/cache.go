// Package cache implements a single-threaded compute cache: GetOrCompute
// memoizes an expensive function per key under a pluggable cache/evict
// eviction policy, with optional per-entry TTL. It is not safe for
// concurrent use by multiple goroutines — see cache/concurrent for a
// sharded variant that is.
//
// It strips sharding and its lock down to a plain map, keeping GetOrCompute
// as a memoizing wrapper around a fallible producer.
package cache

import (
	"context"
	"time"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

type entry[V any] struct {
	val       V
	expiresAt time.Time // zero means no expiry
}

// Cache is a single-threaded, capacity-bounded key/value store with
// pluggable eviction and optional per-entry TTL.
type Cache[K comparable, V any] struct {
	cfg     Config[K, V]
	m       map[K]entry[V]
	policy  evict.Policy[K]
	metrics Metrics
}

// New constructs a Cache from cfg, applying defaults (nil Policy => LRU,
// nil Clock => evict.SystemClock).
func New[K comparable, V any](cfg Config[K, V]) (*Cache[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Cache[K, V]{
		cfg:    cfg,
		m:      make(map[K]entry[V], cfg.InitialCapacity),
		policy: cfg.Policy(cfg.Capacity),
	}, nil
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && c.cfg.Clock.Now().After(e.expiresAt)
}

// Get returns the value for k and whether it was present and unexpired. A
// hit promotes k in the active policy; an expired entry is evicted lazily.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	e, ok := c.m[k]
	if !ok {
		c.metrics.Misses++
		var zero V
		return zero, false
	}
	if c.expired(e) {
		c.removeLocked(k)
		c.metrics.Expirations++
		c.metrics.Misses++
		var zero V
		return zero, false
	}
	c.policy.RecordAccess(k)
	c.metrics.Hits++
	return e.val, true
}

// ContainsKey reports presence without promoting the entry or counting a
// hit/miss, and without evicting an expired entry (it answers as of now,
// but leaves removal to the next Get/CleanupExpired).
func (c *Cache[K, V]) ContainsKey(k K) bool {
	e, ok := c.m[k]
	return ok && !c.expired(e)
}

// Insert unconditionally sets k→v, applying DefaultTTL if configured, and
// promotes the entry in the active policy.
func (c *Cache[K, V]) Insert(k K, v V) {
	c.InsertWithTTL(k, v, c.cfg.DefaultTTL)
}

// InsertWithTTL sets k→v with a per-key relative TTL; a non-positive ttl
// disables expiration for this entry regardless of DefaultTTL.
func (c *Cache[K, V]) InsertWithTTL(k K, v V, ttl time.Duration) {
	var deadline time.Time
	if ttl > 0 {
		deadline = c.cfg.Clock.Now().Add(ttl)
	}
	if _, exists := c.m[k]; exists {
		c.metrics.Updates++
	} else {
		c.metrics.Insertions++
	}
	c.m[k] = entry[V]{val: v, expiresAt: deadline}
	c.policy.RecordInsertion(k)
	c.enforceCapacity()
	if c.cfg.TrackMetrics && len(c.m) > c.metrics.PeakSize {
		c.metrics.PeakSize = len(c.m)
	}
}

// Remove deletes k if present and reports whether it existed.
func (c *Cache[K, V]) Remove(k K) bool {
	if _, ok := c.m[k]; !ok {
		return false
	}
	c.removeLocked(k)
	return true
}

func (c *Cache[K, V]) removeLocked(k K) {
	delete(c.m, k)
	c.policy.RecordRemoval(k)
}

// Keys returns a snapshot of every resident key, in unspecified order.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.m))
	for k := range c.m {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of resident entries, including any not-yet-swept
// expired ones.
func (c *Cache[K, V]) Len() int { return len(c.m) }

// IsEmpty reports whether the cache currently holds no entries.
func (c *Cache[K, V]) IsEmpty() bool { return len(c.m) == 0 }

// Capacity returns the configured entry limit.
func (c *Cache[K, V]) Capacity() int { return c.cfg.Capacity }

// LoadFactor returns Len()/Capacity(), in [0, 1].
func (c *Cache[K, V]) LoadFactor() float64 {
	if c.cfg.Capacity == 0 {
		return 0
	}
	return float64(len(c.m)) / float64(c.cfg.Capacity)
}

// Report summarizes the cache's current effectiveness, including
// recommended actions derived from its metrics.
func (c *Cache[K, V]) Report() PerformanceReport {
	m := c.metrics
	return PerformanceReport{
		Hits:             m.Hits,
		Misses:           m.Misses,
		HitRate:          m.HitRate(),
		MissRate:         m.MissRate(),
		Size:             len(c.m),
		Capacity:         c.cfg.Capacity,
		LoadFactor:       c.LoadFactor(),
		Evictions:        m.Evictions,
		EvictionRate:     m.EvictionRate(),
		Expirations:      m.Expirations,
		ExpiredCleanups:  m.ExpiredCleanups,
		Insertions:       m.Insertions,
		Updates:          m.Updates,
		PeakSize:         m.PeakSize,
		ComputeTimeTotal: m.ComputeTimeTotal,
		AvgComputeTime:   m.AvgComputeTime(),
		EfficiencyScore:  m.EfficiencyScore(),
		Recommendations:  recommendations(m),
	}
}

// enforceCapacity evicts policy-selected victims until the cache is back
// at or under capacity.
func (c *Cache[K, V]) enforceCapacity() {
	for len(c.m) > c.cfg.Capacity {
		victim, ok := c.policy.SelectVictim()
		if !ok {
			return
		}
		if _, exists := c.m[victim]; exists {
			delete(c.m, victim)
			c.policy.RecordRemoval(victim)
			c.metrics.Evictions++
		} else {
			c.policy.RecordRemoval(victim)
		}
	}
}

// CleanupExpired sweeps every resident entry and evicts the expired ones,
// returning how many were removed. Useful for bounding memory between
// Gets when a cache is rarely read but frequently written.
func (c *Cache[K, V]) CleanupExpired() int {
	removed := 0
	for k, e := range c.m {
		if c.expired(e) {
			c.removeLocked(k)
			c.metrics.Expirations++
			removed++
		}
	}
	c.metrics.ExpiredCleanups += uint64(removed)
	return removed
}

// GetOrCompute returns the cached value for k, or calls compute on a miss,
// storing and returning its result. A producer error is wrapped as
// allocator.ErrProducerError-kinded and nothing is cached.
func (c *Cache[K, V]) GetOrCompute(ctx context.Context, k K, compute func(context.Context, K) (V, error)) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	start := time.Now()
	v, err := compute(ctx, k)
	if c.cfg.TrackMetrics {
		c.metrics.ComputeTimeTotal += time.Since(start)
	}
	if err != nil {
		c.cfg.Logger.Warn("compute producer failed", map[string]any{"error": err.Error()})
		var zero V
		return zero, allocator.NewProducerError(err)
	}
	c.Insert(k, v)
	return v, nil
}

// GetOrComputeBatch resolves every key via GetOrCompute, in order, and
// stops at the first producer error (the single-threaded contract rules
// out running producers concurrently here; cache/concurrent is the place
// for that).
func (c *Cache[K, V]) GetOrComputeBatch(ctx context.Context, keys []K, compute func(context.Context, K) (V, error)) (map[K]V, error) {
	out := make(map[K]V, len(keys))
	for _, k := range keys {
		v, err := c.GetOrCompute(ctx, k, compute)
		if err != nil {
			return out, err
		}
		out[k] = v
	}
	return out, nil
}

// WarmUp populates the cache for every key via compute, ignoring keys
// already resident. It returns the first producer error encountered but
// keeps every successfully computed entry.
func (c *Cache[K, V]) WarmUp(ctx context.Context, keys []K, compute func(context.Context, K) (V, error)) error {
	for _, k := range keys {
		if c.ContainsKey(k) {
			continue
		}
		v, err := compute(ctx, k)
		if err != nil {
			c.cfg.Logger.Warn("warm-up producer failed", map[string]any{"error": err.Error()})
			return allocator.NewProducerError(err)
		}
		c.Insert(k, v)
	}
	return nil
}
