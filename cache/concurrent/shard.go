package concurrent

import (
	"sync"
	"time"

	"github.com/vanyastaff/nebula-memcache/cache/evict"
	"github.com/vanyastaff/nebula-memcache/internal/util"
)

// entry is the value a shard stores per key. Ordering lives entirely
// inside the shard's evict.Policy, not in an intrusive node, so entry
// carries no list links.
type entry[V any] struct {
	val  V
	exp  int64 // absolute UnixNano deadline, 0 = none
	cost int32
}

// shard is an independent partition of the cache: its own lock, map, and
// eviction policy instance. Eviction bookkeeping is entirely the policy's
// own responsibility; the shard holds no intrusive MRU/LRU list of its own.
type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	m       map[K]entry[V]
	policy  evict.Policy[K]
	cap     int
	maxCost int64
	cost    int64
	cfg     *Config[K, V]

	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

func newShard[K comparable, V any](capacity int, factory PolicyFactory[K], cfg *Config[K, V]) *shard[K, V] {
	s := &shard[K, V]{
		m:   make(map[K]entry[V], capacity),
		cap: capacity,
		cfg: cfg,
	}
	if cfg.MaxCost > 0 {
		// New resolves cfg.Shards to the actual (power-of-two-rounded)
		// shard count before constructing any shard, so this always
		// divides by the real divisor.
		s.maxCost = (cfg.MaxCost + int64(cfg.Shards) - 1) / int64(cfg.Shards)
	}
	s.policy = factory(capacity)
	return s
}

func (s *shard[K, V]) now() int64 {
	if s.cfg.Clock != nil {
		return s.cfg.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func (s *shard[K, V]) expiredLocked(e entry[V]) bool {
	return e.exp != 0 && s.now() > e.exp
}

// Add inserts a new entry only if absent. Returns false on an existing key.
func (s *shard[K, V]) Add(k K, v V, ttl int64, cost int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[k]; exists {
		return false
	}
	s.m[k] = entry[V]{val: v, exp: ttl, cost: cost}
	s.cost += int64(cost)
	s.policy.RecordInsertion(k)
	s.enforceLimitsLocked()
	return true
}

// Set inserts or updates k→v, promoting it in the eviction policy either
// way (an update counts as recent/frequent use).
func (s *shard[K, V]) Set(k K, v V, ttl int64, cost int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.m[k]; ok {
		s.cost += int64(cost) - int64(old.cost)
	} else {
		s.cost += int64(cost)
	}
	s.m[k] = entry[V]{val: v, exp: ttl, cost: cost}
	s.policy.RecordInsertion(k)
	s.enforceLimitsLocked()
}

// Get returns the value for k, promoting it on a hit. An expired entry is
// evicted lazily and reported as a miss.
func (s *shard[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok {
		s.misses.Add(1)
		s.cfg.Metrics.Miss()
		var zero V
		return zero, false
	}
	if s.expiredLocked(e) {
		s.evictLocked(k, e, EvictTTL)
		s.misses.Add(1)
		s.cfg.Metrics.Miss()
		var zero V
		return zero, false
	}
	s.policy.RecordAccess(k)
	s.hits.Add(1)
	s.cfg.Metrics.Hit()
	return e.val, true
}

// Remove deletes k if present.
func (s *shard[K, V]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[k]
	if !ok {
		return false
	}
	delete(s.m, k)
	s.cost -= int64(e.cost)
	s.policy.RecordRemoval(k)
	return true
}

// Len returns the number of resident entries in this shard.
func (s *shard[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *shard[K, V]) evictLocked(k K, e entry[V], reason EvictReason) {
	delete(s.m, k)
	s.cost -= int64(e.cost)
	if s.cost < 0 {
		s.cost = 0
	}
	s.policy.RecordRemoval(k)
	s.evicts.Add(1)
	s.cfg.Metrics.Evict(reason)
	if cb := s.cfg.OnEvict; cb != nil {
		cb(k, e.val, reason)
	}
}

// enforceLimitsLocked evicts policy-selected victims until both the entry
// count and cost limits are satisfied.
func (s *shard[K, V]) enforceLimitsLocked() {
	for len(s.m) > s.cap {
		victim, ok := s.policy.SelectVictim()
		if !ok {
			break
		}
		if e, exists := s.m[victim]; exists {
			s.evictLocked(victim, e, EvictPolicy)
		} else {
			// Policy bookkeeping drifted from the map; drop the stale
			// entry so this loop can't spin.
			s.policy.RecordRemoval(victim)
		}
	}
	if s.maxCost > 0 {
		for s.cost > s.maxCost {
			victim, ok := s.policy.SelectVictim()
			if !ok {
				break
			}
			if e, exists := s.m[victim]; exists {
				s.evictLocked(victim, e, EvictCapacity)
			} else {
				s.policy.RecordRemoval(victim)
			}
		}
	}
	s.cfg.Metrics.Size(len(s.m), s.cost)
}
