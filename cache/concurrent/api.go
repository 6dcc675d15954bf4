package concurrent

import (
	"context"
	"time"
)

// Cache is a sharded, in-memory key/value cache safe for concurrent use by
// multiple goroutines. Typical operation cost is amortized O(1): a map
// lookup under a shard lock plus the policy's own O(1)/O(log n) work.
type Cache[K comparable, V any] interface {
	// Add inserts k→v only if k is absent, applying DefaultTTL if set.
	// Returns false if the key already existed.
	Add(k K, v V) bool

	// Set inserts or updates k→v, applying DefaultTTL if set, and promotes
	// the entry in the active eviction policy.
	Set(k K, v V)

	// SetWithTTL inserts or updates k→v with a per-key relative TTL. A
	// non-positive ttl disables expiration for this entry.
	SetWithTTL(k K, v V, ttl time.Duration)

	// Get returns the value for k and whether it was present. A hit
	// promotes the entry in the active policy.
	Get(k K) (V, bool)

	// Remove deletes k if present and reports whether it existed.
	Remove(k K) bool

	// Len returns the number of resident entries across all shards.
	Len() int

	// Close marks the cache closed. Afterwards Add, Set, SetWithTTL and
	// Remove do nothing and Get always misses; Len still reports resident
	// entries, and GetOrCompute still calls Loader without storing its
	// result.
	Close() error

	// GetOrCompute returns the value for k, computing it via Config.Loader
	// on a miss. Concurrent misses for the same key are coalesced with
	// singleflight so Loader runs at most once per key at a time.
	GetOrCompute(ctx context.Context, k K) (V, error)
}
