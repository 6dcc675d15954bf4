// Package concurrent provides a sharded, generic, concurrency-safe cache
// with a pluggable eviction policy (LRU by default), per-entry TTL,
// singleflight-coalesced loading, lightweight metrics hooks, and
// cost-based capacity.
//
// Design
//
//   - Concurrency: the cache is split into shards, each protected by its
//     own RWMutex. The default shard count is chosen by a heuristic
//     (ReasonableShardCount) and is a power of two.
//
//   - Storage: each shard keeps a plain map[K]entry for lookups; ordering
//     for eviction purposes lives entirely inside the shard's own
//     cache/evict.Policy instance, not in an intrusive list.
//
//   - Policies: any cache/evict.Policy works here via a PolicyFactory,
//     including the meta-policy Adaptive.
//
//   - TTL: entries may carry a per-item deadline (UnixNano); expiration is
//     lazy, checked on read.
//
//   - Cost/MaxCost: besides entry count (Capacity), a per-value cost
//     function can be supplied and a global MaxCost enforced; shards split
//     the budget evenly.
//
//   - GetOrCompute: coalesces concurrent misses for the same key with
//     singleflight.
//
// Basic usage
//
//	c := concurrent.New[string, []byte](concurrent.Config[string, []byte]{Capacity: 10_000})
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
package concurrent
