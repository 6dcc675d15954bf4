// Package cache implements a single-threaded compute cache: GetOrCompute
// memoizes a fallible producer function per key, evicting under a
// pluggable cache/evict.Policy once Capacity is exceeded, with optional
// per-entry TTL.
//
// The cache is NOT safe for concurrent use by multiple goroutines; callers
// needing that should use cache/concurrent instead, which shards the same
// evict.Policy family behind per-shard locks.
//
// Basic usage
//
//	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 1024})
//	v, err := c.GetOrCompute(ctx, "k", func(ctx context.Context, k string) (int, error) {
//	    return expensiveCompute(k)
//	})
package cache
