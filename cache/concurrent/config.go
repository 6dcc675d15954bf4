package concurrent

import (
	"context"
	"time"

	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

// EvictReason explains why an entry left the cache.
type EvictReason int

const (
	// EvictPolicy means the active eviction policy chose this entry.
	EvictPolicy EvictReason = iota
	// EvictTTL means the entry had expired (lazy eviction on access).
	EvictTTL
	// EvictCapacity means the entry was removed to satisfy a cost limit.
	EvictCapacity
)

// Metrics exposes cache-level observability hooks. A NoopMetrics
// implementation is used by default; metrics/prom provides a Prometheus
// adapter.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, cost int64)
}

// NoopMetrics discards every signal.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                  {}
func (NoopMetrics) Miss()                 {}
func (NoopMetrics) Evict(EvictReason)      {}
func (NoopMetrics) Size(_ int, _ int64)    {}

// Clock provides time in UnixNano; overriding it makes TTL behavior
// deterministic in tests.
type Clock interface{ NowUnixNano() int64 }

// PolicyFactory constructs a fresh eviction policy instance bound to a
// shard's own capacity. Each shard gets an independent policy instance;
// policies never coordinate across shards.
type PolicyFactory[K comparable] func(shardCapacity int) evict.Policy[K]

// LRUPolicy is the default PolicyFactory.
func LRUPolicy[K comparable]() PolicyFactory[K] {
	return func(int) evict.Policy[K] { return evict.NewLRU[K]() }
}

// Config configures a sharded concurrent Cache. Zero values are safe;
// New applies defaults (nil Policy => LRU, Shards <= 0 => auto power of
// two, nil Metrics => NoopMetrics).
type Config[K comparable, V any] struct {
	// Capacity is the total entry count limit, split across shards as
	// evenly as integer division allows (per-shard limits sum to Capacity).
	Capacity int

	// Shards sets the shard count, rounded up to a power of two; 0 picks
	// an automatic value (~2*GOMAXPROCS, rounded to the next power of two,
	// at most 256). Either way the count is halved until it does not
	// exceed Capacity.
	Shards int

	// Policy builds each shard's eviction policy; nil defaults to LRU.
	Policy PolicyFactory[K]

	// DefaultTTL applies to Add/Set when no per-key TTL is given.
	DefaultTTL time.Duration

	// Cost computes a per-entry weight; nil gives every entry cost 0.
	Cost func(v V) int
	// MaxCost bounds total cost per shard (split evenly); 0 disables it.
	MaxCost int64

	// Loader fetches a value on a GetOrCompute miss.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called under the shard lock for every eviction; keep it
	// lightweight.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	// Clock overrides the time source; nil uses time.Now.
	Clock Clock
}
