// Package concurrent implements a sharded, lock-per-shard concurrent cache
// with a pluggable cache/evict.Policy, per-entry TTL, singleflight-coalesced
// GetOrCompute, and cost-based capacity limiting. Each shard holds a plain
// map and its own evict.Policy instance rather than an intrusive per-shard
// MRU/LRU list, so ordering lives entirely inside the policy, standalone
// from the shard that calls it.
package concurrent

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/vanyastaff/nebula-memcache/internal/singleflight"
	"github.com/vanyastaff/nebula-memcache/internal/util"
)

// ErrNoLoader is returned by GetOrCompute when no Loader was configured.
var ErrNoLoader = errors.New("concurrent: no loader configured")

type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool
	cfg    Config[K, V]
	sf     singleflight.Group[K, V]
}

// New constructs a sharded cache from cfg. Defaults: nil Metrics =>
// NoopMetrics, nil Policy => LRU, Shards <= 0 => util.ReasonableShardCount;
// an explicit Shards is rounded up to the next power of two. The shard
// count is then halved until it does not exceed Capacity, and Capacity is
// split so the per-shard limits sum to exactly Capacity.
func New[K comparable, V any](cfg Config[K, V]) Cache[K, V] {
	if cfg.Capacity <= 0 {
		panic("concurrent: Capacity must be > 0")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetrics{}
	}
	if cfg.Policy == nil {
		cfg.Policy = LRUPolicy[K]()
	}

	sh := cfg.Shards
	if sh <= 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}
	for sh > 1 && sh > cfg.Capacity {
		sh /= 2
	}
	if sh < 1 {
		sh = 1
	}
	// Resolved back into cfg before it's handed to each shard, so
	// newShard's per-shard MaxCost split divides by the actual shard
	// count rather than the raw, pre-rounding request.
	cfg.Shards = sh

	c := &cache[K, V]{
		hash: util.Fnv64a[K],
		cfg:  cfg,
	}

	cs := make([]*shard[K, V], sh)
	for i := range cs {
		perShardCap := cfg.Capacity / sh
		if i < cfg.Capacity%sh {
			perShardCap++
		}
		cs[i] = newShard[K, V](perShardCap, cfg.Policy, &c.cfg)
	}
	c.shards = cs
	return c
}

func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	h := c.hash(k)
	return c.shards[int(h)&(len(c.shards)-1)]
}

func (c *cache[K, V]) defaultDeadline() int64 {
	if c.cfg.DefaultTTL <= 0 {
		return 0
	}
	return c.deadline(c.cfg.DefaultTTL)
}

func (c *cache[K, V]) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	now := time.Now().UnixNano()
	if c.cfg.Clock != nil {
		now = c.cfg.Clock.NowUnixNano()
	}
	return now + int64(ttl)
}

func (c *cache[K, V]) costOf(v V) int32 {
	if c.cfg.Cost == nil {
		return 0
	}
	iv := c.cfg.Cost(v)
	if iv < 0 {
		iv = 0
	}
	if iv > math.MaxInt32 {
		iv = math.MaxInt32
	}
	return int32(iv)
}

func (c *cache[K, V]) Add(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	return c.getShard(k).Add(k, v, c.defaultDeadline(), c.costOf(v))
}

func (c *cache[K, V]) Set(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.getShard(k).Set(k, v, c.defaultDeadline(), c.costOf(v))
}

func (c *cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	if c.closed.Load() {
		return
	}
	c.getShard(k).Set(k, v, c.deadline(ttl), c.costOf(v))
}

func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.getShard(k).Get(k)
}

func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.getShard(k).Remove(k)
}

func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *cache[K, V]) GetOrCompute(ctx context.Context, k K) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.cfg.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}
	return c.sf.Do(ctx, k, func() (V, error) {
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := c.cfg.Loader(ctx, k)
		if err == nil {
			c.Set(k, v)
		}
		return v, err
	})
}
