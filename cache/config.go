package cache

import (
	"strings"
	"time"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/cache/evict"
	"github.com/vanyastaff/nebula-memcache/internal/obslog"
)

// PolicyFactory builds a fresh eviction policy bound to a cache's capacity.
type PolicyFactory[K comparable] func(capacity int) evict.Policy[K]

// Config configures a single-threaded Cache. Zero values are safe for
// everything except Capacity, which must be positive.
type Config[K comparable, V any] struct {
	// Capacity bounds the number of resident entries.
	Capacity int

	// Policy builds the eviction policy; nil defaults to LRU.
	Policy PolicyFactory[K]

	// DefaultTTL applies to Insert when no per-key TTL is given; 0 disables
	// expiration by default.
	DefaultTTL time.Duration

	// Clock overrides the time source; nil uses evict.SystemClock.
	Clock evict.Clock

	// Logger receives a Warn on every GetOrCompute/WarmUp producer error;
	// nil discards these (the default obslog.Discard()).
	Logger obslog.Logger

	// InitialCapacity sizes the backing map's initial allocation; 0
	// defaults to Capacity. Must not exceed Capacity.
	InitialCapacity int

	// LoadFactor is a declarative knob, validated to [0.1, 0.95]; 0
	// defaults to 0.75. The cache itself does not read it: neither
	// eviction nor the backing map's initial allocation (sized by
	// InitialCapacity) depends on it.
	LoadFactor float64

	// TrackMetrics gates the metrics that cost more than a counter
	// increment to maintain (ComputeTimeTotal, PeakSize). Hits, Misses,
	// Insertions, Updates, Evictions, and Expirations are always tracked.
	TrackMetrics bool

	// AutoCleanup declares that an external scheduler should call
	// CleanupExpired every CleanupInterval; the cache itself never spawns
	// a goroutine to do this, since it is single-threaded by contract.
	AutoCleanup bool

	// CleanupInterval is the cadence an AutoCleanup scheduler should use.
	// Must be less than DefaultTTL when both are set.
	CleanupInterval time.Duration
}

func (c Config[K, V]) validate() error {
	if c.Capacity <= 0 {
		return allocator.NewInvalidConfiguration("cache: capacity must be > 0")
	}
	if c.InitialCapacity > c.Capacity {
		return allocator.NewInvalidConfiguration("cache: initial_capacity must be <= capacity")
	}
	if c.LoadFactor != 0 && (c.LoadFactor < 0.1 || c.LoadFactor > 0.95) {
		return allocator.NewInvalidConfiguration("cache: load_factor must be in [0.1, 0.95]")
	}
	if c.CleanupInterval > 0 && c.DefaultTTL > 0 && c.CleanupInterval >= c.DefaultTTL {
		return allocator.NewInvalidConfiguration("cache: cleanup_interval must be < ttl when both are set")
	}
	if c.Policy != nil {
		probe := c.Policy(1)
		if strings.HasPrefix(probe.Name(), string(evict.KindTTL)) && c.DefaultTTL <= 0 {
			return allocator.NewInvalidConfiguration("cache: policy=TTL requires a positive DefaultTTL")
		}
	}
	return nil
}

func (c Config[K, V]) withDefaults() Config[K, V] {
	if c.Policy == nil {
		c.Policy = func(int) evict.Policy[K] { return evict.NewLRU[K]() }
	}
	if c.Clock == nil {
		c.Clock = evict.SystemClock
	}
	if c.Logger == nil {
		c.Logger = obslog.Discard()
	}
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = c.Capacity
	}
	if c.LoadFactor == 0 {
		c.LoadFactor = 0.75
	}
	return c
}

// PresetHighThroughput favors resisting one-off scans over raw recency: a
// large capacity and load factor driven by LFU, with metrics on to watch
// hit rate under load.
func PresetHighThroughput[K comparable, V any](capacity int) Config[K, V] {
	return Config[K, V]{
		Capacity:     capacity,
		Policy:       func(int) evict.Policy[K] { return evict.NewLFU[K]() },
		TrackMetrics: true,
		LoadFactor:   0.9,
	}
}

// PresetMemoryConstrained favors a small footprint under a tight capacity:
// LRU, a low load factor, and auto-cleanup so idle expired entries don't
// linger.
func PresetMemoryConstrained[K comparable, V any](capacity int) Config[K, V] {
	return Config[K, V]{
		Capacity:    capacity,
		Policy:      func(int) evict.Policy[K] { return evict.NewLRU[K]() },
		LoadFactor:  0.3,
		AutoCleanup: true,
	}
}

// PresetTimeSensitive expires entries after ttl, falling back to LRU among
// not-yet-expired entries when capacity pressure hits before expiry does,
// with auto-cleanup recommended every ttl/4.
func PresetTimeSensitive[K comparable, V any](capacity int, ttl time.Duration) Config[K, V] {
	return Config[K, V]{
		Capacity:        capacity,
		DefaultTTL:      ttl,
		Policy:          func(int) evict.Policy[K] { return evict.NewTTL[K](ttl, nil, nil) },
		AutoCleanup:     true,
		CleanupInterval: ttl / 4,
	}
}

// PresetEmbedded favors the cheapest possible bookkeeping for
// resource-constrained hosts: FIFO, no recency or frequency tracking, no
// metrics beyond the always-on counters, a low load factor, and a small
// initial map allocation.
func PresetEmbedded[K comparable, V any](capacity int) Config[K, V] {
	initial := capacity
	if initial > 8 {
		initial = 8
	}
	return Config[K, V]{
		Capacity:        capacity,
		Policy:          func(int) evict.Policy[K] { return evict.NewFIFO[K]() },
		LoadFactor:      0.3,
		InitialCapacity: initial,
	}
}
