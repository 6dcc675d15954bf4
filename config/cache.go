package config

import (
	"fmt"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/cache"
	"github.com/vanyastaff/nebula-memcache/cache/concurrent"
	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

// CacheSection configures either cache variant for TOML decoding. Shards
// is ignored by the single-threaded cache and defaults to an automatic
// value for the concurrent one when left at 0.
type CacheSection struct {
	Capacity        int     `toml:"capacity"`
	Shards          int     `toml:"shards"`
	Policy          string  `toml:"policy"`
	DefaultTTL      string  `toml:"default_ttl"`
	MaxCost         int64   `toml:"max_cost"`
	InitialCapacity int     `toml:"initial_capacity"`
	LoadFactor      float64 `toml:"load_factor"`
	TrackMetrics    bool    `toml:"track_metrics"`
	AutoCleanup     bool    `toml:"auto_cleanup"`
	CleanupInterval string  `toml:"cleanup_interval"`
}

// Policy kind names accepted by the "policy" TOML key: the lower-case
// forms of cache/evict.Kind's string values.
const (
	PolicyLRU      = "lru"
	PolicyLFU      = "lfu"
	PolicyFIFO     = "fifo"
	PolicyRandom   = "random"
	PolicyTTL      = "ttl"
	PolicyARC      = "arc"
	PolicyAdaptive = "adaptive"
)

func newPolicy[K comparable](kind string, ttl func() (string, error)) (func(int) evict.Policy[K], error) {
	switch kind {
	case "", PolicyLRU:
		return func(int) evict.Policy[K] { return evict.NewLRU[K]() }, nil
	case PolicyLFU:
		return func(int) evict.Policy[K] { return evict.NewLFU[K]() }, nil
	case PolicyFIFO:
		return func(int) evict.Policy[K] { return evict.NewFIFO[K]() }, nil
	case PolicyRandom:
		return func(int) evict.Policy[K] { return evict.NewRandom[K]() }, nil
	case PolicyARC:
		return func(capacity int) evict.Policy[K] { return evict.NewARC[K](capacity) }, nil
	case PolicyAdaptive:
		return func(capacity int) evict.Policy[K] { return evict.NewAdaptive[K](capacity) }, nil
	case PolicyTTL:
		ttlStr, err := ttl()
		if err != nil {
			return nil, err
		}
		d, err := parseDuration(ttlStr)
		if err != nil {
			return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid default_ttl: %v", err))
		}
		return func(int) evict.Policy[K] { return evict.NewTTL[K](d, nil, nil) }, nil
	default:
		return nil, allocator.NewInvalidConfiguration(fmt.Sprintf("config: unknown cache policy %q", kind))
	}
}

// ToCacheConfig converts the decoded section into a single-threaded
// cache.Config. A nil section yields cache.Config{}'s zero value, which
// cache.New rejects (Capacity must be > 0) — callers are expected to fall
// back to a cache preset when Cache is absent from the document.
func ToCacheConfig[K comparable, V any](s *CacheSection) (cache.Config[K, V], error) {
	var zero cache.Config[K, V]
	if s == nil {
		return zero, nil
	}
	ttl, err := parseDuration(s.DefaultTTL)
	if err != nil {
		return zero, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid default_ttl: %v", err))
	}
	factory, err := newPolicy[K](s.Policy, func() (string, error) { return s.DefaultTTL, nil })
	if err != nil {
		return zero, err
	}
	cleanupInterval, err := parseDuration(s.CleanupInterval)
	if err != nil {
		return zero, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid cleanup_interval: %v", err))
	}
	return cache.Config[K, V]{
		Capacity:        s.Capacity,
		Policy:          factory,
		DefaultTTL:      ttl,
		InitialCapacity: s.InitialCapacity,
		LoadFactor:      s.LoadFactor,
		TrackMetrics:    s.TrackMetrics,
		AutoCleanup:     s.AutoCleanup,
		CleanupInterval: cleanupInterval,
	}, nil
}

// ToConcurrentConfig converts the decoded section into a sharded
// concurrent.Config.
func ToConcurrentConfig[K comparable, V any](s *CacheSection) (concurrent.Config[K, V], error) {
	var zero concurrent.Config[K, V]
	if s == nil {
		return zero, nil
	}
	ttl, err := parseDuration(s.DefaultTTL)
	if err != nil {
		return zero, allocator.NewInvalidConfiguration(fmt.Sprintf("config: invalid default_ttl: %v", err))
	}
	factory, err := newPolicy[K](s.Policy, func() (string, error) { return s.DefaultTTL, nil })
	if err != nil {
		return zero, err
	}
	return concurrent.Config[K, V]{
		Capacity:   s.Capacity,
		Shards:     s.Shards,
		Policy:     factory,
		DefaultTTL: ttl,
		MaxCost:    s.MaxCost,
	}, nil
}
