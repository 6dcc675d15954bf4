package config

import "github.com/vanyastaff/nebula-memcache/allocator/bump"

// BumpSection mirrors bump.Config for TOML decoding.
type BumpSection struct {
	Capacity         int   `toml:"capacity"`
	ThreadSafe       bool  `toml:"thread_safe"`
	MinAllocSize     int   `toml:"min_alloc_size"`
	TrackStats       bool  `toml:"track_stats"`
	EnablePrefetch   bool  `toml:"enable_prefetch"`
	PrefetchDistance int   `toml:"prefetch_distance"`
	MaxCASRetries    int   `toml:"max_cas_retries"`
	AllocPattern     *byte `toml:"alloc_pattern"`
	DeallocPattern   *byte `toml:"dealloc_pattern"`
}

// ToConfig converts the decoded section into a bump.Config.
func (s *BumpSection) ToConfig() bump.Config {
	if s == nil {
		return bump.Config{}
	}
	return bump.Config{
		Capacity:         s.Capacity,
		ThreadSafe:       s.ThreadSafe,
		MinAllocSize:     s.MinAllocSize,
		TrackStats:       s.TrackStats,
		EnablePrefetch:   s.EnablePrefetch,
		PrefetchDistance: s.PrefetchDistance,
		MaxCASRetries:    s.MaxCASRetries,
		AllocPattern:     s.AllocPattern,
		DeallocPattern:   s.DeallocPattern,
	}
}
