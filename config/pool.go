package config

import "github.com/vanyastaff/nebula-memcache/pool"

// PoolSection mirrors pool.Config for TOML decoding.
type PoolSection struct {
	InitialCapacity      int      `toml:"initial_capacity"`
	MaxCapacity          *int     `toml:"max_capacity"`
	PreWarm              bool     `toml:"pre_warm"`
	ValidateOnReturn     bool     `toml:"validate_on_return"`
	PressureThresholdPct float64  `toml:"pressure_threshold_pct"`
}

// ToConfig converts the decoded section into a pool.Config.
func (s *PoolSection) ToConfig() pool.Config {
	if s == nil {
		return pool.Config{}
	}
	return pool.Config{
		InitialCapacity:      s.InitialCapacity,
		MaxCapacity:          s.MaxCapacity,
		PreWarm:              s.PreWarm,
		ValidateOnReturn:     s.ValidateOnReturn,
		PressureThresholdPct: s.PressureThresholdPct,
	}
}
