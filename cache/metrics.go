package cache

import "time"

// Metrics is a single-threaded cache's own bookkeeping: plain counters, not
// atomics, since the cache is single-threaded by contract.
type Metrics struct {
	Hits             uint64
	Misses           uint64
	Insertions       uint64
	Updates          uint64
	Evictions        uint64
	Expirations      uint64
	ExpiredCleanups  uint64
	PeakSize         int
	ComputeTimeTotal time.Duration
}

// HitRate returns Hits/(Hits+Misses), or 0 with no traffic yet.
func (m Metrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

// MissRate returns 1 - HitRate.
func (m Metrics) MissRate() float64 {
	return 1 - m.HitRate()
}

// AvgComputeTime returns ComputeTimeTotal/Misses: the average producer
// runtime per cache miss resolved through GetOrCompute. Hits never invoke a
// producer, so only misses count toward the average.
func (m Metrics) AvgComputeTime() time.Duration {
	if m.Misses == 0 {
		return 0
	}
	return m.ComputeTimeTotal / time.Duration(m.Misses)
}

// EvictionRate returns Evictions/(Hits+Misses).
func (m Metrics) EvictionRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Evictions) / float64(total)
}

// EfficiencyScore combines hit rate and producer latency into a single
// 0-100 score: hit rate (as a percentage) minus a penalty for slow
// producers, clamped to [0, 100]. The penalty is capped at 50 points so a
// pathologically slow producer can't drive the score negative on its own.
func (m Metrics) EfficiencyScore() float64 {
	avgMs := float64(m.AvgComputeTime()) / float64(time.Millisecond)
	penalty := avgMs / 10
	if penalty > 50 {
		penalty = 50
	}
	score := m.HitRate()*100 - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PerformanceReport summarizes a Cache's current effectiveness, including
// recommended actions when a metric looks unhealthy.
type PerformanceReport struct {
	Hits             uint64
	Misses           uint64
	HitRate          float64
	MissRate         float64
	Size             int
	Capacity         int
	LoadFactor       float64
	Evictions        uint64
	EvictionRate     float64
	Expirations      uint64
	ExpiredCleanups  uint64
	Insertions       uint64
	Updates          uint64
	PeakSize         int
	ComputeTimeTotal time.Duration
	AvgComputeTime   time.Duration
	EfficiencyScore  float64
	Recommendations []string
}

// recommendations evaluates m against fixed health thresholds and returns
// one suggestion per threshold crossed, in the order checked.
func recommendations(m Metrics) []string {
	var out []string
	if total := m.Hits + m.Misses; total > 0 && m.HitRate() < 0.6 {
		out = append(out, "increase size or change policy")
	}
	if m.EvictionRate() > 0.2 {
		out = append(out, "increase max_entries")
	}
	if avgMs := float64(m.AvgComputeTime()) / float64(time.Millisecond); avgMs > 100 {
		out = append(out, "optimize producer")
	}
	if (m.Hits+m.Misses) > 0 && m.EfficiencyScore() < 50 {
		out = append(out, "review config")
	}
	return out
}
