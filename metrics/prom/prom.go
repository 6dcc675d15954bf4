// Package prom adapts this module's metrics to Prometheus: cache hit/miss/
// evict counters and size gauges, plus gauges for the allocator's stats
// and the object pool's idle count.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanyastaff/nebula-memcache/allocator/stats"
	"github.com/vanyastaff/nebula-memcache/cache/concurrent"
	"github.com/vanyastaff/nebula-memcache/pool"
)

// Adapter implements cache/concurrent.Metrics and exports Prometheus
// counters/gauges for the cache, plus standalone report methods for the
// allocator and pool, which have no hook-based Metrics interface of their
// own (their stats are pull-based snapshots, not push-based events).
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   *prometheus.CounterVec
	sizeEnt  prometheus.Gauge
	sizeCost prometheus.Gauge

	allocBytes     prometheus.Gauge
	allocPeakBytes prometheus.Gauge
	allocFailures  prometheus.Gauge

	poolIdle   prometheus.Gauge
	poolHits   prometheus.Gauge
	poolMisses prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		sizeCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_cost",
			Help:        "Total resident cost",
			ConstLabels: constLabels,
		}),
		allocBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "allocator_bytes_allocated",
			Help:        "Bytes currently allocated (allocated minus deallocated)",
			ConstLabels: constLabels,
		}),
		allocPeakBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "allocator_bytes_peak",
			Help:        "Peak bytes allocated since the last stats reset",
			ConstLabels: constLabels,
		}),
		allocFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "allocator_failures_total",
			Help:        "Cumulative allocation requests that failed",
			ConstLabels: constLabels,
		}),
		poolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "pool_idle_objects",
			Help:        "Number of idle pooled objects available for reuse",
			ConstLabels: constLabels,
		}),
		poolHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "pool_hits_total",
			Help:        "Cumulative pool Get/TryGet calls satisfied from the idle list",
			ConstLabels: constLabels,
		}),
		poolMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "pool_misses_total",
			Help:        "Cumulative pool Get/TryGet calls that had to construct a new object",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(
		a.hits, a.misses, a.evicts, a.sizeEnt, a.sizeCost,
		a.allocBytes, a.allocPeakBytes, a.allocFailures,
		a.poolIdle, a.poolHits, a.poolMisses,
	)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r concurrent.EvictReason) {
	a.evicts.WithLabelValues(reason(r)).Inc()
}

// Size updates gauges for the number of entries and total cost.
func (a *Adapter) Size(entries int, cost int64) {
	a.sizeEnt.Set(float64(entries))
	a.sizeCost.Set(float64(cost))
}

// reason maps EvictReason to a stable label value.
func reason(r concurrent.EvictReason) string {
	switch r {
	case concurrent.EvictTTL:
		return "ttl"
	case concurrent.EvictCapacity:
		return "capacity"
	default:
		return "policy"
	}
}

// ReportAllocator copies an allocator snapshot into the allocator gauges.
// It is pull-based rather than hook-driven, since allocator.Stats has no
// notion of a registered observer; callers scrape it periodically (e.g.
// alongside a Prometheus /metrics handler tick).
func (a *Adapter) ReportAllocator(snap stats.Snapshot) {
	a.allocBytes.Set(float64(snap.AllocatedBytes()))
	a.allocPeakBytes.Set(float64(snap.PeakAllocatedBytes))
	a.allocFailures.Set(float64(snap.FailedAllocations))
}

// ReportPool copies a pool's current idle count and lifetime Stats into
// the pool gauges, for the same pull-based reason as ReportAllocator.
func (a *Adapter) ReportPool(idle int, s pool.Stats) {
	a.poolIdle.Set(float64(idle))
	a.poolHits.Set(float64(s.Hits))
	a.poolMisses.Set(float64(s.Misses))
}

// Compile-time check: ensure Adapter implements cache/concurrent.Metrics.
var _ concurrent.Metrics = (*Adapter)(nil)
