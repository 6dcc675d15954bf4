package allocator

import (
	"github.com/vanyastaff/nebula-memcache/allocator/stats"
	"github.com/vanyastaff/nebula-memcache/internal/obslog"
)

// MonitoredConfig configures Monitored's admission behavior.
type MonitoredConfig struct {
	// MaxHighPressureAlloc / MaxCriticalPressureAlloc cap the request size
	// admitted under PressureActionWarn/ReduceAllocations and
	// PressureActionDenyLargeAllocations/Emergency respectively.
	MaxHighPressureAlloc     int
	MaxCriticalPressureAlloc int

	// FailOnCritical, if true, refuses all allocations while the monitor
	// reports PressureActionEmergency, regardless of size.
	FailOnCritical bool

	// DetailedLogging logs every successful pressure check at Debug level
	// and every size-cap denial at Warn level. With it off, neither is
	// logged; only monitor failures are.
	DetailedLogging bool

	Logger obslog.Logger
}

func (c MonitoredConfig) logger() obslog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return obslog.Discard()
}

// Monitored wraps an Allocator with a PressureMonitor: each allocation is
// weighed against the monitor's current PressureAction before being
// forwarded. Shrinking (handled by the caller passing a smaller size to a
// reallocate-style call) is always admitted; only growth is gated.
//
// Monitor errors degrade open: they are logged and the allocation proceeds
// as if the monitor had returned PressureActionNone, so the core keeps
// functioning even against a flaky or absent monitor.
type Monitored struct {
	inner   Allocator
	monitor PressureMonitor
	cfg     MonitoredConfig

	recorder stats.Recorder
}

var _ Allocator = (*Monitored)(nil)

// NewMonitored wraps inner with pressure-aware admission control driven by
// monitor.
func NewMonitored(inner Allocator, monitor PressureMonitor, cfg MonitoredConfig) *Monitored {
	return &Monitored{
		inner:    inner,
		monitor:  monitor,
		cfg:      cfg,
		recorder: &stats.AtomicStats{},
	}
}

func capFor(action PressureAction, cfg MonitoredConfig) (limit int, limited bool) {
	switch action {
	case PressureActionWarn, PressureActionReduceAllocations, PressureActionForceCleanup:
		if cfg.MaxHighPressureAlloc > 0 {
			return cfg.MaxHighPressureAlloc, true
		}
	case PressureActionDenyLargeAllocations, PressureActionEmergency:
		if cfg.MaxCriticalPressureAlloc > 0 {
			return cfg.MaxCriticalPressureAlloc, true
		}
	}
	return 0, false
}

// Allocate asks the monitor for the current pressure action, compares the
// request to the relevant cap, and either denies (recording a failure and
// returning DeniedByPressure) or forwards to the inner allocator.
func (m *Monitored) Allocate(size, align int) ([]byte, error) {
	action := PressureActionNone
	if m.monitor != nil {
		info, a, err := m.monitor.CheckPressure()
		if err != nil {
			m.cfg.logger().Warn("pressure monitor failed, degrading open", map[string]any{"error": err.Error()})
		} else {
			action = a
			if m.cfg.DetailedLogging {
				m.cfg.logger().Debug("pressure check", map[string]any{
					"action": action.String(), "used_bytes": info.UsedBytes, "size": size,
				})
			}
		}
	}

	if action == PressureActionEmergency && m.cfg.FailOnCritical {
		m.recorder.RecordFailure()
		return nil, NewDeniedByPressure(size, align)
	}

	if limit, limited := capFor(action, m.cfg); limited && size > limit {
		m.recorder.RecordFailure()
		if m.cfg.DetailedLogging {
			m.cfg.logger().Warn("allocation denied by pressure", map[string]any{
				"action": action.String(), "size": size, "limit": limit,
			})
		}
		return nil, NewDeniedByPressure(size, align)
	}

	region, err := m.inner.Allocate(size, align)
	if err != nil {
		m.recorder.RecordFailure()
		return nil, err
	}
	m.recorder.RecordAllocation(uint64(len(region)))
	return region, nil
}

// Deallocate is always admitted ("shrink is always admitted" per spec) and
// simply forwards.
func (m *Monitored) Deallocate(p []byte) {
	m.inner.Deallocate(p)
	m.recorder.RecordDeallocation(uint64(len(p)))
}

// Stats returns Monitored's own admit/deny-aware counters.
func (m *Monitored) Stats() stats.Snapshot { return m.recorder.Snapshot() }

// GlobalAllocAdapter exposes a GlobalAlloc-style surface (size/align in,
// byte regions out, a boolean instead of a null pointer on failure) so a
// host program can install a Monitored allocator as its own allocation
// front door if it chooses. Go has no pluggable global allocator, so this
// is a contract a caller's own allocation-heavy code calls into directly,
// not a runtime hook.
type GlobalAllocAdapter struct {
	alloc Allocator
}

// NewGlobalAllocAdapter wraps any Allocator (typically a Monitored or
// Tracked) behind the GlobalAlloc-style surface.
func NewGlobalAllocAdapter(alloc Allocator) *GlobalAllocAdapter {
	return &GlobalAllocAdapter{alloc: alloc}
}

// Alloc returns the allocated region and true, or nil and false on failure.
func (g *GlobalAllocAdapter) Alloc(size, align int) ([]byte, bool) {
	region, err := g.alloc.Allocate(size, align)
	if err != nil {
		return nil, false
	}
	return region, true
}

// Dealloc forwards to the wrapped allocator's Deallocate.
func (g *GlobalAllocAdapter) Dealloc(p []byte) { g.alloc.Deallocate(p) }

// Realloc allocates a new region of newSize and copies over min(len(old),
// newSize) bytes; it does not attempt in-place growth, since the wrapped
// allocators (bump in particular) cannot support that. Returns nil, false
// on failure, leaving old untouched.
func (g *GlobalAllocAdapter) Realloc(old []byte, align, newSize int) ([]byte, bool) {
	next, err := g.alloc.Allocate(newSize, align)
	if err != nil {
		return nil, false
	}
	n := copy(next, old)
	_ = n
	return next, true
}
