// Package stats provides allocation-statistics primitives shared by every
// allocator wrapper in this module: a mutex-guarded variant, a lock-free
// atomic variant, and an Optional wrapper that can disable counting
// entirely for latency-critical paths.
package stats

import (
	"sync"

	"github.com/vanyastaff/nebula-memcache/internal/util"
)

// Snapshot is an immutable point-in-time view of allocation counters.
type Snapshot struct {
	AllocationCount     uint64
	DeallocationCount   uint64
	ReallocationCount   uint64
	FailedAllocations   uint64
	TotalBytesAllocated uint64
	TotalBytesDeallocated uint64
	PeakAllocatedBytes  uint64
}

// AllocatedBytes returns total_bytes_allocated - total_bytes_deallocated.
func (s Snapshot) AllocatedBytes() uint64 {
	if s.TotalBytesDeallocated > s.TotalBytesAllocated {
		return 0
	}
	return s.TotalBytesAllocated - s.TotalBytesDeallocated
}

// HasLeaks reports whether allocation_count exceeds deallocation_count.
func (s Snapshot) HasLeaks() bool {
	return s.AllocationCount > s.DeallocationCount
}

// PotentialLeaks returns the outstanding allocation/deallocation delta.
func (s Snapshot) PotentialLeaks() uint64 {
	if s.DeallocationCount > s.AllocationCount {
		return 0
	}
	return s.AllocationCount - s.DeallocationCount
}

// Recorder is the contract every allocator wrapper records against. It is
// implemented by Stats, AtomicStats and Optional, so a caller can pick any
// one without touching the recording sites.
type Recorder interface {
	RecordAllocation(bytes uint64)
	RecordDeallocation(bytes uint64)
	RecordReallocation(oldBytes, newBytes uint64)
	RecordFailure()
	Snapshot() Snapshot
	Reset()
}

// saturatingAdd adds b to a without wrapping past the uint64 max.
func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// Stats is a mutex-guarded Recorder. Prefer AtomicStats on hot paths shared
// by many goroutines; Stats is simpler and sufficient when updates are
// already serialized by an outer lock (e.g. the single-threaded cache).
type Stats struct {
	mu   sync.Mutex
	snap Snapshot
}

var _ Recorder = (*Stats)(nil)

func (s *Stats) RecordAllocation(bytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.AllocationCount = saturatingAdd(s.snap.AllocationCount, 1)
	s.snap.TotalBytesAllocated = saturatingAdd(s.snap.TotalBytesAllocated, bytes)
	if allocated := s.snap.AllocatedBytes(); allocated > s.snap.PeakAllocatedBytes {
		s.snap.PeakAllocatedBytes = allocated
	}
}

func (s *Stats) RecordDeallocation(bytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.DeallocationCount = saturatingAdd(s.snap.DeallocationCount, 1)
	s.snap.TotalBytesDeallocated = saturatingAdd(s.snap.TotalBytesDeallocated, bytes)
}

func (s *Stats) RecordReallocation(oldBytes, newBytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ReallocationCount = saturatingAdd(s.snap.ReallocationCount, 1)
	if newBytes > oldBytes {
		s.snap.TotalBytesAllocated = saturatingAdd(s.snap.TotalBytesAllocated, newBytes-oldBytes)
	} else if oldBytes > newBytes {
		s.snap.TotalBytesDeallocated = saturatingAdd(s.snap.TotalBytesDeallocated, oldBytes-newBytes)
	}
	if allocated := s.snap.AllocatedBytes(); allocated > s.snap.PeakAllocatedBytes {
		s.snap.PeakAllocatedBytes = allocated
	}
}

func (s *Stats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FailedAllocations = saturatingAdd(s.snap.FailedAllocations, 1)
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{}
}

// AtomicStats is a lock-free Recorder built from padded atomic counters, so
// concurrent updates from independent goroutines don't false-share a cache
// line. Peak tracking uses a compare-and-swap retry loop since there is no
// atomic "max" primitive in the standard library.
type AtomicStats struct {
	allocationCount       util.PaddedAtomicUint64
	deallocationCount     util.PaddedAtomicUint64
	reallocationCount     util.PaddedAtomicUint64
	failedAllocations     util.PaddedAtomicUint64
	totalBytesAllocated   util.PaddedAtomicUint64
	totalBytesDeallocated util.PaddedAtomicUint64
	peakAllocatedBytes    util.PaddedAtomicUint64
}

var _ Recorder = (*AtomicStats)(nil)

func (s *AtomicStats) bumpPeak(candidate uint64) {
	for {
		cur := s.peakAllocatedBytes.Load()
		if candidate <= cur {
			return
		}
		if s.peakAllocatedBytes.CompareAndSwap(cur, candidate) {
			return
		}
	}
}

func (s *AtomicStats) RecordAllocation(bytes uint64) {
	s.allocationCount.Add(1)
	total := s.totalBytesAllocated.Add(bytes)
	freed := s.totalBytesDeallocated.Load()
	if total > freed {
		s.bumpPeak(total - freed)
	}
}

func (s *AtomicStats) RecordDeallocation(bytes uint64) {
	s.deallocationCount.Add(1)
	s.totalBytesDeallocated.Add(bytes)
}

func (s *AtomicStats) RecordReallocation(oldBytes, newBytes uint64) {
	s.reallocationCount.Add(1)
	if newBytes > oldBytes {
		s.totalBytesAllocated.Add(newBytes - oldBytes)
	} else if oldBytes > newBytes {
		s.totalBytesDeallocated.Add(oldBytes - newBytes)
	}
	total := s.totalBytesAllocated.Load()
	freed := s.totalBytesDeallocated.Load()
	if total > freed {
		s.bumpPeak(total - freed)
	}
}

func (s *AtomicStats) RecordFailure() {
	s.failedAllocations.Add(1)
}

func (s *AtomicStats) Snapshot() Snapshot {
	return Snapshot{
		AllocationCount:       s.allocationCount.Load(),
		DeallocationCount:     s.deallocationCount.Load(),
		ReallocationCount:     s.reallocationCount.Load(),
		FailedAllocations:     s.failedAllocations.Load(),
		TotalBytesAllocated:   s.totalBytesAllocated.Load(),
		TotalBytesDeallocated: s.totalBytesDeallocated.Load(),
		PeakAllocatedBytes:    s.peakAllocatedBytes.Load(),
	}
}

func (s *AtomicStats) Reset() {
	s.allocationCount.Store(0)
	s.deallocationCount.Store(0)
	s.reallocationCount.Store(0)
	s.failedAllocations.Store(0)
	s.totalBytesAllocated.Store(0)
	s.totalBytesDeallocated.Store(0)
	s.peakAllocatedBytes.Store(0)
}

// Optional wraps a Recorder and can be switched off at construction time,
// so latency-critical callers pay nothing beyond a flag check. A disabled
// Optional still satisfies Recorder; its Snapshot is always zero.
type Optional struct {
	enabled bool
	inner   Recorder
}

var _ Recorder = (*Optional)(nil)

// NewOptional builds an Optional around inner. If enabled is false, all
// recording calls are no-ops and Snapshot always returns a zero value.
func NewOptional(inner Recorder, enabled bool) *Optional {
	return &Optional{enabled: enabled, inner: inner}
}

func (o *Optional) Enabled() bool { return o.enabled }

func (o *Optional) RecordAllocation(bytes uint64) {
	if o.enabled {
		o.inner.RecordAllocation(bytes)
	}
}

func (o *Optional) RecordDeallocation(bytes uint64) {
	if o.enabled {
		o.inner.RecordDeallocation(bytes)
	}
}

func (o *Optional) RecordReallocation(oldBytes, newBytes uint64) {
	if o.enabled {
		o.inner.RecordReallocation(oldBytes, newBytes)
	}
}

func (o *Optional) RecordFailure() {
	if o.enabled {
		o.inner.RecordFailure()
	}
}

func (o *Optional) Snapshot() Snapshot {
	if !o.enabled {
		return Snapshot{}
	}
	return o.inner.Snapshot()
}

func (o *Optional) Reset() {
	if o.enabled {
		o.inner.Reset()
	}
}
