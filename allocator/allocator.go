// Package allocator defines the allocator contract shared by every backing
// implementation in this module (see allocator/bump), plus the Tracked and
// Monitored decorators that wrap any such implementation with statistics
// and pressure-aware admission control.
package allocator

import "github.com/vanyastaff/nebula-memcache/allocator/stats"

// Allocator is the contract every backing allocator satisfies. Deallocate
// is a best-effort hint: bump-style allocators treat it as a no-op by
// contract (see allocator/bump), but Tracked still records it for
// statistics purposes.
type Allocator interface {
	// Allocate returns a byte slice of exactly size bytes, whose backing
	// address (once aligned) is a multiple of align, or an error whose
	// Kind() is KindOutOfMemory / KindDeniedByPressure / KindInvalidConfiguration.
	Allocate(size, align int) ([]byte, error)

	// Deallocate releases a previously allocated slice. Implementations
	// that cannot free individual allocations (e.g. a bump allocator) treat
	// this as a no-op.
	Deallocate(p []byte)

	// Stats returns a snapshot of this allocator's own counters. An
	// allocator with statistics disabled returns a zero Snapshot.
	Stats() stats.Snapshot
}

// Resettable is implemented by allocators that support a coarse full reset
// (the bump allocator does; a thin wrapper over the OS heap would not).
type Resettable interface {
	Reset()
}

// PressureAction is the instruction an external PressureMonitor returns,
// classifying current memory stress and prescribing admission behavior.
type PressureAction int

const (
	PressureActionNone PressureAction = iota
	PressureActionWarn
	PressureActionReduceAllocations
	PressureActionForceCleanup
	PressureActionDenyLargeAllocations
	PressureActionEmergency
)

func (p PressureAction) String() string {
	switch p {
	case PressureActionNone:
		return "None"
	case PressureActionWarn:
		return "Warn"
	case PressureActionReduceAllocations:
		return "ReduceAllocations"
	case PressureActionForceCleanup:
		return "ForceCleanup"
	case PressureActionDenyLargeAllocations:
		return "DenyLargeAllocations"
	case PressureActionEmergency:
		return "Emergency"
	default:
		return "Unknown"
	}
}

// MemoryInfo is the ancillary data a PressureMonitor reports alongside its
// PressureAction; this module only reads it for logging, never for logic,
// to keep the monitor contract a genuine external collaborator.
type MemoryInfo struct {
	UsedBytes      uint64
	AvailableBytes uint64
	TotalBytes     uint64
}

// PressureMonitor is the external collaborator MonitoredAllocator consults.
// A monitor is allowed to fail; MonitoredAllocator degrades open on error
// (see Monitored.Allocate), so the core stays usable with a stub monitor
// that always returns PressureActionNone (internal/contracts/pressure).
type PressureMonitor interface {
	CheckPressure() (MemoryInfo, PressureAction, error)
	ShouldAllowLargeAllocation(size int) (bool, error)
}
