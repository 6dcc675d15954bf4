// Package pressure provides a no-op allocator.PressureMonitor so the core
// compiles and functions without a real memory-pressure subsystem wired
// in, per the design note that pressure awareness is an external
// collaborator, never a hard dependency of the allocator package itself.
package pressure

import "github.com/vanyastaff/nebula-memcache/allocator"

// StubMonitor always reports no pressure and allows every allocation.
type StubMonitor struct{}

var _ allocator.PressureMonitor = StubMonitor{}

// CheckPressure always returns PressureActionNone with a zero MemoryInfo.
func (StubMonitor) CheckPressure() (allocator.MemoryInfo, allocator.PressureAction, error) {
	return allocator.MemoryInfo{}, allocator.PressureActionNone, nil
}

// ShouldAllowLargeAllocation always allows.
func (StubMonitor) ShouldAllowLargeAllocation(int) (bool, error) {
	return true, nil
}
