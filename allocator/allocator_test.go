package allocator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/allocator/bump"
)

func TestTracked_RecordsAllocationsAndLeaks(t *testing.T) {
	inner, err := bump.New(bump.Config{Capacity: 1024})
	require.NoError(t, err)

	tr := allocator.NewTracked(inner, true)
	_, err = tr.Allocate(64, 8)
	require.NoError(t, err)
	_, err = tr.Allocate(64, 8)
	require.NoError(t, err)

	require.True(t, tr.HasLeaks())
	require.Equal(t, uint64(2), tr.PotentialLeaks())

	tr.Deallocate(make([]byte, 64))
	require.Equal(t, uint64(1), tr.PotentialLeaks())
}

func TestTracked_ForwardsFailures(t *testing.T) {
	inner, err := bump.New(bump.Config{Capacity: 8})
	require.NoError(t, err)

	tr := allocator.NewTracked(inner, true)
	_, err = tr.Allocate(1024, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, allocator.ErrOutOfMemory))
	require.Equal(t, uint64(1), tr.Stats().FailedAllocations)
}

type stubMonitor struct {
	action allocator.PressureAction
	err    error
}

func (s *stubMonitor) CheckPressure() (allocator.MemoryInfo, allocator.PressureAction, error) {
	return allocator.MemoryInfo{}, s.action, s.err
}

func (s *stubMonitor) ShouldAllowLargeAllocation(size int) (bool, error) {
	return s.action == allocator.PressureActionNone, s.err
}

// Pressure-aware allocation: under ReduceAllocations a request within
// MaxHighPressureAlloc is admitted and a larger one is refused outright,
// counted as a failed allocation.
func TestMonitored_ScenarioSix(t *testing.T) {
	inner, err := bump.New(bump.Config{Capacity: 1 << 20})
	require.NoError(t, err)

	mon := &stubMonitor{action: allocator.PressureActionReduceAllocations}
	m := allocator.NewMonitored(inner, mon, allocator.MonitoredConfig{
		MaxHighPressureAlloc: 64 * 1024,
	})

	_, err = m.Allocate(32*1024, 8)
	require.NoError(t, err)

	_, err = m.Allocate(128*1024, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, allocator.ErrOutOfMemory), "DeniedByPressure must collapse into OutOfMemory via errors.Is")
	require.Equal(t, uint64(1), m.Stats().FailedAllocations)
}

func TestMonitored_DegradesOpenOnMonitorError(t *testing.T) {
	inner, err := bump.New(bump.Config{Capacity: 1024})
	require.NoError(t, err)

	mon := &stubMonitor{err: errors.New("monitor unavailable")}
	m := allocator.NewMonitored(inner, mon, allocator.MonitoredConfig{MaxHighPressureAlloc: 8})

	_, err = m.Allocate(512, 8)
	require.NoError(t, err, "a failing monitor must not block allocation")
}

func TestMonitored_FailOnCriticalRefusesEverything(t *testing.T) {
	inner, err := bump.New(bump.Config{Capacity: 1024})
	require.NoError(t, err)

	mon := &stubMonitor{action: allocator.PressureActionEmergency}
	m := allocator.NewMonitored(inner, mon, allocator.MonitoredConfig{FailOnCritical: true})

	_, err = m.Allocate(1, 1)
	require.Error(t, err)
}

func TestGlobalAllocAdapter_RoundTrip(t *testing.T) {
	inner, err := bump.New(bump.Config{Capacity: 1024})
	require.NoError(t, err)

	adapter := allocator.NewGlobalAllocAdapter(inner)
	region, ok := adapter.Alloc(16, 8)
	require.True(t, ok)
	require.Len(t, region, 16)

	copy(region, []byte("0123456789abcdef"))
	grown, ok := adapter.Realloc(region, 8, 32)
	require.True(t, ok)
	require.Equal(t, region, grown[:16])
}
