package pressure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/internal/contracts/pressure"
)

func TestStubMonitor_AlwaysAllowsAndReportsNone(t *testing.T) {
	var m pressure.StubMonitor

	_, action, err := m.CheckPressure()
	require.NoError(t, err)
	require.Equal(t, allocator.PressureActionNone, action)

	ok, err := m.ShouldAllowLargeAllocation(1 << 30)
	require.NoError(t, err)
	require.True(t, ok)
}
