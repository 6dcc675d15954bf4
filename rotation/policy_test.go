package rotation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/rotation"
)

func TestPeriodicConfig_RejectsSubHourInterval(t *testing.T) {
	_, err := rotation.NewPeriodicConfig(30*time.Minute, time.Minute, false)
	require.Error(t, err)
	require.True(t, errors.Is(err, allocator.ErrInvalidConfiguration))
	require.Contains(t, err.Error(), "at least 1 hour")
}

func TestPeriodicConfig_RejectsGracePeriodLongerThanInterval(t *testing.T) {
	_, err := rotation.NewPeriodicConfig(2*time.Hour, 3*time.Hour, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot exceed")
}

func TestPeriodicConfig_AcceptsValidConfig(t *testing.T) {
	c, err := rotation.NewPeriodicConfig(24*time.Hour, time.Hour, true)
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, c.Interval())
	require.True(t, c.EnableJitter())
	gp, ok := c.GracePeriod()
	require.True(t, ok)
	require.Equal(t, time.Hour, gp)
}

func TestBeforeExpiryConfig_RejectsThresholdTooLow(t *testing.T) {
	_, err := rotation.NewBeforeExpiryConfig(0.3, time.Minute, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "between 0.5 and 0.95")
}

func TestBeforeExpiryConfig_RejectsThresholdTooHigh(t *testing.T) {
	_, err := rotation.NewBeforeExpiryConfig(0.99, time.Minute, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "between 0.5 and 0.95")
}

func TestBeforeExpiryConfig_RejectsNonPositiveMinimumTime(t *testing.T) {
	_, err := rotation.NewBeforeExpiryConfig(0.8, 0, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be positive")
}

func TestBeforeExpiryConfig_AcceptsValidConfig(t *testing.T) {
	c, err := rotation.NewBeforeExpiryConfig(0.8, 5*time.Minute, time.Minute)
	require.NoError(t, err)
	require.InDelta(t, 0.8, c.ThresholdPercentage(), 0.0001)
	require.Equal(t, 5*time.Minute, c.MinimumTimeBeforeExpiry())
}

func TestScheduledConfig_RejectsPastTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	_, err := rotation.NewScheduledConfig(now.Add(-time.Hour), time.Minute, 0, fixedNow)
	require.Error(t, err)
	require.Contains(t, err.Error(), "future")
}

func TestScheduledConfig_RejectsExactlyNow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	_, err := rotation.NewScheduledConfig(now, time.Minute, 0, fixedNow)
	require.Error(t, err)
}

func TestScheduledConfig_AcceptsFutureTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedNow := func() time.Time { return now }

	c, err := rotation.NewScheduledConfig(now.Add(time.Hour), 10*time.Minute, 5*time.Minute, fixedNow)
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), c.ScheduledAt())

	notify, ok := c.NotifyBefore()
	require.True(t, ok)
	require.Equal(t, 5*time.Minute, notify)
}

func TestScheduledConfig_NotifyBeforeAbsentWhenZero(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := rotation.NewScheduledConfig(now.Add(time.Hour), time.Minute, 0, func() time.Time { return now })
	require.NoError(t, err)

	_, ok := c.NotifyBefore()
	require.False(t, ok)
}

func TestScheduledConfig_DefaultsToRealClockWhenNilPassed(t *testing.T) {
	_, err := rotation.NewScheduledConfig(time.Now().Add(time.Hour), time.Minute, 0, nil)
	require.NoError(t, err)
}

func TestManualConfig_Emergency(t *testing.T) {
	m := rotation.NewManualEmergencyConfig()
	require.True(t, m.ImmediateRevoke())

	gp, ok := m.GracePeriod()
	require.False(t, ok)
	require.Zero(t, gp)
}

func TestManualConfig_Planned(t *testing.T) {
	m := rotation.NewManualPlannedConfig(15 * time.Minute)
	require.False(t, m.ImmediateRevoke())

	gp, ok := m.GracePeriod()
	require.True(t, ok)
	require.Equal(t, 15*time.Minute, gp)
}

func TestValidate_ManualIsAlwaysValid(t *testing.T) {
	require.NoError(t, rotation.Validate(rotation.NewManualEmergencyConfig()))
	require.NoError(t, rotation.Validate(rotation.NewManualPlannedConfig(time.Minute)))
}
