package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/config"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_FullDocument(t *testing.T) {
	path := writeTemp(t, `
[bump]
capacity = 1048576
thread_safe = true
track_stats = true

[pool]
initial_capacity = 16
pre_warm = true

[cache]
capacity = 1024
shards = 8
policy = "lfu"
default_ttl = "5m"

[rotation]
kind = "periodic"
interval = "24h"
grace_period = "1h"
`)

	doc, err := config.Load(path)
	require.NoError(t, err)
	require.NotNil(t, doc.Bump)
	require.Equal(t, 1048576, doc.Bump.Capacity)
	require.True(t, doc.Bump.ThreadSafe)

	require.NotNil(t, doc.Pool)
	require.Equal(t, 16, doc.Pool.InitialCapacity)

	require.NotNil(t, doc.Cache)
	cc, err := config.ToCacheConfig[string, int](doc.Cache)
	require.NoError(t, err)
	require.Equal(t, 1024, cc.Capacity)
	require.Equal(t, 5*time.Minute, cc.DefaultTTL)

	require.NotNil(t, doc.Rotation)
	p, err := doc.Rotation.ToPolicy()
	require.NoError(t, err)
	gp, ok := p.GracePeriod()
	require.True(t, ok)
	require.Equal(t, time.Hour, gp)
}

func TestLoad_EmptyDocumentLeavesSectionsNil(t *testing.T) {
	path := writeTemp(t, "")

	doc, err := config.Load(path)
	require.NoError(t, err)
	require.Nil(t, doc.Bump)
	require.Nil(t, doc.Pool)
	require.Nil(t, doc.Cache)
	require.Nil(t, doc.Rotation)
}

func TestToCacheConfig_UnknownPolicyErrors(t *testing.T) {
	sec := &config.CacheSection{Capacity: 10, Policy: "bogus"}
	_, err := config.ToCacheConfig[string, int](sec)
	require.Error(t, err)
}

func TestToCacheConfig_AppliesSizingAndCleanupFields(t *testing.T) {
	sec := &config.CacheSection{
		Capacity:        100,
		Policy:          config.PolicyLRU,
		InitialCapacity: 10,
		LoadFactor:      0.5,
		TrackMetrics:    true,
		AutoCleanup:     true,
		CleanupInterval: "30s",
	}
	cc, err := config.ToCacheConfig[string, int](sec)
	require.NoError(t, err)
	require.Equal(t, 10, cc.InitialCapacity)
	require.InDelta(t, 0.5, cc.LoadFactor, 0.0001)
	require.True(t, cc.TrackMetrics)
	require.True(t, cc.AutoCleanup)
	require.Equal(t, 30*time.Second, cc.CleanupInterval)
}

func TestToConcurrentConfig_AppliesShardsAndMaxCost(t *testing.T) {
	sec := &config.CacheSection{Capacity: 100, Shards: 4, Policy: config.PolicyARC, MaxCost: 4096}
	cc, err := config.ToConcurrentConfig[string, []byte](sec)
	require.NoError(t, err)
	require.Equal(t, 4, cc.Shards)
	require.Equal(t, int64(4096), cc.MaxCost)
}

func TestRotationSection_ManualEmergency(t *testing.T) {
	sec := &config.RotationSection{Kind: config.RotationManual, ImmediateRevoke: true}
	p, err := sec.ToPolicy()
	require.NoError(t, err)
	_, ok := p.GracePeriod()
	require.False(t, ok)
}

func TestRotationSection_UnknownKindErrors(t *testing.T) {
	sec := &config.RotationSection{Kind: "bogus"}
	_, err := sec.ToPolicy()
	require.Error(t, err)
}
