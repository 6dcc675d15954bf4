package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/cache"
	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time     { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }

func TestCache_GetOrCompute_CachesResult(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 8})
	require.NoError(t, err)

	calls := 0
	compute := func(_ context.Context, k string) (int, error) {
		calls++
		return len(k), nil
	}

	v, err := c.GetOrCompute(context.Background(), "hello", compute)
	require.NoError(t, err)
	require.Equal(t, 5, v)

	v, err = c.GetOrCompute(context.Background(), "hello", compute)
	require.NoError(t, err)
	require.Equal(t, 5, v)
	require.Equal(t, 1, calls, "second call must be a cache hit")
}

func TestCache_GetOrCompute_WrapsProducerError(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 8})
	require.NoError(t, err)

	producerErr := errors.New("boom")
	_, err = c.GetOrCompute(context.Background(), "k", func(context.Context, string) (int, error) {
		return 0, producerErr
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, allocator.ErrProducerError))
	require.False(t, c.ContainsKey("k"))
}

func TestCache_EvictsUnderCapacityPressure(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 2})
	require.NoError(t, err)

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Get("a") // promote a, leaving b as LRU
	c.Insert("c", 3)

	require.False(t, c.ContainsKey("b"))
	require.True(t, c.ContainsKey("a"))
	require.True(t, c.ContainsKey("c"))
	require.Equal(t, uint64(1), c.Report().Evictions)
}

func TestCache_TTLExpiresLazily(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c, err := cache.New[string, string](cache.Config[string, string]{Capacity: 4, Clock: clk})
	require.NoError(t, err)

	c.InsertWithTTL("x", "v", 100*time.Millisecond)
	_, ok := c.Get("x")
	require.True(t, ok)

	clk.add(200 * time.Millisecond)
	_, ok = c.Get("x")
	require.False(t, ok)
	require.Equal(t, uint64(1), c.Report().Expirations)
}

func TestCache_CleanupExpiredSweepsWithoutAGet(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c, err := cache.New[string, string](cache.Config[string, string]{Capacity: 4, Clock: clk})
	require.NoError(t, err)

	c.InsertWithTTL("x", "v", 100*time.Millisecond)
	c.InsertWithTTL("y", "v", time.Hour)
	clk.add(200 * time.Millisecond)

	removed := c.CleanupExpired()
	require.Equal(t, 1, removed)
	require.Equal(t, 1, c.Len())
}

func TestCache_WarmUpSkipsResidentKeys(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 8})
	require.NoError(t, err)

	c.Insert("a", 1)
	calls := 0
	err = c.WarmUp(context.Background(), []string{"a", "b"}, func(_ context.Context, k string) (int, error) {
		calls++
		return len(k), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls, "a is already resident and must not be recomputed")
	require.True(t, c.ContainsKey("b"))
}

func TestCache_GetOrComputeBatch(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 8})
	require.NoError(t, err)

	out, err := c.GetOrComputeBatch(context.Background(), []string{"a", "bb", "ccc"}, func(_ context.Context, k string) (int, error) {
		return len(k), nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"a": 1, "bb": 2, "ccc": 3}, out)
}

func TestCache_PresetHighThroughputUsesLFU(t *testing.T) {
	cfg := cache.PresetHighThroughput[string, int](4)
	c, err := cache.New[string, int](cfg)
	require.NoError(t, err)

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Get("a")
	c.Get("a")
	c.Insert("c", 3)
	c.Insert("d", 4)
	c.Insert("e", 5) // overflow: least-frequently-used should go, not b specifically

	require.True(t, c.ContainsKey("a"), "a was accessed most and must survive LFU pressure")
}

func TestCache_PresetMemoryConstrainedUsesLRU(t *testing.T) {
	cfg := cache.PresetMemoryConstrained[string, int](2)
	c, err := cache.New[string, int](cfg)
	require.NoError(t, err)

	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Get("a") // promote a, leaving b as least-recently-used
	c.Insert("c", 3)

	require.True(t, c.ContainsKey("a"), "a was accessed most recently and must survive LRU pressure")
	require.False(t, c.ContainsKey("b"))
}

func TestCache_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := cache.New[string, int](cache.Config[string, int]{Capacity: 0})
	require.Error(t, err)
}

func TestCache_RejectsInitialCapacityAboveCapacity(t *testing.T) {
	_, err := cache.New[string, int](cache.Config[string, int]{Capacity: 4, InitialCapacity: 8})
	require.Error(t, err)
}

func TestCache_RejectsLoadFactorOutOfRange(t *testing.T) {
	_, err := cache.New[string, int](cache.Config[string, int]{Capacity: 4, LoadFactor: 0.05})
	require.Error(t, err)

	_, err = cache.New[string, int](cache.Config[string, int]{Capacity: 4, LoadFactor: 1.0})
	require.Error(t, err)
}

func TestCache_AcceptsLoadFactorBoundaries(t *testing.T) {
	_, err := cache.New[string, int](cache.Config[string, int]{Capacity: 4, LoadFactor: 0.1})
	require.NoError(t, err)

	_, err = cache.New[string, int](cache.Config[string, int]{Capacity: 4, LoadFactor: 0.95})
	require.NoError(t, err)
}

func TestCache_RejectsCleanupIntervalNotLessThanTTL(t *testing.T) {
	_, err := cache.New[string, int](cache.Config[string, int]{
		Capacity:        4,
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Minute,
	})
	require.Error(t, err)
}

func TestCache_RejectsTTLPolicyWithoutDefaultTTL(t *testing.T) {
	_, err := cache.New[string, int](cache.Config[string, int]{
		Capacity: 4,
		Policy:   func(int) evict.Policy[string] { return evict.NewTTL[string](0, nil, nil) },
	})
	require.Error(t, err)
}

func TestCache_GetOrCompute_TracksComputeTimeWhenEnabled(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 4, TrackMetrics: true})
	require.NoError(t, err)

	_, err = c.GetOrCompute(context.Background(), "k", func(context.Context, string) (int, error) {
		time.Sleep(time.Millisecond)
		return 1, nil
	})
	require.NoError(t, err)
	require.Greater(t, c.Report().ComputeTimeTotal, time.Duration(0))
	require.Equal(t, 1, c.Report().PeakSize)
}

func TestCache_MetricsUpdatesCountsOverwrites(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 4})
	require.NoError(t, err)

	c.Insert("a", 1)
	c.Insert("a", 2)
	require.Equal(t, uint64(1), c.Report().Insertions)
	require.Equal(t, uint64(1), c.Report().Updates)
}

func TestCache_ReportRecommendsIncreaseSizeOnLowHitRate(t *testing.T) {
	c, err := cache.New[string, int](cache.Config[string, int]{Capacity: 4})
	require.NoError(t, err)

	c.Get("missing")
	require.Contains(t, c.Report().Recommendations, "increase size or change policy")
}

func TestCache_CleanupExpiredCountsTowardExpiredCleanups(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c, err := cache.New[string, string](cache.Config[string, string]{Capacity: 4, Clock: clk})
	require.NoError(t, err)

	c.InsertWithTTL("x", "v", 100*time.Millisecond)
	clk.add(200 * time.Millisecond)
	c.CleanupExpired()

	require.Equal(t, uint64(1), c.Report().ExpiredCleanups)
}
