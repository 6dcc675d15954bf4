package prom_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/allocator/stats"
	"github.com/vanyastaff/nebula-memcache/cache/concurrent"
	"github.com/vanyastaff/nebula-memcache/metrics/prom"
	"github.com/vanyastaff/nebula-memcache/pool"
)

func TestAdapter_CacheEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := prom.New(reg, "test", "cache", nil)

	a.Hit()
	a.Hit()
	a.Miss()
	a.Evict(concurrent.EvictTTL)
	a.Size(10, 100)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestAdapter_ReportAllocator(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := prom.New(reg, "test", "cache", nil)

	a.ReportAllocator(stats.Snapshot{
		TotalBytesAllocated:   1000,
		TotalBytesDeallocated: 400,
		PeakAllocatedBytes:    900,
		FailedAllocations:     2,
	})

	_, err := reg.Gather()
	require.NoError(t, err)
}

func TestAdapter_ReportPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := prom.New(reg, "test", "cache", nil)

	a.ReportPool(5, pool.Stats{Hits: 10, Misses: 3})

	_, err := reg.Gather()
	require.NoError(t, err)
}
