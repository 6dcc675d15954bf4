package evict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

func TestLFU_EvictsLeastFrequentlyUsed(t *testing.T) {
	p := evict.NewLFU[string]()
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordInsertion("c")

	p.RecordAccess("a")
	p.RecordAccess("a")
	p.RecordAccess("b")
	// c was never accessed after insertion: frequency 1, the minimum.

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "c", victim)
}

func TestLFU_TiesBreakByBucketEntryOrder(t *testing.T) {
	p := evict.NewLFU[string]()
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	// both at frequency 1; a entered its bucket first, so it's the oldest
	// tenant of the minimum-frequency bucket.

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "a", victim)
}

func TestLFU_RemovalAdvancesMinFreq(t *testing.T) {
	p := evict.NewLFU[string]()
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordAccess("b") // b at freq 2, a at freq 1

	p.RecordRemoval("a")

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", victim)
}
