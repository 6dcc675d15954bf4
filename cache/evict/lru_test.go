package evict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	p := evict.NewLRU[string]()
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordInsertion("c")

	p.RecordAccess("a") // a becomes MRU, b is now LRU

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", victim)
}

func TestLRU_RemovalDropsFromOrdering(t *testing.T) {
	p := evict.NewLRU[string]()
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordRemoval("a")

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", victim)
}

func TestLRU_EmptyHasNoVictim(t *testing.T) {
	p := evict.NewLRU[string]()
	_, ok := p.SelectVictim()
	require.False(t, ok)
}
