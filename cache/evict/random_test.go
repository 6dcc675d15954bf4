package evict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

func TestRandom_OnlyEvictsLiveKeys(t *testing.T) {
	p := evict.NewRandom[string]()
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordRemoval("a")

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", victim)
}

func TestRandom_EmptyHasNoVictim(t *testing.T) {
	p := evict.NewRandom[string]()
	_, ok := p.SelectVictim()
	require.False(t, ok)
}

func TestRandom_SwapRemoveKeepsRemainingKeysSelectable(t *testing.T) {
	p := evict.NewRandom[int]()
	for i := 0; i < 10; i++ {
		p.RecordInsertion(i)
	}
	p.RecordRemoval(3)
	p.RecordRemoval(7)

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		v, ok := p.SelectVictim()
		require.True(t, ok)
		require.NotEqual(t, 3, v)
		require.NotEqual(t, 7, v)
		seen[v] = true
	}
	require.Greater(t, len(seen), 1, "random selection should not always return the same key")
}
