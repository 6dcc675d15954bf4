package evict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanyastaff/nebula-memcache/cache/evict"
)

func TestARC_RepeatedAccessPromotesToFrequencyList(t *testing.T) {
	p := evict.NewARC[string](4)
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordAccess("a") // a moves to T2 (frequency), b stays in T1 (recency)

	// With only T1 populated by b and T2 by a, a full cache evicts from T1
	// first, so b (the lone T1 entry) is the victim.
	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", victim)
}

func TestARC_GhostHitAdaptsTowardFrequency(t *testing.T) {
	p := evict.NewARC[string](2)
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	victim, ok := p.SelectVictim() // evicts one of a/b into B1
	require.True(t, ok)

	// Re-inserting the evicted key should hit its ghost entry and land
	// straight in T2 rather than T1.
	p.RecordInsertion(victim)

	_, ok = p.SelectVictim()
	require.True(t, ok)
}

func TestARC_ReinsertingResidentFrequentKeyDoesNotDemoteIt(t *testing.T) {
	p := evict.NewARC[string](4)
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.RecordAccess("a") // a moves to T2 (frequency), b stays in T1

	// A value update on a (the hot key) must not send it back to T1: a
	// caller updating a frequently-read key in place (e.g. refreshing a
	// counter) should never make it the next eviction victim.
	p.RecordInsertion("a")

	victim, ok := p.SelectVictim()
	require.True(t, ok)
	require.Equal(t, "b", victim)
}

func TestARC_RemovalForgetsGhostEntirely(t *testing.T) {
	p := evict.NewARC[string](2)
	p.RecordInsertion("a")
	p.RecordRemoval("a")

	_, ok := p.SelectVictim()
	require.False(t, ok)
}

func TestARC_Clear(t *testing.T) {
	p := evict.NewARC[string](4)
	p.RecordInsertion("a")
	p.RecordInsertion("b")
	p.Clear()

	_, ok := p.SelectVictim()
	require.False(t, ok)
}
