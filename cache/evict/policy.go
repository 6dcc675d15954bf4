// Package evict implements the pluggable eviction-policy family consumed
// by cache.Cache: LRU, LFU, FIFO, Random, TTL, ARC, and a meta-policy,
// Adaptive, that shadow-evaluates the others and switches when one
// materially outperforms the active policy.
//
// LRU uses the classic move-to-front container/list technique, each
// policy owning its own ordering structure rather than an intrusive list
// shared with its caller. ARC's ghost-list bookkeeping generalizes the
// same two-queue, doubly-linked-list admission/ghost design from two
// lists to ARC's four (T1/T2/B1/B2).
package evict

// Policy is the contract every eviction strategy satisfies. All methods
// must run in amortized O(log n) or better and must not allocate beyond
// their own bookkeeping.
type Policy[K comparable] interface {
	// RecordAccess notes a cache hit for k (the entry already existed).
	RecordAccess(k K)
	// RecordInsertion notes a new entry admitted for k (after a miss).
	RecordInsertion(k K)
	// RecordRemoval notes k leaving the cache (explicit remove, expiry, or
	// eviction already decided elsewhere); policies must drop k from their
	// own bookkeeping.
	RecordRemoval(k K)
	// SelectVictim returns the key the policy recommends evicting, or
	// (zero, false) if the policy has nothing to evict.
	SelectVictim() (K, bool)
	// Clear drops all bookkeeping.
	Clear()
	// Name identifies the policy, e.g. for metrics/logging.
	Name() string
}

// Kind names the built-in policies a cache.Config can select by value.
type Kind string

const (
	KindLRU      Kind = "LRU"
	KindLFU      Kind = "LFU"
	KindFIFO     Kind = "FIFO"
	KindRandom   Kind = "Random"
	KindTTL      Kind = "TTL"
	KindARC      Kind = "ARC"
	KindAdaptive Kind = "Adaptive"
)
