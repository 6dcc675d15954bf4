package allocator

import "github.com/vanyastaff/nebula-memcache/allocator/stats"

// Tracked is a transparent wrapper over any Allocator that records
// statistics on every call: allocation/deallocation counts, bytes moved,
// and failures. HasLeaks/PotentialLeaks read directly off the recorded
// counters.
type Tracked struct {
	inner    Allocator
	recorder stats.Recorder
}

var _ Allocator = (*Tracked)(nil)

// NewTracked wraps inner with statistics recording. If trackStats is
// false, recording is a no-op (Optional), so the wrapper costs only a
// couple of extra calls per operation.
func NewTracked(inner Allocator, trackStats bool) *Tracked {
	return &Tracked{
		inner:    inner,
		recorder: stats.NewOptional(&stats.AtomicStats{}, trackStats),
	}
}

func (t *Tracked) Allocate(size, align int) ([]byte, error) {
	region, err := t.inner.Allocate(size, align)
	if err != nil {
		t.recorder.RecordFailure()
		return nil, err
	}
	t.recorder.RecordAllocation(uint64(len(region)))
	return region, nil
}

func (t *Tracked) Deallocate(p []byte) {
	t.inner.Deallocate(p)
	t.recorder.RecordDeallocation(uint64(len(p)))
}

// Stats returns Tracked's own recorded statistics (not the inner
// allocator's, which may track nothing at all).
func (t *Tracked) Stats() stats.Snapshot { return t.recorder.Snapshot() }

// HasLeaks reports whether recorded allocation_count exceeds
// deallocation_count.
func (t *Tracked) HasLeaks() bool { return t.recorder.Snapshot().HasLeaks() }

// PotentialLeaks returns the outstanding allocation/deallocation delta.
func (t *Tracked) PotentialLeaks() uint64 { return t.recorder.Snapshot().PotentialLeaks() }

// ResetStats clears Tracked's own counters without touching the inner
// allocator.
func (t *Tracked) ResetStats() { t.recorder.Reset() }

// Reset forwards to the inner allocator if it supports Resettable.
func (t *Tracked) Reset() {
	if r, ok := t.inner.(Resettable); ok {
		r.Reset()
	}
}
