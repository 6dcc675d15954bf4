// Package bump implements the monotonic bump/arena allocator: fast,
// aligned, exclusive subranges of a fixed buffer, with coarse
// deallocation via Reset and fine-grained rewind via checkpoints.
//
// It favors a checkpoint + generation + CAS try-bump loop over a free
// list: defragmentation and compaction are out of scope, so there is
// nothing for a free list to compact.
package bump

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/vanyastaff/nebula-memcache/allocator"
	"github.com/vanyastaff/nebula-memcache/allocator/stats"
)

// Config configures a bump Allocator at construction time. Thread-safety
// is a configuration switch, not an inheritance axis: both the atomic and
// plain cursor satisfy the same contract.
type Config struct {
	// Capacity is the fixed size in bytes of the backing buffer. Must be > 0.
	Capacity int

	// ThreadSafe selects the CAS-based atomic cursor over the plain,
	// single-threaded one.
	ThreadSafe bool

	// MinAllocSize is the smallest number of bytes the cursor advances by
	// per allocation, even for zero-size requests. Defaults to 1.
	MinAllocSize int

	// TrackStats enables statistics collection. When false, an Optional
	// recorder with counting disabled is used, so hot paths pay nothing.
	TrackStats bool

	// EnablePrefetch issues a best-effort touch of the next cache line
	// after a successful allocation (Go has no portable prefetch
	// intrinsic, so this is a dummy read, safe to disable).
	EnablePrefetch   bool
	PrefetchDistance int

	// AllocPattern, if set, fills newly allocated regions with this byte.
	// DeallocPattern, if set, fills regions freed by Restore/Reset.
	AllocPattern   *byte
	DeallocPattern *byte

	// MaxCASRetries bounds the atomic cursor's compare-and-swap retry loop
	// before it gives up and reports OutOfMemory. Defaults to 32.
	MaxCASRetries int
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return allocator.NewInvalidConfiguration("bump: capacity must be > 0")
	}
	if c.MinAllocSize < 0 {
		return allocator.NewInvalidConfiguration("bump: min_alloc_size must be >= 0")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MinAllocSize <= 0 {
		c.MinAllocSize = 1
	}
	if c.MaxCASRetries <= 0 {
		c.MaxCASRetries = 32
	}
	if c.PrefetchDistance <= 0 {
		c.PrefetchDistance = 64
	}
	return c
}

// Checkpoint is a saved cursor position tagged with a generation, allowing
// coarse rollback via Restore. It is only valid while the allocator's
// generation is unchanged since it was issued.
type Checkpoint struct {
	pos int
	gen uint64
}

// Pos exposes the raw cursor position captured by this checkpoint.
func (c Checkpoint) Pos() int { return c.pos }

// cursor is the minimal contract both cursor implementations satisfy.
type cursor interface {
	load() int
	compareAndSwap(old, new int) bool
	store(new int)
}

type atomicCursor struct{ v atomic.Int64 }

func (c *atomicCursor) load() int                       { return int(c.v.Load()) }
func (c *atomicCursor) compareAndSwap(old, new int) bool { return c.v.CompareAndSwap(int64(old), int64(new)) }
func (c *atomicCursor) store(new int)                    { c.v.Store(int64(new)) }

type plainCursor struct{ v int }

func (c *plainCursor) load() int { return c.v }
func (c *plainCursor) compareAndSwap(old, new int) bool {
	if c.v != old {
		return false
	}
	c.v = new
	return true
}
func (c *plainCursor) store(new int) { c.v = new }

// Allocator is a fixed-capacity bump/arena allocator. It never resizes its
// backing buffer, and Deallocate is a no-op by contract: the only ways to
// reclaim space are Restore (to a prior Checkpoint) and Reset (reclaim
// everything and invalidate all outstanding checkpoints).
type Allocator struct {
	buf  []byte
	base uintptr
	cfg  Config

	cursor     cursor
	generation atomic.Uint64
	recorder   stats.Recorder
}

var _ allocator.Allocator = (*Allocator)(nil)
var _ allocator.Resettable = (*Allocator)(nil)

// New constructs a bump Allocator per cfg, or returns an
// InvalidConfiguration error if cfg.Capacity <= 0.
func New(cfg Config) (*Allocator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	buf := make([]byte, cfg.Capacity)
	var c cursor
	if cfg.ThreadSafe {
		c = &atomicCursor{}
	} else {
		c = &plainCursor{}
	}

	a := &Allocator{
		buf:      buf,
		base:     uintptr(unsafe.Pointer(&buf[0])),
		cfg:      cfg,
		cursor:   c,
		recorder: stats.NewOptional(&stats.AtomicStats{}, cfg.TrackStats),
	}
	return a, nil
}

func alignUp(addr uintptr, align int) uintptr {
	a := uintptr(align)
	return (addr + a - 1) &^ (a - 1)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Allocate reserves size bytes aligned to align (which must be a power of
// two) and returns the exclusive subrange. Zero-size requests round up to
// Config.MinAllocSize. Returns an OutOfMemory error if the buffer is
// exhausted, or InvalidConfiguration if align is not a power of two.
func (a *Allocator) Allocate(size, align int) ([]byte, error) {
	if align <= 0 || !isPowerOfTwo(align) {
		return nil, allocator.NewInvalidConfiguration("bump: align must be a power of two")
	}
	if size <= 0 {
		size = a.cfg.MinAllocSize
	}
	reserve := size
	if reserve < a.cfg.MinAllocSize {
		reserve = a.cfg.MinAllocSize
	}

	for attempt := 0; ; attempt++ {
		cur := a.cursor.load()
		alignedAbs := alignUp(a.base+uintptr(cur), align)
		alignedStart := int(alignedAbs - a.base)
		newCursor := alignedStart + reserve

		if newCursor > len(a.buf) {
			a.recorder.RecordFailure()
			return nil, allocator.NewOutOfMemory(size, align)
		}

		if a.cursor.compareAndSwap(cur, newCursor) {
			region := a.buf[alignedStart : alignedStart+size : alignedStart+size]
			if a.cfg.AllocPattern != nil {
				fill(region, *a.cfg.AllocPattern)
			}
			if a.cfg.EnablePrefetch {
				a.touchPrefetch(newCursor)
			}
			a.recorder.RecordAllocation(uint64(size))
			return region, nil
		}

		if attempt >= a.cfg.MaxCASRetries {
			a.recorder.RecordFailure()
			return nil, allocator.NewOutOfMemory(size, align)
		}
		// Exponential backoff: yield 2^attempt times (at most 64) before
		// retrying the compare-and-swap.
		for i := 0; i < 1<<min(attempt, 6); i++ {
			runtime.Gosched()
		}
	}
}

func (a *Allocator) touchPrefetch(cursor int) {
	idx := cursor + a.cfg.PrefetchDistance
	if idx >= 0 && idx < len(a.buf) {
		_ = a.buf[idx]
	}
}

func fill(region []byte, b byte) {
	for i := range region {
		region[i] = b
	}
}

// Deallocate is a no-op by contract: bump allocators do not free individual
// allocations. Callers must not rely on this freeing memory.
func (a *Allocator) Deallocate(p []byte) {}

// Checkpoint captures the current cursor position and generation.
func (a *Allocator) Checkpoint() Checkpoint {
	return Checkpoint{pos: a.cursor.load(), gen: a.generation.Load()}
}

// Restore rewinds the cursor to cp, provided the allocator's generation has
// not advanced (via Reset) since cp was issued, and cp.pos lies within
// [0, cursor]. On success, any subsequent Allocate returns ranges at or
// after cp.pos.
func (a *Allocator) Restore(cp Checkpoint) error {
	if cp.gen != a.generation.Load() {
		return allocator.NewInvalidCheckpoint(allocator.CheckpointReasonGenerationMismatch)
	}
	if cp.pos < 0 {
		return allocator.NewInvalidCheckpoint(allocator.CheckpointReasonOutOfRange)
	}

	for {
		cur := a.cursor.load()
		if cp.pos > cur {
			return allocator.NewInvalidCheckpoint(allocator.CheckpointReasonFuture)
		}
		if a.cursor.compareAndSwap(cur, cp.pos) {
			if a.cfg.DeallocPattern != nil && cur > cp.pos {
				fill(a.buf[cp.pos:cur], *a.cfg.DeallocPattern)
			}
			return nil
		}
	}
}

// Scope is a RAII-style handle returned by Scoped: Close restores the
// checkpoint taken when the scope was created. Restore failures on Close
// are silently ignored, matching the contract that scoped-restore never
// panics (the generation may have already advanced via a concurrent Reset).
type Scope struct {
	a  *Allocator
	cp Checkpoint
}

// Close restores the allocator to the checkpoint captured by Scoped.
func (s *Scope) Close() {
	_ = s.a.Restore(s.cp)
}

// Scoped takes a checkpoint now and returns a handle whose Close restores
// it, the idiomatic Go replacement for RAII scoped-restore:
//
//	scope := a.Scoped()
//	defer scope.Close()
func (a *Allocator) Scoped() *Scope {
	return &Scope{a: a, cp: a.Checkpoint()}
}

// Reset reclaims the entire buffer: it bumps the generation (invalidating
// every outstanding Checkpoint), fills the used range with DeallocPattern
// if one is set, rewinds the cursor to zero, and resets statistics.
// Callers must ensure no outstanding references into the buffer exist;
// Reset does not and cannot verify this in Go.
func (a *Allocator) Reset() {
	a.generation.Add(1)
	if a.cfg.DeallocPattern != nil {
		fill(a.buf[:a.cursor.load()], *a.cfg.DeallocPattern)
	}
	a.cursor.store(0)
	a.recorder.Reset()
}

// Used returns the number of bytes currently reserved by the cursor.
func (a *Allocator) Used() int { return a.cursor.load() }

// Available returns the number of bytes left before the buffer is
// exhausted.
func (a *Allocator) Available() int { return len(a.buf) - a.cursor.load() }

// Capacity returns the fixed size of the backing buffer.
func (a *Allocator) Capacity() int { return len(a.buf) }

// Stats returns a snapshot of this allocator's own counters (zero if
// Config.TrackStats was false).
func (a *Allocator) Stats() stats.Snapshot { return a.recorder.Snapshot() }
