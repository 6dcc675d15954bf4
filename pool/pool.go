// Package pool implements a bounded object pool for Poolable values:
// reusable, resettable instances (typically large buffers or scratch
// objects) whose allocation cost is worth amortizing.
//
// Grounded on the original nebula-memory object pool (reset-on-return,
// validate-on-return, pressure-triggered compression) and, for the
// idiomatic Go reset-before-reuse shape, MiraiMindz-watt/capacitor's
// sync.Pool-backed entry pool.
package pool

import (
	"sync"

	"github.com/vanyastaff/nebula-memcache/allocator"
)

// Poolable is any value a Pool can store and hand out. The pool exclusively
// owns idle instances; a Handle exclusively owns a checked-out instance
// until Close or Detach.
type Poolable interface {
	// Reset returns the value to a clean, reusable state.
	Reset()
	// Validate reports whether the value is still usable.
	Validate() bool
	// IsReusable reports whether policy allows this instance to be reused
	// (distinct from Validate: a value can be structurally valid but still
	// policy-ineligible for reuse, e.g. too large).
	IsReusable() bool
	// MemoryUsage reports the number of bytes this instance owns.
	MemoryUsage() int
}

// Compressible is an optional extension of Poolable: values that can
// shrink their retained capacity in place under memory pressure implement
// it. Go has no default-trait-method equivalent, so this is a separate
// interface, type-asserted where needed (see Pool.OptimizeMemory).
type Compressible interface {
	// Compress shrinks retained capacity in place and reports whether it
	// did anything.
	Compress() bool
}

// Config configures a Pool's capacity and behavior.
type Config struct {
	InitialCapacity int
	// MaxCapacity, if set, bounds the pool's total tracked instances
	// (idle + checked out). A nil MaxCapacity means unbounded admission;
	// compression then uses a heuristic trigger (see shouldOptimizeMemoryLocked).
	MaxCapacity *int
	PreWarm     bool
	// ValidateOnReturn runs Validate/IsReusable on return; failing either
	// destroys the instance instead of storing it.
	ValidateOnReturn bool
	// PressureThresholdPct is the idle/MaxCapacity percentage at or above
	// which a bounded pool is considered under pressure for compression.
	PressureThresholdPct float64
}

func (c Config) validate() error {
	if c.InitialCapacity < 0 {
		return allocator.NewInvalidConfiguration("pool: initial_capacity must be >= 0")
	}
	if c.MaxCapacity != nil {
		if *c.MaxCapacity <= 0 {
			return allocator.NewInvalidConfiguration("pool: max_capacity must be > 0 when set")
		}
		if *c.MaxCapacity < c.InitialCapacity {
			return allocator.NewInvalidConfiguration("pool: max_capacity must be >= initial_capacity")
		}
	}
	if c.PressureThresholdPct < 0 || c.PressureThresholdPct > 100 {
		return allocator.NewInvalidConfiguration("pool: pressure_threshold_pct must be in [0, 100]")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.PressureThresholdPct == 0 {
		c.PressureThresholdPct = 80
	}
	return c
}

// Stats reports the pool's own bookkeeping counters.
type Stats struct {
	Created              uint64
	Destroyed             uint64
	Hits                  uint64
	Misses                uint64
	CompressionAttempts   uint64
	SuccessfulCompressions uint64
	MemorySaved           uint64
}

// Pool is a bounded, single-threaded container of reusable Poolable
// instances. Callers sharing a Pool across goroutines must provide their
// own synchronization, per spec: the object pool is single-threaded by
// contract.
type Pool[T Poolable] struct {
	mu      sync.Mutex
	idle    []T
	factory func() T
	cfg     Config
	created int
	stats   Stats

	// recentIdleHigh is the highest idle count seen so far (it never
	// decreases), used by the unbounded-pool compression heuristic.
	recentIdleHigh int
}

// New constructs a Pool with the given capacity hint and factory, using
// default Config values (bounded neither, not pre-warmed).
func New[T Poolable](capacity int, factory func() T) *Pool[T] {
	p, err := WithConfig(Config{InitialCapacity: capacity}, factory)
	if err != nil {
		// capacity is always >= 0 from a non-negative int constructor
		// argument in every realistic caller, so WithConfig cannot fail
		// here; keep New infallible.
		panic(err)
	}
	return p
}

// WithConfig constructs a Pool per cfg, pre-warming InitialCapacity
// instances if cfg.PreWarm is set.
func WithConfig[T Poolable](cfg Config, factory func() T) (*Pool[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	p := &Pool[T]{
		idle:    make([]T, 0, cfg.InitialCapacity),
		factory: factory,
		cfg:     cfg,
	}

	if cfg.PreWarm {
		for i := 0; i < cfg.InitialCapacity; i++ {
			obj := factory()
			p.created++
			p.stats.Created++
			p.idle = append(p.idle, obj)
		}
	}

	return p, nil
}

// Handle is the RAII-style checkout guard returned by Get/TryGet: it owns
// the checked-out value exclusively until Close (which returns it to the
// pool) or Detach (which hands ownership to the caller permanently).
type Handle[T Poolable] struct {
	pool  *Pool[T]
	value T
	done  bool
}

// Value returns the checked-out instance. It remains valid until Close or
// Detach.
func (h *Handle[T]) Value() T { return h.value }

// Detach consumes the Handle and yields the value: it will not be
// returned to the pool.
func (h *Handle[T]) Detach() T {
	h.done = true
	return h.value
}

// Close returns the value to the pool (running validation and possible
// compression). It does nothing after Detach or a previous Close, so it is
// safe to call multiple times; Close never panics.
func (h *Handle[T]) Close() {
	if h.done {
		return
	}
	h.done = true
	h.pool.returnObject(h.value)
}

// Get pops an idle instance if available (a hit, freshly Reset); otherwise
// creates one via the factory (a miss), subject to MaxCapacity. Returns
// PoolExhausted if at MaxCapacity with no idle instance.
func (p *Pool[T]) Get() (*Handle[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.idle); n > 0 {
		obj := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.stats.Hits++
		obj.Reset()
		return &Handle[T]{pool: p, value: obj}, nil
	}

	p.stats.Misses++
	if p.cfg.MaxCapacity != nil && p.created >= *p.cfg.MaxCapacity {
		return nil, allocator.NewPoolExhausted()
	}

	obj := p.factory()
	p.created++
	p.stats.Created++
	return &Handle[T]{pool: p, value: obj}, nil
}

// TryGet pops an idle instance if available; it never creates one, and
// returns (nil, false) on an empty pool instead of an error.
func (p *Pool[T]) TryGet() (*Handle[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.idle)
	if n == 0 {
		return nil, false
	}
	obj := p.idle[n-1]
	p.idle = p.idle[:n-1]
	p.stats.Hits++
	obj.Reset()
	return &Handle[T]{pool: p, value: obj}, true
}

// Reserve pre-allocates n additional idle instances. If that would take the
// tracked total past MaxCapacity, it creates none and returns an
// InvalidConfiguration error.
func (p *Pool[T]) Reserve(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.MaxCapacity != nil && p.created+n > *p.cfg.MaxCapacity {
		return allocator.NewInvalidConfiguration("pool: reserve would exceed max_capacity")
	}
	for i := 0; i < n; i++ {
		obj := p.factory()
		p.created++
		p.stats.Created++
		p.idle = append(p.idle, obj)
	}
	return nil
}

// ShrinkTo destroys surplus idle instances until at most n remain idle.
func (p *Pool[T]) ShrinkTo(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.idle) > n {
		last := len(p.idle) - 1
		p.idle = p.idle[:last]
		p.created--
		p.stats.Destroyed++
	}
}

// Clear destroys every idle instance.
func (p *Pool[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Destroyed += uint64(len(p.idle))
	p.created -= len(p.idle)
	p.idle = p.idle[:0]
}

// Idle returns the number of currently idle instances.
func (p *Pool[T]) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Stats returns a snapshot of the pool's bookkeeping counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// returnObject is invoked by Handle.Close. It runs validation (if
// configured), destroys invalid/over-capacity instances, otherwise resets
// and stores the instance, then opportunistically compresses under
// pressure.
func (p *Pool[T]) returnObject(obj T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.ValidateOnReturn {
		if !obj.Validate() || !obj.IsReusable() {
			p.created--
			p.stats.Destroyed++
			return
		}
	}

	if p.cfg.MaxCapacity != nil && len(p.idle) >= *p.cfg.MaxCapacity {
		p.created--
		p.stats.Destroyed++
		return
	}

	obj.Reset()
	p.idle = append(p.idle, obj)

	if len(p.idle) > p.recentIdleHigh {
		p.recentIdleHigh = len(p.idle)
	}

	if p.shouldOptimizeMemoryLocked() {
		p.optimizeMemoryLocked()
	}
}

// shouldOptimizeMemoryLocked decides when idle memory is worth trimming: a
// bounded pool is under pressure once idle occupancy reaches PressureThresholdPct
// of MaxCapacity; an unbounded pool (MaxCapacity == nil) uses a heuristic
// — average idle instance size at or above 4KiB, idle count at least
// two-thirds of the idle high-water mark, and that mark at least 2.
func (p *Pool[T]) shouldOptimizeMemoryLocked() bool {
	if len(p.idle) == 0 {
		return false
	}
	if p.cfg.MaxCapacity != nil {
		pct := float64(len(p.idle)) / float64(*p.cfg.MaxCapacity) * 100
		return pct >= p.cfg.PressureThresholdPct
	}

	totalUsage := 0
	for _, obj := range p.idle {
		totalUsage += obj.MemoryUsage()
	}
	avgUsage := totalUsage / len(p.idle)
	return avgUsage >= 4096 && len(p.idle) >= 2*p.recentIdleHigh/3 && p.recentIdleHigh >= 2
}

// OptimizeMemory explicitly triggers compression of every idle instance
// that implements Compressible, regardless of the pressure heuristic.
// Returns the total bytes saved.
func (p *Pool[T]) OptimizeMemory() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.optimizeMemoryLocked()
}

func (p *Pool[T]) optimizeMemoryLocked() int {
	totalSaved := 0
	for i := range p.idle {
		compressible, ok := any(p.idle[i]).(Compressible)
		if !ok {
			continue
		}
		before := p.idle[i].MemoryUsage()
		p.stats.CompressionAttempts++
		if compressible.Compress() {
			p.stats.SuccessfulCompressions++
		}
		after := p.idle[i].MemoryUsage()
		if before > after {
			saved := before - after
			totalSaved += saved
			p.stats.MemorySaved += uint64(saved)
		}
	}
	return totalSaved
}

// TryOptimizeMemory compresses only if the pressure heuristic currently
// says the pool should; returns 0 if no optimization was performed.
func (p *Pool[T]) TryOptimizeMemory() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.shouldOptimizeMemoryLocked() {
		return 0
	}
	return p.optimizeMemoryLocked()
}
