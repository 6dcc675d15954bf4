package evict

import (
	"container/list"
	"time"
)

// Clock abstracts time so tests can control it deterministically instead
// of sleeping on the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock, backed by time.Now.
var SystemClock Clock = systemClock{}

// TTL wraps another policy as a fallback and prefers evicting expired
// entries over whatever the fallback would choose: SelectVictim returns the
// oldest entry if it has exceeded ttl, otherwise delegates to fallback.
type TTL[K comparable] struct {
	ttl      time.Duration
	clock    Clock
	fallback Policy[K]

	order *list.List // oldest at back, ordered by insertion time
	index map[K]*list.Element
}

var _ Policy[int] = (*TTL[int])(nil)

// entry stored in the insertion-order list.
type ttlEntry[K comparable] struct {
	key       K
	insertedAt time.Time
}

// NewTTL constructs a TTL policy with the given expiry duration. A nil
// fallback or clock defaults to LRU and SystemClock respectively.
func NewTTL[K comparable](ttl time.Duration, clock Clock, fallback Policy[K]) *TTL[K] {
	if clock == nil {
		clock = SystemClock
	}
	if fallback == nil {
		fallback = NewLRU[K]()
	}
	return &TTL[K]{
		ttl:      ttl,
		clock:    clock,
		fallback: fallback,
		order:    list.New(),
		index:    make(map[K]*list.Element),
	}
}

// RecordAccess forwards to the fallback policy; access does not refresh
// expiry (TTL is absolute from insertion).
func (p *TTL[K]) RecordAccess(k K) {
	p.fallback.RecordAccess(k)
}

// RecordInsertion stamps k's insertion time and forwards to fallback.
func (p *TTL[K]) RecordInsertion(k K) {
	if el, ok := p.index[k]; ok {
		p.order.Remove(el)
	}
	p.index[k] = p.order.PushFront(ttlEntry[K]{key: k, insertedAt: p.clock.Now()})
	p.fallback.RecordInsertion(k)
}

// RecordRemoval drops k from expiry tracking and the fallback.
func (p *TTL[K]) RecordRemoval(k K) {
	if el, ok := p.index[k]; ok {
		p.order.Remove(el)
		delete(p.index, k)
	}
	p.fallback.RecordRemoval(k)
}

// SelectVictim returns the oldest entry if it has exceeded ttl; otherwise
// it falls back to the wrapped policy's choice.
func (p *TTL[K]) SelectVictim() (K, bool) {
	if back := p.order.Back(); back != nil {
		e := back.Value.(ttlEntry[K])
		if p.clock.Now().Sub(e.insertedAt) >= p.ttl {
			return e.key, true
		}
	}
	return p.fallback.SelectVictim()
}

// Clear drops all bookkeeping, including the fallback's.
func (p *TTL[K]) Clear() {
	p.order.Init()
	p.index = make(map[K]*list.Element)
	p.fallback.Clear()
}

// Name identifies the policy, naming its fallback.
func (p *TTL[K]) Name() string { return string(KindTTL) + "(" + p.fallback.Name() + ")" }
