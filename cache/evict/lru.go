package evict

import "container/list"

// LRU is a classic move-to-front Least-Recently-Used policy. It owns its
// own container/list rather than delegating to shard hooks, so it works
// identically whether the cache calling it is sharded or not.
type LRU[K comparable] struct {
	order *list.List
	index map[K]*list.Element
}

var _ Policy[int] = (*LRU[int])(nil)

// NewLRU constructs an empty LRU policy.
func NewLRU[K comparable]() *LRU[K] {
	return &LRU[K]{
		order: list.New(),
		index: make(map[K]*list.Element),
	}
}

// RecordAccess promotes k to the most-recently-used position.
func (p *LRU[K]) RecordAccess(k K) {
	if el, ok := p.index[k]; ok {
		p.order.MoveToFront(el)
	}
}

// RecordInsertion places a newly admitted key at the most-recently-used
// position.
func (p *LRU[K]) RecordInsertion(k K) {
	if el, ok := p.index[k]; ok {
		p.order.MoveToFront(el)
		return
	}
	p.index[k] = p.order.PushFront(k)
}

// RecordRemoval drops k from the ordering.
func (p *LRU[K]) RecordRemoval(k K) {
	if el, ok := p.index[k]; ok {
		p.order.Remove(el)
		delete(p.index, k)
	}
}

// SelectVictim returns the least-recently-used key.
func (p *LRU[K]) SelectVictim() (K, bool) {
	back := p.order.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	return back.Value.(K), true
}

// Clear drops all bookkeeping.
func (p *LRU[K]) Clear() {
	p.order.Init()
	p.index = make(map[K]*list.Element)
}

// Name identifies the policy.
func (p *LRU[K]) Name() string { return string(KindLRU) }
