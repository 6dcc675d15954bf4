package evict

import "container/list"

// LFU is a classic O(1) Least-Frequently-Used policy: keys are bucketed by
// access frequency, and the minimum non-empty bucket is tracked so that
// SelectVictim never scans. Within a bucket, ties break by recency of
// entry into that bucket (oldest first), per spec.
type LFU[K comparable] struct {
	freq    map[K]int
	buckets map[int]*list.List
	nodes   map[K]*list.Element
	minFreq int
}

var _ Policy[int] = (*LFU[int])(nil)

// NewLFU constructs an empty LFU policy.
func NewLFU[K comparable]() *LFU[K] {
	return &LFU[K]{
		freq:    make(map[K]int),
		buckets: make(map[int]*list.List),
		nodes:   make(map[K]*list.Element),
	}
}

func (p *LFU[K]) bucket(f int) *list.List {
	b, ok := p.buckets[f]
	if !ok {
		b = list.New()
		p.buckets[f] = b
	}
	return b
}

func (p *LFU[K]) bump(k K) {
	f := p.freq[k]
	if el, ok := p.nodes[k]; ok {
		p.bucket(f).Remove(el)
		if f == p.minFreq && p.bucket(f).Len() == 0 {
			p.minFreq++
		}
	}
	p.freq[k] = f + 1
	p.nodes[k] = p.bucket(f + 1).PushFront(k)
}

// RecordAccess increments k's frequency, moving it to the front of its new
// bucket.
func (p *LFU[K]) RecordAccess(k K) {
	if _, ok := p.freq[k]; ok {
		p.bump(k)
	}
}

// RecordInsertion admits k at frequency 1 and resets minFreq to 1.
func (p *LFU[K]) RecordInsertion(k K) {
	if _, ok := p.freq[k]; ok {
		p.bump(k)
		return
	}
	p.freq[k] = 1
	p.nodes[k] = p.bucket(1).PushFront(k)
	p.minFreq = 1
}

// RecordRemoval drops k from all bookkeeping.
func (p *LFU[K]) RecordRemoval(k K) {
	f, ok := p.freq[k]
	if !ok {
		return
	}
	if el, ok := p.nodes[k]; ok {
		p.bucket(f).Remove(el)
	}
	delete(p.freq, k)
	delete(p.nodes, k)
}

// SelectVictim returns the least-frequently-used key, breaking ties by
// oldest entry into the minimum-frequency bucket.
func (p *LFU[K]) SelectVictim() (K, bool) {
	b, ok := p.buckets[p.minFreq]
	if !ok || b.Len() == 0 {
		// minFreq tracking can lag after RecordRemoval; fall back to a scan.
		best := -1
		for f, bucket := range p.buckets {
			if bucket.Len() == 0 {
				continue
			}
			if best == -1 || f < best {
				best = f
			}
		}
		if best == -1 {
			var zero K
			return zero, false
		}
		p.minFreq = best
		b = p.buckets[best]
	}
	back := b.Back()
	if back == nil {
		var zero K
		return zero, false
	}
	return back.Value.(K), true
}

// Clear drops all bookkeeping.
func (p *LFU[K]) Clear() {
	p.freq = make(map[K]int)
	p.buckets = make(map[int]*list.List)
	p.nodes = make(map[K]*list.Element)
	p.minFreq = 0
}

// Name identifies the policy.
func (p *LFU[K]) Name() string { return string(KindLFU) }
