// Package topk implements a fixed-capacity top-k selection primitive: a
// bounded min-heap that keeps the k highest-scoring entries seen from a
// stream, rejecting anything worse than the current worst kept entry in
// O(log k) time and O(k) memory.
package topk

import "container/heap"

// Scored is anything that can be compared for top-k selection. It is
// implemented by llr.ScoredItem and by the recommend package's counted-item
// type, which is why the heap is not hard-wired to llr.ScoredItem directly.
type Scored interface {
	// LessThan reports whether the receiver should be considered "worse"
	// than other for ranking purposes — the root of the min-heap is the
	// entry for which LessThan returns true most often, i.e. the smallest.
	LessThan(other Scored) bool
}

// entries is a container/heap.Interface over a slice of Scored, ordered so
// the root (index 0) is always the minimum — the "worst kept" entry.
type entries []Scored

func (e entries) Len() int            { return len(e) }
func (e entries) Less(i, j int) bool  { return e[i].LessThan(e[j]) }
func (e entries) Swap(i, j int)       { e[i], e[j] = e[j], e[i] }
func (e *entries) Push(x interface{}) { *e = append(*e, x.(Scored)) }
func (e *entries) Pop() interface{} {
	old := *e
	n := len(old)
	item := old[n-1]
	*e = old[:n-1]
	return item
}

// Heap is a fixed-capacity min-heap: once Len() reaches the configured
// capacity, pushing a new entry either replaces the current minimum (if the
// new entry outranks it) or is dropped.
type Heap struct {
	capacity int
	data     entries
}

// New returns an empty Heap that keeps at most capacity entries.
func New(capacity int) *Heap {
	return &Heap{capacity: capacity, data: make(entries, 0, capacity)}
}

// Len reports how many entries are currently held.
func (h *Heap) Len() int { return h.data.Len() }

// Cap reports the configured capacity.
func (h *Heap) Cap() int { return h.capacity }

// Offer considers item for inclusion in the top-k set. If the heap has not
// yet reached capacity, item is always kept. Otherwise item replaces the
// current worst-kept entry only if item strictly outranks it — ties never
// displace an incumbent.
func (h *Heap) Offer(item Scored) {
	if h.data.Len() < h.capacity {
		heap.Push(&h.data, item)
		return
	}
	if h.capacity == 0 {
		return
	}
	worst := h.data[0]
	if worst.LessThan(item) {
		h.data[0] = item
		heap.Fix(&h.data, 0)
	}
}

// Reset empties the heap so it can be reused for a different row without a
// fresh allocation.
func (h *Heap) Reset() {
	h.data = h.data[:0]
}

// Items returns the kept entries in no particular order — callers that only
// need the item identities (as the indicator-set contract requires) should
// use this rather than relying on heap order.
func (h *Heap) Items() []Scored {
	out := make([]Scored, len(h.data))
	copy(out, h.data)
	return out
}
