// Package topk provides a bounded selection structure that keeps the k
// smallest (id, score) pairs out of an arbitrarily long stream, without
// materializing the full stream. Callers looking for the k largest of
// some value feed in its negation.
package topk

import "container/heap"

// Item pairs an identifier with the score it was added under.
type Item struct {
	ID    uint32
	Score float32
}

// less defines the total order used for tie-breaking and for the final
// sorted output: smaller score first, and for equal scores, smaller id
// first.
func less(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID < b.ID
}

// maxHeap is a container/heap max-heap (by the `less` order above) over
// the currently kept items, so the worst kept item is always at the root
// and is O(1) to inspect.
type maxHeap []Item

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return less(h[j], h[i]) } // inverted: root = max
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(Item)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Selector keeps at most k items, those with the smallest scores seen so
// far. k is fixed at construction; memory use is O(k).
type Selector struct {
	k int
	h maxHeap
}

// New constructs a Selector bounded to k items.
func New(k int) *Selector {
	return &Selector{k: k}
}

// Add offers item to the selector. It is kept if the buffer is not yet
// full, or if item.Score is strictly less than the current worst kept
// score — in which case the current worst is dropped.
func (s *Selector) Add(item Item) {
	if s.k <= 0 {
		return
	}
	if len(s.h) < s.k {
		heap.Push(&s.h, item)
		return
	}
	if item.Score < s.h[0].Score {
		heap.Pop(&s.h)
		heap.Push(&s.h, item)
	}
}

// Len returns the number of items currently kept.
func (s *Selector) Len() int { return len(s.h) }

// IntoSorted returns a sorted copy of the kept items in ascending order
// of score, smaller id first on ties. The selector itself is left
// unchanged and can keep accepting items.
func (s *Selector) IntoSorted() []Item {
	out := make([]Item, len(s.h))
	copy(out, s.h)
	// Selection sort via repeated max-pop would also work, but a plain
	// sort over the (small, k-bounded) slice is simpler and just as fast.
	insertionSortAscending(out)
	return out
}

func insertionSortAscending(items []Item) {
	for i := 1; i < len(items); i++ {
		v := items[i]
		j := i - 1
		for j >= 0 && less(v, items[j]) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = v
	}
}
