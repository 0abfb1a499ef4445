package priority

import "container/heap"

// indexedMinHeap is a binary min-heap over *node keyed by a caller-supplied
// comparator. Each node's current slot is tracked through caller-supplied
// accessors so remove-by-node and priority-changed reheaps run in O(log n)
// instead of a linear scan, the same way a container/heap-backed priority
// queue tracks its own index field on each element (compare
// andrewortman-workqueue's priorityHeap.idxPrio, generalized here to a
// pluggable accessor so one heap type can serve both the per-node
// parent-queue identity and the distributor-wide retention-heap identity).
//
// A node is never present twice in the same heap.
type indexedMinHeap struct {
	items    []*node
	less     func(a, b *node) bool
	getIndex func(n *node) int
	setIndex func(n *node, i int)
}

func newIndexedMinHeap(less func(a, b *node) bool, getIndex func(*node) int, setIndex func(*node, int)) *indexedMinHeap {
	return &indexedMinHeap{less: less, getIndex: getIndex, setIndex: setIndex}
}

// container/heap.Interface

func (h *indexedMinHeap) Len() int { return len(h.items) }

func (h *indexedMinHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }

func (h *indexedMinHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.setIndex(h.items[i], i)
	h.setIndex(h.items[j], j)
}

func (h *indexedMinHeap) Push(x any) {
	n := x.(*node)
	h.setIndex(n, len(h.items))
	h.items = append(h.items, n)
}

func (h *indexedMinHeap) Pop() any {
	old := h.items
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	h.items = old[:last]
	h.setIndex(n, -1)
	return n
}

// public contract

func (h *indexedMinHeap) size() int { return len(h.items) }

func (h *indexedMinHeap) enqueue(n *node) {
	if h.getIndex(n) != -1 {
		return // never enqueue the same node twice
	}
	heap.Push(h, n)
}

func (h *indexedMinHeap) peek() *node {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

func (h *indexedMinHeap) poll() *node {
	if len(h.items) == 0 {
		return nil
	}
	return heap.Pop(h).(*node)
}

// remove extracts n from the heap in O(log n) using its stored index.
// No-op if n is not currently enqueued in this heap.
func (h *indexedMinHeap) remove(n *node) {
	i := h.getIndex(n)
	if i < 0 || i >= len(h.items) || h.items[i] != n {
		return
	}
	heap.Remove(h, i)
}

// priorityChanged re-sifts n in place after its sort key changed, without
// removing and re-enqueuing it.
func (h *indexedMinHeap) priorityChanged(n *node) {
	i := h.getIndex(n)
	if i < 0 || i >= len(h.items) || h.items[i] != n {
		return
	}
	heap.Fix(h, i)
}
