package priority

// depthUnparented marks a node with no parent (other than the root itself,
// whose depth is 0) as maximally deep for the purposes of the state-only
// comparator, so a freshly detached node is evicted last on depth alone
// only once nothing shallower remains.
const depthUnparented = int32(1<<31 - 1)

// defaultWeight is the weight assigned to a stream that never received an
// explicit PRIORITY frame.
const defaultWeight = 16

// node is a PriorityNode: the per-stream scheduling state described in
// SPEC_FULL.md §3. One exists for every stream id ever observed, subject
// to the retention limit enforced by the Distributor.
type node struct {
	streamID uint32
	stream   StreamRef // nil if priority-only or closed

	weight uint16 // 1..256

	parent   *node
	children map[uint32]*node

	streamableBytes int32
	active          bool
	distributing    bool
	everActivated   bool

	depth int32

	activeCountForTree int32

	pseudoTime         int64
	pseudoTimeToWrite  int64
	totalQueuedWeights int64

	pseudoTimeQueue *indexedMinHeap

	// parentHeapIndex is this node's slot in parent.pseudoTimeQueue, -1
	// when not enqueued there.
	parentHeapIndex int
	// retentionHeapIndex is this node's slot in the distributor's
	// retention heap, -1 when not held there.
	retentionHeapIndex int
}

func newNode(id uint32) *node {
	n := &node{
		streamID:           id,
		weight:             defaultWeight,
		children:           make(map[uint32]*node),
		depth:              depthUnparented,
		parentHeapIndex:    -1,
		retentionHeapIndex: -1,
	}
	n.pseudoTimeQueue = newIndexedMinHeap(pseudoTimeLess,
		func(c *node) int { return c.parentHeapIndex },
		func(c *node, i int) { c.parentHeapIndex = i })
	return n
}

// isDescendantOf reports whether n has ancestor somewhere on its parent
// chain. O(depth).
func (n *node) isDescendantOf(ancestor *node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// removeFromParentQueue removes n from its parent's pseudo-time queue (if
// currently enqueued there) and corrects the parent's total queued weight
// bookkeeping (invariant I2).
func removeFromParentQueue(parent, n *node) {
	if n.parentHeapIndex == -1 {
		return
	}
	parent.pseudoTimeQueue.remove(n)
	parent.totalQueuedWeights -= int64(n.weight)
}

// offerAndInitializePseudoTime seats n into parent's pseudo-time queue,
// stamping its next deadline at the parent's current pseudo-time so it
// competes fairly against siblings that have already been serviced.
func offerAndInitializePseudoTime(parent, n *node) {
	n.pseudoTimeToWrite = parent.pseudoTime
	parent.pseudoTimeQueue.enqueue(n)
	parent.totalQueuedWeights += int64(n.weight)
}

// propagateActiveCountDelta adds delta to n.activeCountForTree and every
// ancestor's, maintaining invariant I3 across a subtree boundary change.
func propagateActiveCountDelta(n *node, delta int32) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.activeCountForTree += delta
	}
}
