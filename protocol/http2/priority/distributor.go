package priority

// DefaultAllocationQuantum is the allocation quantum a freshly constructed
// Distributor starts with: the minimum byte allotment per scheduling step,
// amortizing overhead and guaranteeing forward progress for small streams.
const DefaultAllocationQuantum int32 = 1024

var _ Listener = (*Distributor)(nil)

// Distributor holds the connection's priority dependency tree and runs
// the weighted fair queueing walk that turns a byte budget and a Writer
// into per-stream write calls. It is not safe for concurrent use; every
// method must run on the goroutine that constructed it (enforced by an
// affinity check that runs in every build — see SPEC_FULL.md §5).
type Distributor struct {
	root  *node
	nodes map[uint32]*node

	retentionHeap    *indexedMinHeap
	maxStateOnlySize int

	allocationQuantum int32

	conn    Connection
	propKey any

	aff affinity
}

// NewDistributor constructs a Distributor rooted at conn's connection
// stream and registers it as a stream lifecycle listener. maxStateOnlySize
// bounds the priority-only retention set (§3 I6) and must be >= 0.
func NewDistributor(conn Connection, maxStateOnlySize int) (*Distributor, error) {
	if maxStateOnlySize < 0 {
		return nil, newInvalidArgument("priority: maxStateOnlySize must be >= 0, got %d", maxStateOnlySize)
	}

	d := &Distributor{
		nodes:             make(map[uint32]*node),
		maxStateOnlySize:  maxStateOnlySize,
		allocationQuantum: DefaultAllocationQuantum,
		conn:              conn,
		aff:               newAffinity(),
	}
	d.retentionHeap = newIndexedMinHeap(stateOnlyLess,
		func(n *node) int { return n.retentionHeapIndex },
		func(n *node, i int) { n.retentionHeapIndex = i })

	d.root = newNode(0)
	d.root.depth = 0
	d.root.stream = conn.ConnectionStream()
	d.nodes[0] = d.root

	d.propKey = conn.NewKey()
	conn.AddListener(d)
	return d, nil
}

// SetAllocationQuantum changes the minimum per-step byte allotment. q must
// be > 0.
func (d *Distributor) SetAllocationQuantum(q int32) error {
	d.aff.check()
	if q <= 0 {
		return newInvalidArgument("priority: allocation quantum must be > 0, got %d", q)
	}
	d.allocationQuantum = q
	return nil
}

func clampToInt32(v int64) int32 {
	const maxI32 = int64(1<<31 - 1)
	const minI32 = -int64(1 << 31)
	if v > maxI32 {
		return int32(maxI32)
	}
	if v < minI32 {
		return int32(minI32)
	}
	return int32(v)
}

func clampWeight(w uint16) uint16 {
	if w < 1 {
		return 1
	}
	if w > 256 {
		return 256
	}
	return w
}

// nodeFor resolves s's priority node, preferring the property slot it was
// attached under in OnStreamAdded and falling back to the id-keyed map
// (the two storage strategies design note 9 allows).
func (d *Distributor) nodeFor(s StreamRef) *node {
	if v := s.Get(d.propKey); v != nil {
		if n, ok := v.(*node); ok {
			return n
		}
	}
	if n, ok := d.nodes[s.ID()]; ok {
		return n
	}
	return nil
}

func (d *Distributor) reachesRoot(n *node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// UpdateStreamableBytes folds a per-stream write-readiness update: a
// stream is active iff it has a pending frame and a non-negative
// flow-control window.
func (d *Distributor) UpdateStreamableBytes(stream StreamRef, n int32, hasFrame bool, window int32) {
	d.aff.check()
	nd := d.nodeFor(stream)
	if nd == nil {
		return
	}
	d.updateStreamableBytesForNode(nd, n, hasFrame, window)
}

func (d *Distributor) updateStreamableBytesForNode(n *node, bytes int32, hasFrame bool, window int32) {
	isActive := hasFrame && window >= 0
	if isActive != n.active {
		n.active = isActive
		delta := int32(-1)
		if isActive {
			delta = 1
		}
		d.activeCountChangeForTree(n, delta)
	}
	n.streamableBytes = bytes
}

// activeCountChangeForTree walks from n up to the root, applying delta to
// every ancestor's activeCountForTree (invariant I3) and re-seating any
// node whose own active subtree just crossed the zero boundary in its
// parent's pseudo-time queue.
func (d *Distributor) activeCountChangeForTree(n *node, delta int32) {
	for cur := n; cur != nil; cur = cur.parent {
		before := cur.activeCountForTree
		cur.activeCountForTree += delta
		after := cur.activeCountForTree

		if cur.parent == nil {
			continue
		}
		switch {
		case before <= 0 && after > 0:
			if !cur.distributing {
				offerAndInitializePseudoTime(cur.parent, cur)
			}
		case before > 0 && after <= 0:
			removeFromParentQueue(cur.parent, cur)
		}
	}
}

// Distribute emits writes up to maxBytes and reports whether any active
// stream remains afterward.
func (d *Distributor) Distribute(maxBytes int32, w Writer) (bool, error) {
	d.aff.check()
	if d.root.activeCountForTree == 0 {
		return false, nil
	}
	for {
		old := d.root.activeCountForTree
		sent, err := d.distributeToChildren(maxBytes, w, d.root)
		maxBytes -= sent
		if err != nil {
			return d.root.activeCountForTree != 0, err
		}
		if d.root.activeCountForTree == 0 {
			return false, nil
		}
		if maxBytes <= 0 && d.root.activeCountForTree == old {
			return true, nil
		}
	}
}

// distribute services a single node: if it's an active stream, it writes
// directly; otherwise it recurses into distributeToChildren.
func (d *Distributor) distribute(maxBytes int32, w Writer, n *node) (int32, error) {
	if n.active {
		amount := n.streamableBytes
		if amount > maxBytes {
			amount = maxBytes
		}
		if amount < 0 {
			amount = 0
		}
		if err := w.Write(n.stream, amount); err != nil {
			return 0, wrapWriterFailure(n.streamID, err)
		}
		if amount == 0 && maxBytes != 0 {
			// Budget wasn't the reason we wrote nothing; this stream has
			// nothing more to offer right now. Stop it from blocking its
			// siblings.
			d.updateStreamableBytesForNode(n, n.streamableBytes, false, 0)
		}
		return amount, nil
	}
	return d.distributeToChildren(maxBytes, w, n)
}

// distributeToChildren is the WFQ scheduling step: pick the child with
// the smallest pseudo-time deadline, hand it a quota sized to let it catch
// up to the next deadline in line, recurse, then advance pseudo-time and
// re-seat the child for its next turn.
func (d *Distributor) distributeToChildren(maxBytes int32, w Writer, n *node) (int32, error) {
	W := n.totalQueuedWeights
	child := n.pseudoTimeQueue.poll()
	if child == nil {
		return 0, nil
	}
	n.totalQueuedWeights -= int64(child.weight)
	next := n.pseudoTimeQueue.peek()

	child.distributing = true

	var quota int32
	if next == nil {
		quota = maxBytes
	} else {
		var allot int64
		if W > 0 {
			allot = (next.pseudoTimeToWrite-child.pseudoTimeToWrite)*int64(child.weight)/W + int64(d.allocationQuantum)
		} else {
			allot = int64(d.allocationQuantum)
		}
		quota = clampToInt32(allot)
		if quota > maxBytes {
			quota = maxBytes
		}
	}

	sent, err := d.distribute(quota, w, child)

	n.pseudoTime += int64(sent)
	deadline := child.pseudoTimeToWrite
	if n.pseudoTime < deadline {
		deadline = n.pseudoTime
	}
	if child.weight > 0 {
		deadline += int64(sent) * W / int64(child.weight)
	}
	child.pseudoTimeToWrite = deadline

	child.distributing = false
	if child.activeCountForTree > 0 {
		// Re-seat with the deadline just computed (not n.pseudoTime).
		n.pseudoTimeQueue.enqueue(child)
		n.totalQueuedWeights += int64(child.weight)
	}

	return sent, err
}

func (d *Distributor) createRetained(id uint32) *node {
	n := newNode(id)
	d.nodes[id] = n
	d.retentionHeap.enqueue(n)
	return n
}

// UpdateDependencyTree applies a PRIORITY frame: child now depends on
// parent with the given weight, exclusively or not. Unknown ids are
// lazily created as priority-only retained nodes unless retention is
// disabled, in which case the frame is silently dropped.
func (d *Distributor) UpdateDependencyTree(childID, parentID uint32, weight uint16, exclusive bool) {
	d.aff.check()

	child, childKnown := d.nodes[childID]
	if !childKnown {
		if d.maxStateOnlySize == 0 {
			return
		}
		child = d.createRetained(childID)
	}
	parent, parentKnown := d.nodes[parentID]
	if !parentKnown {
		if d.maxStateOnlySize == 0 {
			return
		}
		parent = d.createRetained(parentID)
	}

	weight = clampWeight(weight)

	otherChildren := 0
	for id := range parent.children {
		if id != child.streamID {
			otherChildren++
		}
	}
	willReparent := child.parent != parent || (exclusive && otherChildren > 0)

	// Apply the weight delta to whatever parent currently has child's
	// weight counted into its totalQueuedWeights, before either changing
	// child.weight or reparenting. This must happen regardless of
	// willReparent: when a reparent follows, notifyParentChanged's
	// removeFromParentQueue(oldParent, child) subtracts child's weight
	// from oldParent using child's *current* (by then already new)
	// weight, so oldParent's total must already reflect the new weight
	// or that subtraction leaves it wrong (I2).
	if child.activeCountForTree > 0 && child.parent != nil {
		child.parent.totalQueuedWeights += int64(weight) - int64(child.weight)
	}

	if !willReparent {
		child.weight = weight
		d.trimRetention()
		return
	}

	child.weight = weight

	var events []parentChangedEvent
	if parent.isDescendantOf(child) {
		// Reverse the cycle: lift parent out from under child first.
		if child.parent != nil {
			events = takeChild(child.parent, parent, false, events)
		}
	}
	events = takeChild(parent, child, exclusive, events)
	d.notifyParentChanged(events)
	d.trimRetention()
}

// notifyParentChanged re-sorts every affected node in the retention heap
// (its depth may have changed) and, for a node that ends up with a live
// parent and a non-empty active subtree, re-seats it into the new
// parent's pseudo-time queue and propagates its active-subtree count up
// both the old and new ancestor chains so invariant I3 holds everywhere.
func (d *Distributor) notifyParentChanged(events []parentChangedEvent) {
	for _, e := range events {
		child, oldParent := e.child, e.oldParent

		d.retentionHeap.priorityChanged(child)

		if oldParent != nil {
			removeFromParentQueue(oldParent, child)
			if child.activeCountForTree > 0 {
				propagateActiveCountDelta(oldParent, -child.activeCountForTree)
			}
		}

		if child.parent != nil {
			if child.activeCountForTree > 0 {
				propagateActiveCountDelta(child.parent, child.activeCountForTree)
				if !child.distributing {
					offerAndInitializePseudoTime(child.parent, child)
				}
			}
		}
	}
}

// trimRetention evicts the lowest-ranked (by StateOnly) retained nodes
// until the set's size is back within maxStateOnlySize (I6).
func (d *Distributor) trimRetention() {
	for d.retentionHeap.size() > d.maxStateOnlySize {
		victim := d.retentionHeap.poll()
		if victim == nil {
			return
		}
		d.unlinkFromTreeParent(victim)
		delete(d.nodes, victim.streamID)
	}
}

// unlinkFromTreeParent detaches n from its parent (if any) the way
// removeChild does, promoting n's own children onto that parent. A node
// that has no parent is discarded as is: any children it still has are
// orphaned to the parentless state.
func (d *Distributor) unlinkFromTreeParent(n *node) {
	if n.parent != nil {
		d.notifyParentChanged(removeChild(n.parent, n, nil))
	}
	for _, c := range n.children {
		c.parent = nil
		c.depth = depthUnparented
	}
}

// OnStreamAdded attaches stream to its priority node, creating one as a
// direct child of the connection root if none existed yet, or promoting
// an existing retained node out of the retention set.
func (d *Distributor) OnStreamAdded(s StreamRef) {
	d.aff.check()
	id := s.ID()

	n, known := d.nodes[id]
	if !known {
		n = newNode(id)
		d.nodes[id] = n
	} else if n.retentionHeapIndex != -1 {
		d.retentionHeap.remove(n)
	}
	if n.parent == nil && n != d.root {
		events := takeChild(d.root, n, false, nil)
		d.notifyParentChanged(events)
	}

	n.stream = s
	s.Set(d.propKey, n)
	if s.State() == StateReserved {
		n.everActivated = true
	}
}

// OnStreamActive marks the stream's node as having reached RESERVED or
// ACTIVE at least once; the flag is sticky for the node's lifetime.
func (d *Distributor) OnStreamActive(s StreamRef) {
	d.aff.check()
	if n := d.nodeFor(s); n != nil {
		n.everActivated = true
	}
}

// OnStreamClosed folds the stream out of scheduling without removing its
// priority node: it may still carry dependency information for streams
// that reference it as a parent.
func (d *Distributor) OnStreamClosed(s StreamRef) {
	d.aff.check()
	n := d.nodeFor(s)
	if n == nil {
		return
	}
	d.updateStreamableBytesForNode(n, 0, false, 0)
	n.stream = nil
}

// OnStreamRemoved drops the node from the live tree, demoting it into the
// state-only retention set when doing so preserves more scheduling
// information than what retention already holds.
func (d *Distributor) OnStreamRemoved(s StreamRef) {
	d.aff.check()
	n := d.nodeFor(s)
	if n == nil {
		return
	}
	n.stream = nil

	if d.maxStateOnlySize == 0 {
		d.detachAndForget(n)
		return
	}

	if d.retentionHeap.size() >= d.maxStateOnlySize {
		lowest := d.retentionHeap.peek()
		if lowest != nil && stateOnlyLess(n, lowest) {
			// n is even more evictable than the worst node retention
			// already holds: not worth keeping.
			d.detachAndForget(n)
			return
		}
		if lowest != nil {
			d.retentionHeap.remove(lowest)
			d.unlinkFromTreeParent(lowest)
			delete(d.nodes, lowest.streamID)
		}
	}

	if n.parent != nil {
		events := removeChild(n.parent, n, nil)
		d.notifyParentChanged(events)
	}
	d.retentionHeap.enqueue(n)
}

func (d *Distributor) detachAndForget(n *node) {
	if n.parent != nil {
		events := removeChild(n.parent, n, nil)
		d.notifyParentChanged(events)
	}
	delete(d.nodes, n.streamID)
}
