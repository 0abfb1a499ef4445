package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// checkInvariants walks d's live tree from the root and asserts the
// structural invariants that must hold after any mutation: parent/child
// back-references agree, depths are exactly one more than the parent's,
// activeCountForTree equals the live count of the subtree it roots, and
// the parent's totalQueuedWeights equals the sum of the weights of
// children currently seated in its pseudo-time queue. It also asserts the
// retention set never exceeds its configured bound.
func checkInvariants(t *testing.T, d *Distributor) {
	t.Helper()
	assert.LessOrEqual(t, d.retentionHeap.size(), d.maxStateOnlySize)

	var walk func(n *node) int32
	walk = func(n *node) int32 {
		live := int32(0)
		if n.active {
			live = 1
		}

		queued := map[uint32]bool{}
		for _, c := range n.pseudoTimeQueue.items {
			queued[c.streamID] = true
		}
		var queuedWeightSum int64
		for _, c := range n.children {
			assert.Same(t, n, c.parent, "child %d's parent back-reference", c.streamID)
			assert.Equal(t, n.depth+1, c.depth, "child %d depth", c.streamID)
			if queued[c.streamID] {
				queuedWeightSum += int64(c.weight)
			}
			live += walk(c)
		}
		assert.Equal(t, queuedWeightSum, n.totalQueuedWeights, "node %d totalQueuedWeights", n.streamID)
		assert.Equal(t, live, n.activeCountForTree, "node %d activeCountForTree", n.streamID)
		return live
	}
	walk(d.root)
}
