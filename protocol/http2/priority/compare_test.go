package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPseudoTimeLessHandlesWraparound(t *testing.T) {
	a := newNode(1)
	b := newNode(2)

	a.pseudoTimeToWrite = 10
	b.pseudoTimeToWrite = 20
	assert.True(t, pseudoTimeLess(a, b))
	assert.False(t, pseudoTimeLess(b, a))

	// near int64 overflow, the signed subtraction must still order
	// correctly instead of flipping sign spuriously.
	a.pseudoTimeToWrite = 1<<63 - 5
	b.pseudoTimeToWrite = -(1 << 63) + 5
	assert.True(t, pseudoTimeLess(a, b))
}

func TestStateOnlyLessRetentionExample(t *testing.T) {
	// Worked scenario: ids 3, 5, 7, 9 all equally live (never activated),
	// all at the same depth, retention cap of two retains {7, 9}: the
	// two largest ids, not the two smallest.
	ids := []uint32{3, 5, 7, 9}
	nodes := make(map[uint32]*node, len(ids))
	for _, id := range ids {
		n := newNode(id)
		n.depth = 1
		nodes[id] = n
	}

	h := newIndexedMinHeap(stateOnlyLess,
		func(n *node) int { return n.retentionHeapIndex },
		func(n *node, i int) { n.retentionHeapIndex = i })
	for _, id := range ids {
		h.enqueue(nodes[id])
	}

	for h.size() > 2 {
		h.poll()
	}

	remaining := map[uint32]bool{}
	for h.size() > 0 {
		remaining[h.poll().streamID] = true
	}
	assert.Equal(t, map[uint32]bool{7: true, 9: true}, remaining)
}

func TestStateOnlyLessEverActivatedOutranksDepthAndID(t *testing.T) {
	activated := newNode(100)
	activated.everActivated = true
	activated.depth = 5

	fresh := newNode(1)
	fresh.depth = 1

	// activated is evicted before fresh (never activated), even though
	// fresh is shallower and has the smaller stream id.
	assert.True(t, stateOnlyLess(activated, fresh))
	assert.False(t, stateOnlyLess(fresh, activated))
}

func TestStateOnlyLessDepthBreaksEverActivatedTie(t *testing.T) {
	shallow := newNode(1)
	shallow.depth = 1
	deep := newNode(2)
	deep.depth = 4

	assert.True(t, stateOnlyLess(shallow, deep))
}
