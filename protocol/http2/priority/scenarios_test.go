package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioCycleReversal exercises a PRIORITY frame that would
// otherwise create a cycle: stream 1 depends on stream 2, then a later
// frame makes stream 2 depend on stream 1. RFC 7540 §5.3.3 resolves this
// by first lifting the old parent (1) out from under the new child (2)
// before reparenting, rather than rejecting the frame.
func TestScenarioCycleReversal(t *testing.T) {
	d, conn := newTestDistributor(t, 5)
	conn.open(1)
	conn.open(2)

	d.UpdateDependencyTree(2, 1, 16, false) // 2 depends on 1
	checkInvariants(t, d)
	require.Same(t, d.nodes[1], d.nodes[2].parent)

	d.UpdateDependencyTree(1, 2, 16, false) // 1 depends on 2: would cycle
	checkInvariants(t, d)

	n1, n2 := d.nodes[1], d.nodes[2]
	assert.Same(t, n2, n1.parent)
	assert.Same(t, d.root, n2.parent)
	assert.False(t, n1.isDescendantOf(n1))
	assert.False(t, n2.isDescendantOf(n2))
}

// TestScenarioWeightedFairnessUnderContention checks that two streams of
// equal weight competing for a constrained budget each make forward
// progress roughly evenly over several scheduling rounds, rather than one
// starving the other.
func TestScenarioWeightedFairnessUnderContention(t *testing.T) {
	d, conn := newTestDistributor(t, 5)
	s1 := conn.open(1)
	s2 := conn.open(2)
	activate(d, s1, 1<<20)
	activate(d, s2, 1<<20)

	w := &fakeWriter{}
	var total int32
	for i := 0; i < 50; i++ {
		sent, err := d.distributeToChildren(600, w, d.root)
		require.NoError(t, err)
		total += sent
	}

	var sum1, sum2 int32
	for _, wr := range w.writes {
		if wr.streamID == 1 {
			sum1 += wr.n
		} else {
			sum2 += wr.n
		}
	}
	assert.InDelta(t, float64(sum1), float64(sum2), float64(total)*0.15)
	checkInvariants(t, d)
}

// TestScenarioInactiveStreamDoesNotBlockSiblings verifies that a stream
// with no streamable bytes is absent from its parent's pseudo-time queue
// and consumes no scheduling turns, letting an active sibling take the
// whole budget.
func TestScenarioInactiveStreamDoesNotBlockSiblings(t *testing.T) {
	d, conn := newTestDistributor(t, 5)
	s1 := conn.open(1)
	s2 := conn.open(2)
	activate(d, s1, 1000)
	// s2 never becomes active: no UpdateStreamableBytes call.
	_ = s2

	w := &fakeWriter{}
	sent, err := d.distributeToChildren(1000, w, d.root)
	require.NoError(t, err)
	assert.Equal(t, int32(1000), sent)
	require.Len(t, w.writes, 1)
	assert.Equal(t, uint32(1), w.writes[0].streamID)
}

// TestScenarioBlockedParentStillServesActiveChild verifies that an
// intermediate node which is itself never backed by an active stream
// (no PriorityNode.active of its own — it only exists as dependency
// structure) does not block a genuinely active descendant from being
// scheduled: distribute recurses straight through it into its children.
func TestScenarioBlockedParentStillServesActiveChild(t *testing.T) {
	d, conn := newTestDistributor(t, 5)
	conn.open(2)
	s3 := conn.open(3)

	d.UpdateDependencyTree(3, 2, 16, false) // 3 now depends on 2
	checkInvariants(t, d)
	require.Same(t, d.nodes[2], d.nodes[3].parent)
	require.False(t, d.nodes[2].active)

	activate(d, s3, 500)
	checkInvariants(t, d)

	w := &fakeWriter{}
	more, err := d.Distribute(500, w)
	require.NoError(t, err)
	assert.True(t, more) // node3 is still active; Distribute reports subtree state, not remaining bytes
	require.Len(t, w.writes, 1)
	assert.Equal(t, uint32(3), w.writes[0].streamID)
	assert.Equal(t, int32(500), w.writes[0].n)
}

// TestDistributeZeroBudgetStillWritesEmptyFrame verifies the boundary
// behavior that calling distribute with a zero byte budget still invokes
// Writer.Write with n=0 for the head-of-line active stream (rather than
// skipping it entirely) and reports that more data remains.
func TestDistributeZeroBudgetStillWritesEmptyFrame(t *testing.T) {
	d, conn := newTestDistributor(t, 5)
	s := conn.open(1)
	activate(d, s, 500)
	checkInvariants(t, d)

	w := &fakeWriter{}
	more, err := d.Distribute(0, w)
	require.NoError(t, err)
	require.Len(t, w.writes, 1)
	assert.Equal(t, uint32(1), w.writes[0].streamID)
	assert.Equal(t, int32(0), w.writes[0].n)
	assert.True(t, more)
}

// TestScenarioRetentionCapZeroMeansNoMemory verifies that with retention
// disabled, a removed stream's dependency information is gone: a later
// child that depended on it becomes parentless rather than inheriting
// any remembered weight or depth.
func TestScenarioRetentionCapZeroMeansNoMemory(t *testing.T) {
	d, conn := newTestDistributor(t, 0)
	conn.open(1)
	conn.open(2)
	d.UpdateDependencyTree(2, 1, 200, false)
	checkInvariants(t, d)

	conn.close(1)
	checkInvariants(t, d)

	_, ok := d.nodes[1]
	assert.False(t, ok)
	n2 := d.nodes[2]
	assert.Same(t, d.root, n2.parent)
}
