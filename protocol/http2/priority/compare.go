package priority

// pseudoTimeLess orders two children of the same parent by their next
// scheduling deadline. The subtraction is computed in the signed int64
// domain, which wraps modulo 2^64 on overflow the same way TCP sequence
// numbers do — so the sign of the difference stays meaningful no matter
// how large pseudoTime has grown, without ever needing to reset either
// counter.
func pseudoTimeLess(a, b *node) bool {
	return a.pseudoTimeToWrite-b.pseudoTimeToWrite < 0
}

// stateOnlyLess orders the retention heap: the node it ranks first (the
// heap minimum) is the next one evicted when the retention set overflows
// its configured size. Ranking, in order of precedence:
//
//   - a node that never reached RESERVED/ACTIVE outranks one that did
//     (priority-only bookkeeping survives longer than a stream that was
//     once live and is now just a dangling priority fragment);
//   - among two equally-live nodes, the one further from the root (larger
//     depth) survives longer — it encodes more specific tree shape;
//   - among two ties on both, the larger stream id survives longer.
//
// The last rule is the opposite of a literal "larger id sorts smaller"
// reading; it is pinned to match the worked retention example (ids
// 3,5,7,9 with a cap of two retain {7,9}, not {3,5}) — see DESIGN.md.
func stateOnlyLess(a, b *node) bool {
	if a.everActivated != b.everActivated {
		return a.everActivated // a evicted before b
	}
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.streamID < b.streamID
}
