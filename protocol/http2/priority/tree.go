package priority

// parentChangedEvent records that child's parent link changed from
// oldParent (possibly nil) to child.parent (its current value at the time
// the event is processed by notifyParentChanged).
type parentChangedEvent struct {
	child     *node
	oldParent *node
}

// takeChild makes child a child of parent, appending to events. If
// exclusive is set, every child parent already had (other than child
// itself) is moved to become a non-exclusive child of child instead —
// RFC 7540 §5.3's exclusive dependency.
//
// Calling takeChild(parent, child, false) when child is already a direct
// child of parent is a no-op; calling it a second time with
// exclusive=true when child is already parent's only child is also a
// no-op, since there are no "other" children left to move.
func takeChild(parent, child *node, exclusive bool, events []parentChangedEvent) []parentChangedEvent {
	oldParent := child.parent

	var formerSiblings []*node
	if exclusive {
		formerSiblings = make([]*node, 0, len(parent.children))
		for id, sibling := range parent.children {
			if id != child.streamID {
				formerSiblings = append(formerSiblings, sibling)
			}
		}
	}

	if oldParent == parent && len(formerSiblings) == 0 {
		// Already parent's child, and exclusivity (if requested) has
		// nothing left to move: no structural change at all.
		return events
	}

	events = append(events, parentChangedEvent{child: child, oldParent: oldParent})
	if oldParent != nil {
		delete(oldParent.children, child.streamID)
	}
	child.parent = parent
	child.depth = parent.depth + 1
	if parent.children == nil {
		parent.children = make(map[uint32]*node)
	}
	parent.children[child.streamID] = child

	for _, sibling := range formerSiblings {
		events = takeChild(child, sibling, false, events)
	}
	return events
}

// removeChild detaches child from self, promoting child's own children to
// become direct children of self. self must be child's current parent.
func removeChild(self, child *node, events []parentChangedEvent) []parentChangedEvent {
	delete(self.children, child.streamID)
	events = append(events, parentChangedEvent{child: child, oldParent: self})
	child.parent = nil
	child.depth = depthUnparented

	grandchildren := make([]*node, 0, len(child.children))
	for _, gc := range child.children {
		grandchildren = append(grandchildren, gc)
	}
	for _, gc := range grandchildren {
		events = takeChild(self, gc, false, events)
	}
	return events
}
