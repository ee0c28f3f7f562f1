package core

import (
	"github.com/comalice/statenode/internal/primitives"
)

// Candidates returns the transitions eligible for eventType before guards
// and in-conditions: exact matches in declaration order, followed by the
// wildcard handlers. The null event never matches a wildcard.
//
// Results are cached per declared event type; types the node does not
// declare share the wildcard bucket, so the cache stays bounded. Concurrent
// first requests for the same bucket are collapsed into one computation.
func (n *Node) Candidates(eventType string) []*Transition {
	key := eventType
	if _, declared := n.On()[eventType]; !declared && eventType != primitives.NullEvent {
		key = primitives.WildcardEvent
	}
	if cached, ok := n.memo.candidates.Load(key); ok {
		return cached.([]*Transition)
	}
	v, _, _ := n.memo.flight.Do(key, func() (any, error) {
		if cached, ok := n.memo.candidates.Load(key); ok {
			return cached, nil
		}
		n.machine.observer.ViewComputed(ViewCandidates, n.ID)
		var out []*Transition
		if key != primitives.WildcardEvent {
			out = append(out, n.On()[key]...)
		}
		if key != primitives.NullEvent {
			out = append(out, n.On()[primitives.WildcardEvent]...)
		}
		n.memo.candidates.Store(key, out)
		return out, nil
	})
	return v.([]*Transition)
}
