package core

import (
	"sort"
)

// OwnEvents lists the event types n itself responds to, skipping no-op
// transitions (targetless, internal and without actions). A transient node
// lists the null event, which sorts first.
func (n *Node) OwnEvents() []string {
	n.memo.ownEventsOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewOwnEvents, n.ID)
		set := make(map[string]struct{})
		for _, t := range n.Transitions() {
			if t.Targetless() && len(t.Actions) == 0 && t.Internal {
				continue
			}
			set[t.EventType] = struct{}{}
		}
		n.memo.ownEvents = sortedKeys(set)
	})
	return n.memo.ownEvents
}

// Events lists the event types n or any of its non-leaf descendants respond
// to. Leaf children do not contribute.
func (n *Node) Events() []string {
	n.memo.eventsOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewEvents, n.ID)
		set := make(map[string]struct{})
		for _, e := range n.OwnEvents() {
			set[e] = struct{}{}
		}
		for _, child := range n.Children {
			if len(child.Children) == 0 {
				continue
			}
			for _, e := range child.Events() {
				set[e] = struct{}{}
			}
		}
		n.memo.events = sortedKeys(set)
	})
	return n.memo.events
}

// Handles reports whether eventType is in n's event vocabulary.
func (n *Node) Handles(eventType string) bool {
	events := n.Events()
	i := sort.SearchStrings(events, eventType)
	return i < len(events) && events[i] == eventType
}

// Events lists the whole machine's event vocabulary.
func (m *Machine) Events() []string {
	return m.root.Events()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
