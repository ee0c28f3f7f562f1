package core

import (
	"github.com/comalice/statenode/internal/primitives"
)

// HistoryValue maps a history node id to the configuration that was active
// under its parent when the parent was last exited.
type HistoryValue map[string][]*Node

// State is the snapshot a transition is resolved against.
type State struct {
	Value   primitives.StateValue
	Context any
	History HistoryValue
}

// Matches reports whether the snapshot's value satisfies v.
func (s State) Matches(v primitives.StateValue) bool {
	return primitives.Matches(v, s.Value)
}

// StateTransition is the result of resolving one event on one node.
type StateTransition struct {
	Transitions   []*Transition
	Configuration []*Node
	EntrySet      []*Node
	ExitSet       []*Node
	Actions       []primitives.Action
	Source        *Node
}

// Next resolves evt on n against state. It returns (nil, nil) when no
// candidate passes its in-condition and guard.
func (n *Node) Next(state State, evt primitives.Event) (*StateTransition, error) {
	st, outcome, err := n.next(state, evt)
	n.machine.observer.Resolved(n.ID, evt.Type, outcome)
	return st, err
}

func (n *Node) next(state State, evt primitives.Event) (*StateTransition, Outcome, error) {
	log := n.machine.logger

	if n.Kind == primitives.History {
		if recorded, ok := state.History[n.ID]; ok {
			return &StateTransition{
				Configuration: append([]*Node(nil), recorded...),
				Source:        n,
			}, OutcomeHistory, nil
		}
	}

	var selected *Transition
	for _, t := range n.Candidates(evt.Type) {
		if !n.evalIn(t, state) {
			continue
		}
		ok, err := n.evalGuard(t, state, evt)
		if err != nil {
			log.Warn("guard evaluation failed", "node", n.ID, "event", evt.Type, "error", err)
			return nil, OutcomeError, err
		}
		if ok {
			selected = t
			break
		}
	}
	if selected == nil {
		return nil, OutcomeUnhandled, nil
	}

	st := &StateTransition{
		Transitions: []*Transition{selected},
		Actions:     append([]primitives.Action(nil), selected.Actions...),
		Source:      n,
	}
	if selected.Targetless() {
		if len(state.Value) > 0 {
			st.Configuration = []*Node{n}
		}
		log.Debug("targetless transition selected", "node", n.ID, "event", evt.Type)
		return st, OutcomeHandled, nil
	}

	config, err := n.expandTargets(selected, state)
	if err != nil {
		return nil, OutcomeError, err
	}
	st.Configuration = config
	if !selected.Internal {
		st.ExitSet = []*Node{n}
		st.EntrySet = entrySet(n, config)
	}
	log.Debug("transition selected", "node", n.ID, "event", evt.Type,
		"targets", len(selected.Target), "internal", selected.Internal)
	return st, OutcomeHandled, nil
}

func (n *Node) expandTargets(t *Transition, state State) ([]*Node, error) {
	var out []*Node
	for _, target := range t.Target {
		leaves, err := target.expand(t.Internal, state)
		if err != nil {
			return nil, err
		}
		out = append(out, leaves...)
	}
	return dedupe(out), nil
}

// expand resolves n to the leaf nodes entered when n is targeted. With keep
// set, a compound node that is already active keeps its active child.
func (n *Node) expand(keep bool, state State) ([]*Node, error) {
	switch n.Kind {
	case primitives.Atomic, primitives.Final:
		return []*Node{n}, nil
	case primitives.History:
		return n.resolveHistory(state)
	case primitives.Parallel:
		var out []*Node
		for _, child := range n.Children {
			if child.Kind == primitives.History {
				continue
			}
			leaves, err := child.expand(keep, state)
			if err != nil {
				return nil, err
			}
			out = append(out, leaves...)
		}
		return out, nil
	}

	key := n.Initial
	if keep {
		if active := primitives.ValueAt(state.Value, n.Path); len(active) == 1 {
			key = active.Keys()[0]
		}
	}
	child, ok := n.children[key]
	if !ok {
		return nil, configErrorf(n.ID, "initial state %q not found among children", key)
	}
	return child.expand(keep, state)
}

// Transition resolves evt for every active leaf of state, bubbling from each
// leaf toward the root until a node handles it. One result is returned per
// distinct handling node, in document order of the leaves. Each node is
// consulted at most once per call.
func (m *Machine) Transition(state State, evt primitives.Event) ([]*StateTransition, error) {
	leaves, err := m.LeafNodes(state.Value)
	if err != nil {
		return nil, err
	}
	var out []*StateTransition
	visited := make(map[*Node]bool)
	for _, leaf := range leaves {
		for cursor := leaf; cursor != nil; cursor = cursor.Parent {
			if visited[cursor] {
				break
			}
			visited[cursor] = true
			st, err := cursor.Next(state, evt)
			if err != nil {
				return nil, err
			}
			if st != nil {
				out = append(out, st)
				break
			}
		}
	}
	return out, nil
}
