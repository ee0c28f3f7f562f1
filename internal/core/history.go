package core

import (
	"fmt"
	"strings"

	"github.com/comalice/statenode/internal/primitives"
)

// HistoryTarget is the fallback value of a history node, relative to its
// parent. Nil means the parent's initial configuration.
func (n *Node) HistoryTarget() primitives.StateValue {
	v, _ := n.historyTargetValue()
	return v
}

func (n *Node) historyTargetValue() (primitives.StateValue, error) {
	n.memo.historyTargetOnce.Do(func() {
		n.memo.historyTarget, n.memo.historyTargetErr = n.computeHistoryTarget()
	})
	return n.memo.historyTarget, n.memo.historyTargetErr
}

func (n *Node) computeHistoryTarget() (primitives.StateValue, error) {
	ref := n.config.Target
	if n.Kind != primitives.History || ref == "" {
		return nil, nil
	}
	if n.Parent == nil {
		return nil, configErrorf(n.ID, "history state node has no parent")
	}

	var value primitives.StateValue
	if strings.HasPrefix(ref, "#") {
		target, err := n.machine.StateNodeByID(ref)
		if err != nil {
			return nil, &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("invalid history target %q", ref), Err: err}
		}
		depth := len(n.Path) - 1
		if !isDescendant(target, n.Parent) {
			return nil, configErrorf(n.ID, "history target %q is outside %q", ref, n.Parent.ID)
		}
		value = primitives.PathToStateValue(target.Path[depth:])
	} else {
		value = primitives.ToStateValue(ref, n.machine.delimiter)
	}

	for _, p := range primitives.ToStatePaths(value) {
		if _, err := n.Parent.FromPath(p); err != nil {
			return nil, &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("invalid history target %q", ref), Err: err}
		}
	}
	return value, nil
}

// ResolveHistory returns the leaf configuration a history node stands for:
// the recorded configuration when hv has one, else its fallback target,
// else its parent's initial configuration.
func (n *Node) ResolveHistory(hv HistoryValue) ([]*Node, error) {
	return n.resolveHistory(State{History: hv})
}

func (n *Node) resolveHistory(state State) ([]*Node, error) {
	if n.Kind != primitives.History {
		return nil, configErrorf(n.ID, "not a history state node")
	}

	if recorded := state.History[n.ID]; len(recorded) > 0 {
		var out []*Node
		for _, r := range recorded {
			leaves, err := r.expand(false, state)
			if err != nil {
				return nil, err
			}
			out = append(out, leaves...)
		}
		return dedupe(out), nil
	}

	target, err := n.historyTargetValue()
	if err != nil {
		return nil, err
	}
	if len(target) == 0 {
		return n.Parent.expand(false, State{History: state.History})
	}
	var out []*Node
	for _, p := range primitives.ToStatePaths(target) {
		node, err := n.Parent.FromPath(p)
		if err != nil {
			return nil, err
		}
		leaves, err := node.expand(false, state)
		if err != nil {
			return nil, err
		}
		out = append(out, leaves...)
	}
	return dedupe(out), nil
}
