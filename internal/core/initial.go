package core

import (
	"github.com/comalice/statenode/internal/primitives"
)

// InitialStateValue is the value the node takes when entered by default.
// Atomic, final and history nodes have none of their own and return nil.
func (n *Node) InitialStateValue() (primitives.StateValue, error) {
	n.memo.initialOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewInitial, n.ID)
		n.memo.initialValue, n.memo.initialErr = n.computeInitialValue()
	})
	return n.memo.initialValue, n.memo.initialErr
}

func (n *Node) computeInitialValue() (primitives.StateValue, error) {
	switch n.Kind {
	case primitives.Parallel:
		value := make(primitives.StateValue, len(n.Children))
		for _, child := range n.Children {
			if child.Kind == primitives.History {
				continue
			}
			sub, err := child.InitialStateValue()
			if err != nil {
				return nil, err
			}
			if sub == nil {
				sub = primitives.StateValue{}
			}
			value[child.Key] = sub
		}
		return value, nil

	case primitives.Compound:
		if n.Initial == "" {
			return nil, configErrorf(n.ID, "compound state node has no initial state")
		}
		child, ok := n.children[n.Initial]
		if !ok {
			return nil, configErrorf(n.ID, "initial state %q not found among children", n.Initial)
		}
		if child.IsLeaf() || child.Kind == primitives.History {
			return primitives.StateValue{child.Key: nil}, nil
		}
		sub, err := child.InitialStateValue()
		if err != nil {
			return nil, err
		}
		return primitives.StateValue{child.Key: sub}, nil
	}
	return nil, nil
}

// InitialStateNodes lists the leaf nodes entered when n is entered by
// default, resolving history children to their fallback.
func (n *Node) InitialStateNodes() ([]*Node, error) {
	return n.expand(false, State{})
}
