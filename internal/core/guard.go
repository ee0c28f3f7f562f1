package core

import (
	"errors"
	"fmt"

	"github.com/comalice/statenode/internal/primitives"
)

// ErrGuardNotRegistered is returned when a named guard has no implementation.
var ErrGuardNotRegistered = errors.New("guard not registered")

// GuardEvaluator decides whether a candidate transition's guard passes.
// A returned error aborts resolution of the event on the node.
type GuardEvaluator interface {
	Eval(node *Node, guard *primitives.Guard, ctx any, evt primitives.Event, state State) (bool, error)
}

// GuardEvaluatorFunc adapts a function to GuardEvaluator.
type GuardEvaluatorFunc func(node *Node, guard *primitives.Guard, ctx any, evt primitives.Event, state State) (bool, error)

// Eval calls f.
func (f GuardEvaluatorFunc) Eval(node *Node, guard *primitives.Guard, ctx any, evt primitives.Event, state State) (bool, error) {
	return f(node, guard, ctx, evt, state)
}

type defaultGuardEvaluator struct {
	m *Machine
}

func (d defaultGuardEvaluator) Eval(_ *Node, guard *primitives.Guard, ctx any, evt primitives.Event, _ State) (bool, error) {
	if guard.Predicate != nil {
		return guard.Predicate(ctx, evt)
	}
	if fn, ok := d.m.GuardFunc(guard.Type); ok {
		return fn(ctx, evt)
	}
	return false, fmt.Errorf("%w: %q", ErrGuardNotRegistered, guard.Type)
}

// GuardFunc returns the named guard registered with WithGuards.
func (m *Machine) GuardFunc(name string) (primitives.GuardFunc, bool) {
	fn, ok := m.guards[name]
	return fn, ok
}

// evalGuard runs the machine's evaluator. Errors and panics from the
// callback become a *GuardError.
func (n *Node) evalGuard(t *Transition, state State, evt primitives.Event) (ok bool, err error) {
	if t.Guard == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, &GuardError{
				Guard:  t.Guard.Name(),
				Event:  evt.Type,
				NodeID: n.ID,
				Err:    fmt.Errorf("panic: %v", r),
			}
		}
	}()
	ok, err = n.machine.guardEval.Eval(n, t.Guard, state.Context, evt, state)
	if err != nil {
		return false, &GuardError{Guard: t.Guard.Name(), Event: evt.Type, NodeID: n.ID, Err: err}
	}
	return ok, nil
}

// evalIn checks a transition's "in"-condition against the snapshot. "#id"
// conditions require that node to be active; relative conditions are matched
// against the value two levels above the source node.
func (n *Node) evalIn(t *Transition, state State) bool {
	switch {
	case t.In == "":
		return true
	case t.inNode != nil:
		return state.Matches(t.inNode.Value())
	}
	depth := len(n.Path) - 2
	if depth < 0 {
		depth = 0
	}
	return primitives.Matches(t.inValue, primitives.ValueAt(state.Value, n.Path[:depth]))
}
