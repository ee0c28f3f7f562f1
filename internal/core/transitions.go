package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/comalice/statenode/internal/primitives"
)

// Transition is a compiled transition definition owned by its Source node.
// Targets are resolved nodes; an empty Target means a targetless transition.
type Transition struct {
	EventType string
	Source    *Node
	Target    []*Node
	Guard     *primitives.Guard
	In        string
	Actions   []primitives.Action
	Internal  bool
	Delay     time.Duration
	Order     int // position in Source.Transitions()

	inNode  *Node
	inValue primitives.StateValue
}

// Targetless reports whether the transition has no target.
func (t *Transition) Targetless() bool {
	return len(t.Target) == 0
}

// Transitions returns every transition declared on the node, in order:
// onDone, invocation done/error handlers, "on" handlers, eventless, delayed.
func (n *Node) Transitions() []*Transition {
	ts, _ := n.compileTransitions()
	return ts
}

func (n *Node) compileTransitions() ([]*Transition, error) {
	n.memo.transitionsOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewTransitions, n.ID)
		n.memo.transitions, n.memo.transitionsErr = n.formatTransitions()
	})
	return n.memo.transitions, n.memo.transitionsErr
}

func (n *Node) formatTransitions() ([]*Transition, error) {
	cfg := n.config
	var flat []primitives.TransitionConfig
	add := func(event string, list []primitives.TransitionConfig) {
		for _, t := range list {
			t.Event = event
			flat = append(flat, t)
		}
	}

	add(primitives.DoneStateEvent(n.ID), cfg.OnDone)
	for i, inv := range cfg.Invoke {
		id := invocationID(n, i, inv)
		add(primitives.DoneInvokeEvent(id), inv.OnDone)
		add(primitives.ErrorPlatformEvent(id), inv.OnError)
	}
	flat = append(flat, cfg.On.Flatten()...)
	add(primitives.NullEvent, cfg.Always)
	for _, t := range cfg.After {
		t.Event = primitives.AfterEvent(t.Delay, n.ID)
		flat = append(flat, t)
	}

	out := make([]*Transition, 0, len(flat))
	for _, tc := range flat {
		t, err := n.formatTransition(tc)
		if err != nil {
			return nil, err
		}
		t.Order = len(out)
		out = append(out, t)
	}
	return out, nil
}

func (n *Node) formatTransition(tc primitives.TransitionConfig) (*Transition, error) {
	t := &Transition{
		EventType: tc.Event,
		Source:    n,
		In:        tc.In,
		Delay:     tc.Delay,
	}

	var err error
	if t.Guard, err = primitives.ToGuard(tc.Guard); err != nil {
		return nil, &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("transition for event %q", tc.Event), Err: err}
	}
	if t.Actions, err = primitives.ToActions(tc.Actions); err != nil {
		return nil, &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("transition for event %q", tc.Event), Err: err}
	}

	delim := n.machine.delimiter
	internal := len(tc.Target) == 0
	for _, ref := range tc.Target {
		if strings.HasPrefix(ref, delim) {
			internal = true
		}
		target, err := n.resolveTarget(ref)
		if err != nil {
			return nil, &ConfigError{
				NodeID: n.ID,
				Reason: fmt.Sprintf("invalid transition target %q for event %q", ref, tc.Event),
				Err:    err,
			}
		}
		t.Target = append(t.Target, target)
	}
	if tc.Internal != nil {
		internal = *tc.Internal
	}
	t.Internal = internal

	if strings.HasPrefix(tc.In, "#") {
		if t.inNode, err = n.machine.StateNodeByID(tc.In); err != nil {
			return nil, &ConfigError{NodeID: n.ID, Reason: fmt.Sprintf("invalid in-condition %q", tc.In), Err: err}
		}
	} else if tc.In != "" {
		t.inValue = primitives.ToStateValue(tc.In, delim)
	}
	return t, nil
}

// resolveTarget resolves one target reference against the node.
// "#id" is absolute; ".child" is relative to n; anything else is relative to
// n's parent (n itself for the root).
func (n *Node) resolveTarget(ref string) (*Node, error) {
	delim := n.machine.delimiter
	switch {
	case strings.HasPrefix(ref, "#"):
		return n.machine.StateNodeByID(ref)
	case strings.HasPrefix(ref, delim):
		return n.FromPath(strings.Split(strings.TrimPrefix(ref, delim), delim))
	}
	scope := n.Parent
	if scope == nil {
		scope = n
	}
	return scope.FromPath(strings.Split(ref, delim))
}

// On groups the node's transitions by event type, each group in declaration
// order.
func (n *Node) On() map[string][]*Transition {
	n.memo.onOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewOn, n.ID)
		on := make(map[string][]*Transition)
		for _, t := range n.Transitions() {
			on[t.EventType] = append(on[t.EventType], t)
		}
		n.memo.on = on
	})
	return n.memo.on
}

// After lists the node's delayed transitions.
func (n *Node) After() []*Transition {
	n.memo.afterOnce.Do(func() {
		n.machine.observer.ViewComputed(ViewAfter, n.ID)
		for _, t := range n.Transitions() {
			if strings.HasPrefix(t.EventType, "after(") {
				n.memo.after = append(n.memo.after, t)
			}
		}
	})
	return n.memo.after
}
