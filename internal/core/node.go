package core

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/comalice/statenode/internal/primitives"
)

// Node is one immutable state node of a built machine. All derived views
// (transitions, candidates, initial value, events, invocations) are computed
// at most once and are stable thereafter.
type Node struct {
	Key       string
	ID        string
	Path      []string
	Kind      primitives.StateType
	Initial   string
	History   primitives.HistoryMode
	Entry     []primitives.Action
	Exit      []primitives.Action
	Meta      map[string]any
	Data      any
	Transient bool
	Order     int

	Parent   *Node
	Children []*Node

	children map[string]*Node
	config   *primitives.StateConfig
	machine  *Machine
	memo     nodeMemo
}

type nodeMemo struct {
	transitionsOnce sync.Once
	transitions     []*Transition
	transitionsErr  error

	onOnce sync.Once
	on     map[string][]*Transition

	afterOnce sync.Once
	after     []*Transition

	candidates sync.Map // event type -> []*Transition
	flight     singleflight.Group

	initialOnce  sync.Once
	initialValue primitives.StateValue
	initialErr   error

	historyTargetOnce sync.Once
	historyTarget     primitives.StateValue
	historyTargetErr  error

	ownEventsOnce sync.Once
	ownEvents     []string

	eventsOnce sync.Once
	events     []string

	invokeOnce sync.Once
	invoke     []Invocation
}

// Child returns the direct child with the given key.
func (n *Node) Child(key string) (*Node, bool) {
	c, ok := n.children[key]
	return c, ok
}

// Machine returns the machine that owns the node.
func (n *Node) Machine() *Machine {
	return n.machine
}

// IsLeaf reports whether the node has no substates.
func (n *Node) IsLeaf() bool {
	return n.Kind == primitives.Atomic || n.Kind == primitives.Final
}

// Depth is the number of ancestors above the node.
func (n *Node) Depth() int {
	return len(n.Path)
}

// Value is the StateValue that addresses the node from the root.
func (n *Node) Value() primitives.StateValue {
	return primitives.PathToStateValue(n.Path)
}

func (n *Node) String() string {
	return n.ID
}

// FromPath walks down the node's descendants along the given keys.
func (n *Node) FromPath(keys []string) (*Node, error) {
	cursor := n
	for _, key := range keys {
		next, ok := cursor.children[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no child %q", ErrNotFound, cursor.ID, key)
		}
		cursor = next
	}
	return cursor, nil
}
