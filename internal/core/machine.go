// Package core builds the immutable state node tree and resolves transitions
// over it. Resolution is pure: nothing here executes actions, queues events or
// records history.
package core

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/comalice/statenode/internal/logging"
	"github.com/comalice/statenode/internal/primitives"
)

// Option applies configuration to Machine via functional options pattern.
type Option func(*Machine)

// Machine owns the node tree, the flat id lookup and the shared service table.
// A Machine is safe for concurrent use once NewMachine returns.
type Machine struct {
	config    primitives.MachineConfig
	root      *Node
	ids       map[string]*Node
	nodes     []*Node // document order
	delimiter string

	services   *primitives.ServiceTable
	guards     map[string]primitives.GuardFunc
	guardEval  GuardEvaluator
	logger     *slog.Logger
	observer   Observer
	lazyInvoke bool
}

// NewMachine validates config, builds the node tree and compiles every
// node's transitions. Any malformed reference is reported as a *ConfigError.
func NewMachine(config primitives.MachineConfig, opts ...Option) (*Machine, error) {
	m := &Machine{
		config:    config,
		ids:       make(map[string]*Node),
		delimiter: config.EffectiveDelimiter(),
		guards:    make(map[string]primitives.GuardFunc),
		logger:    logging.NewNop(),
		observer:  nopObserver{},
	}
	m.guardEval = defaultGuardEvaluator{m: m}

	// Apply functional options
	for _, opt := range opts {
		opt(m)
	}
	if m.services == nil {
		m.services = primitives.NewServiceTable(nil)
	}

	if err := config.Validate(); err != nil {
		return nil, &ConfigError{NodeID: config.Key, Reason: "validation failed", Err: err}
	}

	root, err := m.build(&m.config.StateConfig, nil)
	if err != nil {
		return nil, err
	}
	m.root = root

	if !m.lazyInvoke {
		for _, n := range m.nodes {
			n.Invoke()
		}
	}
	for _, n := range m.nodes {
		if _, err := n.compileTransitions(); err != nil {
			return nil, err
		}
		if n.Kind == primitives.History {
			if _, err := n.historyTargetValue(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := root.InitialStateValue(); err != nil {
		return nil, err
	}

	m.logger.Debug("machine built", "id", root.ID, "nodes", len(m.nodes))
	return m, nil
}

func (m *Machine) build(cfg *primitives.StateConfig, parent *Node) (*Node, error) {
	n := &Node{
		Key:      cfg.Key,
		Initial:  cfg.Initial,
		History:  cfg.History,
		Meta:     cfg.Meta,
		Data:     cfg.Data,
		Order:    len(m.nodes),
		Parent:   parent,
		children: make(map[string]*Node, len(cfg.Children)),
		config:   cfg,
		machine:  m,
	}
	if parent != nil {
		n.Path = append(append([]string(nil), parent.Path...), cfg.Key)
	}

	switch {
	case cfg.ID != "":
		n.ID = cfg.ID
	case parent == nil:
		n.ID = cfg.Key
	default:
		n.ID = strings.Join(append([]string{m.config.Key}, n.Path...), m.delimiter)
	}

	n.Kind = deriveKind(cfg)
	if n.Kind == primitives.History && n.History == primitives.NoHistory {
		n.History = primitives.ShallowHistory
	}
	n.Transient = len(cfg.Always) > 0
	for _, h := range cfg.On {
		if h.Event == primitives.NullEvent {
			n.Transient = true
		}
	}

	var err error
	if n.Entry, err = primitives.ToActions(cfg.Entry); err != nil {
		return nil, &ConfigError{NodeID: n.ID, Reason: "entry actions", Err: err}
	}
	if n.Exit, err = primitives.ToActions(cfg.Exit); err != nil {
		return nil, &ConfigError{NodeID: n.ID, Reason: "exit actions", Err: err}
	}

	if _, dup := m.ids[n.ID]; dup {
		return nil, configErrorf(n.ID, "duplicate state node id")
	}
	m.ids[n.ID] = n
	m.nodes = append(m.nodes, n)

	for _, childCfg := range cfg.Children {
		if _, dup := n.children[childCfg.Key]; dup {
			return nil, configErrorf(n.ID, "duplicate child key %q", childCfg.Key)
		}
		child, err := m.build(childCfg, n)
		if err != nil {
			return nil, err
		}
		n.children[child.Key] = child
		n.Children = append(n.Children, child)
	}

	if n.Kind == primitives.Compound {
		if n.Initial == "" {
			return nil, configErrorf(n.ID, "compound state node has no initial state")
		}
		if _, ok := n.children[n.Initial]; !ok {
			return nil, &ConfigError{
				NodeID: n.ID,
				Reason: fmt.Sprintf("initial state %q not found among children", n.Initial),
				Err:    ErrNotFound,
			}
		}
		if initial := n.children[n.Initial]; initial.Kind == primitives.History && initial.config.Target == "" {
			return nil, configErrorf(n.ID, "initial history state %q needs a target", n.Initial)
		}
	}
	return n, nil
}

func deriveKind(cfg *primitives.StateConfig) primitives.StateType {
	switch {
	case cfg.Type != "":
		return cfg.Type
	case len(cfg.Children) > 0:
		return primitives.Compound
	case cfg.History != primitives.NoHistory:
		return primitives.History
	default:
		return primitives.Atomic
	}
}

// Root returns the root node.
func (m *Machine) Root() *Node {
	return m.root
}

// Config returns the configuration the machine was built from.
func (m *Machine) Config() primitives.MachineConfig {
	return m.config
}

// Delimiter returns the id/path delimiter.
func (m *Machine) Delimiter() string {
	return m.delimiter
}

// Services returns the shared service table.
func (m *Machine) Services() *primitives.ServiceTable {
	return m.services
}

// Logger returns the machine's logger.
func (m *Machine) Logger() *slog.Logger {
	return m.logger
}

// Nodes lists every node in document order.
func (m *Machine) Nodes() []*Node {
	return append([]*Node(nil), m.nodes...)
}

// StateIDs lists every node id in document order.
func (m *Machine) StateIDs() []string {
	ids := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		ids[i] = n.ID
	}
	return ids
}

// StateNodeByID looks a node up by id. A leading "#" is accepted; "#id.child"
// style references resolve the longest matching id and walk the remaining keys.
func (m *Machine) StateNodeByID(id string) (*Node, error) {
	ref := strings.TrimPrefix(id, "#")
	if n, ok := m.ids[ref]; ok {
		return n, nil
	}
	parts := strings.Split(ref, m.delimiter)
	for i := len(parts) - 1; i > 0; i-- {
		if n, ok := m.ids[strings.Join(parts[:i], m.delimiter)]; ok {
			return n.FromPath(parts[i:])
		}
	}
	return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// StateNodeByPath resolves a delimited key path from the root ("a.b.c").
func (m *Machine) StateNodeByPath(path string) (*Node, error) {
	if strings.HasPrefix(path, "#") {
		return m.StateNodeByID(path)
	}
	if path == "" {
		return m.root, nil
	}
	return m.root.FromPath(strings.Split(path, m.delimiter))
}

// LeafNodes converts a StateValue into the active leaf nodes it addresses,
// in document order.
func (m *Machine) LeafNodes(value primitives.StateValue) ([]*Node, error) {
	var leaves []*Node
	for _, p := range primitives.ToStatePaths(value) {
		n, err := m.root.FromPath(p)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, n)
	}
	sortByOrder(leaves)
	return leaves, nil
}

// InitialState returns the snapshot of a freshly started machine.
func (m *Machine) InitialState() (State, error) {
	v, err := m.root.InitialStateValue()
	if err != nil {
		return State{}, err
	}
	return State{Value: v, History: HistoryValue{}}, nil
}

// ParseStateValue parses a delimited reference in the machine's delimiter.
func (m *Machine) ParseStateValue(ref string) primitives.StateValue {
	return primitives.ToStateValue(ref, m.delimiter)
}
