package statenode

import (
	"strings"
	"time"

	"github.com/comalice/statenode/internal/primitives"
)

// MachineBuilder provides a fluent API for constructing machine definitions
// using dotted state names ("parent.child") instead of nested StateConfig
// literals. Targets and history defaults are full dotted names as well.
type MachineBuilder struct {
	root     *primitives.StateConfig
	rootName string
	states   map[string]*primitives.StateConfig
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder struct {
	b     *MachineBuilder
	state *primitives.StateConfig
	name  string
}

// NewMachineBuilder creates a new builder for constructing a machine.
// rootName is the key of the root state, and initialStateName is the
// top-level state to enter.
func NewMachineBuilder(rootName, initialStateName string) *MachineBuilder {
	_, initial := splitPath(initialStateName)
	return &MachineBuilder{
		root:     primitives.NewStateConfig(rootName, "").WithInitial(initial),
		rootName: rootName,
		states:   make(map[string]*primitives.StateConfig),
	}
}

// Root returns a builder for the root state itself.
func (b *MachineBuilder) Root() *StateBuilder {
	return &StateBuilder{b: b, state: b.root, name: ""}
}

// State creates or retrieves a state by name.
// Supports dot notation for hierarchical states (e.g., "parent.child").
// Missing parents are created on the way; declaration order is preserved.
func (b *MachineBuilder) State(name string) *StateBuilder {
	if s, ok := b.states[name]; ok {
		return &StateBuilder{b: b, state: s, name: name}
	}

	parentPath, key := splitPath(name)
	parent := b.root
	if parentPath != "" {
		parent = b.State(parentPath).state
	}
	state := parent.State(key)
	b.states[name] = state
	return &StateBuilder{b: b, state: state, name: name}
}

// Config returns the definition built so far.
func (b *MachineBuilder) Config() MachineConfig {
	return primitives.NewMachineConfig(b.root)
}

// Build validates the definition and constructs the Machine.
func (b *MachineBuilder) Build(opts ...Option) (*Machine, error) {
	return NewMachine(b.Config(), opts...)
}

// ref converts a dotted builder name into an absolute target reference.
func (b *MachineBuilder) ref(name string) string {
	if name == "" {
		return ""
	}
	return "#" + b.rootName + primitives.DefaultDelimiter + name
}

// splitPath splits a hierarchical path into parent and name components.
// For example, "parent.child" returns ("parent", "child").
// For "child", returns ("", "child").
func splitPath(path string) (parent, name string) {
	idx := strings.LastIndex(path, primitives.DefaultDelimiter)
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// StateBuilder fluent methods

// Atomic marks this state as atomic (no children).
func (sb *StateBuilder) Atomic() *StateBuilder {
	sb.state.Type = primitives.Atomic
	return sb
}

// Compound marks this state as a compound state with the given initial child.
// The initial child may be given by key or by full dotted name.
func (sb *StateBuilder) Compound(initialStateName string) *StateBuilder {
	_, key := splitPath(initialStateName)
	sb.state.Type = primitives.Compound
	sb.state.Initial = key
	return sb
}

// Parallel marks this state as a parallel state.
// All child states will be active concurrently when this state is entered.
func (sb *StateBuilder) Parallel() *StateBuilder {
	sb.state.Type = primitives.Parallel
	return sb
}

// Final marks this state as a final state with optional output data.
func (sb *StateBuilder) Final(data any) *StateBuilder {
	sb.state.Type = primitives.Final
	sb.state.Data = data
	return sb
}

// History marks this state as a history pseudo-state.
// defaultStateName is entered when nothing has been recorded; empty means
// the parent's initial state.
func (sb *StateBuilder) History(mode primitives.HistoryMode, defaultStateName string) *StateBuilder {
	sb.state.Type = primitives.History
	sb.state.WithHistory(mode, sb.b.ref(defaultStateName))
	return sb
}

// Entry adds an entry action for this state.
func (sb *StateBuilder) Entry(action ActionRef) *StateBuilder {
	sb.state.AddEntry(action)
	return sb
}

// Exit adds an exit action for this state.
func (sb *StateBuilder) Exit(action ActionRef) *StateBuilder {
	sb.state.AddExit(action)
	return sb
}

// Meta sets a metadata entry.
func (sb *StateBuilder) Meta(key string, value any) *StateBuilder {
	if sb.state.Meta == nil {
		sb.state.Meta = make(map[string]any)
	}
	sb.state.Meta[key] = value
	return sb
}

// On adds a transition from this state to the target state when the given event occurs.
// targetName is the full dotted name of the target; guard may be nil.
func (sb *StateBuilder) On(eventName, targetName string, guard GuardRef, actions ...ActionRef) *StateBuilder {
	t := primitives.To(sb.b.ref(targetName)).WithGuard(guard)
	if targetName == "" {
		t.Target = nil
	}
	if len(actions) > 0 {
		t = t.WithActions(actions...)
	}
	sb.state.AddTransition(eventName, t)
	return sb
}

// OnInternal adds an internal, targetless transition.
// The actions run but no exit/entry happens.
func (sb *StateBuilder) OnInternal(eventName string, guard GuardRef, actions ...ActionRef) *StateBuilder {
	t := primitives.TransitionConfig{Guard: guard, Actions: actions}.AsInternal(true)
	sb.state.AddTransition(eventName, t)
	return sb
}

// Always adds an eventless transition, making the state transient.
func (sb *StateBuilder) Always(targetName string, guard GuardRef) *StateBuilder {
	sb.state.AddAlways(primitives.To(sb.b.ref(targetName)).WithGuard(guard))
	return sb
}

// After adds a delayed transition.
func (sb *StateBuilder) After(delay time.Duration, targetName string) *StateBuilder {
	t := primitives.To(sb.b.ref(targetName))
	t.Delay = delay
	sb.state.AddAfter(t)
	return sb
}

// OnDone adds a transition taken when this state reaches a final child.
func (sb *StateBuilder) OnDone(targetName string) *StateBuilder {
	sb.state.AddOnDone(primitives.To(sb.b.ref(targetName)))
	return sb
}

// Invoke declares an invoked service; src is a registered name or an
// anonymous implementation.
func (sb *StateBuilder) Invoke(src any) *StateBuilder {
	sb.state.AddInvoke(primitives.InvokeConfig{Src: src})
	return sb
}

// Name returns the full dotted name of the state.
func (sb *StateBuilder) Name() string {
	return sb.name
}
