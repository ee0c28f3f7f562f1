// Package statenode resolves statechart transitions over an immutable node
// tree. Given a machine definition and one event it computes the next
// configuration together with the entry set, exit set and actions, without
// executing anything.
//
// Machines are built from Go values, the fluent MachineBuilder, YAML
// (LoadYAML) or loosely typed maps (DecodeMap).
package statenode

import (
	"github.com/comalice/statenode/internal/core"
	"github.com/comalice/statenode/internal/extensibility"
	"github.com/comalice/statenode/internal/primitives"
)

type (
	Machine          = core.Machine
	Node             = core.Node
	Transition       = core.Transition
	State            = core.State
	StateTransition  = core.StateTransition
	HistoryValue     = core.HistoryValue
	HistoryManager   = core.HistoryManager
	Invocation       = core.Invocation
	Definition       = core.Definition
	Option           = core.Option
	Observer         = core.Observer
	Outcome          = core.Outcome
	GuardEvaluator   = core.GuardEvaluator
	ConfigError      = core.ConfigError
	GuardError       = core.GuardError
	Event            = primitives.Event
	StateValue       = primitives.StateValue
	MachineConfig    = primitives.MachineConfig
	StateConfig      = primitives.StateConfig
	TransitionConfig = primitives.TransitionConfig
	InvokeConfig     = primitives.InvokeConfig
	StateType        = primitives.StateType
	HistoryMode      = primitives.HistoryMode
	Action           = primitives.Action
	Guard            = primitives.Guard
	ActionRef        = primitives.ActionRef
	GuardRef         = primitives.GuardRef
	GuardFunc        = primitives.GuardFunc
)

const (
	Atomic   = primitives.Atomic
	Compound = primitives.Compound
	Parallel = primitives.Parallel
	History  = primitives.History
	Final    = primitives.Final

	ShallowHistory = primitives.ShallowHistory
	DeepHistory    = primitives.DeepHistory

	NullEvent     = primitives.NullEvent
	WildcardEvent = primitives.WildcardEvent
)

var (
	ErrInvalidConfig      = core.ErrInvalidConfig
	ErrNotFound           = core.ErrNotFound
	ErrGuardNotRegistered = core.ErrGuardNotRegistered
)

// Functional options.
var (
	WithGuardEvaluator  = core.WithGuardEvaluator
	WithGuards          = core.WithGuards
	WithServices        = core.WithServices
	WithLogger          = core.WithLogger
	WithObserver        = core.WithObserver
	WithLazyInvocations = core.WithLazyInvocations
	NewHistoryManager   = core.NewHistoryManager
	NewEvent            = primitives.NewEvent
	NewStateConfig      = primitives.NewStateConfig
	NewMachineConfig    = primitives.NewMachineConfig
	To                  = primitives.To
	ToStateValue        = primitives.ToStateValue
	DecodeMap           = primitives.DecodeMap
	MatchesState        = primitives.Matches
)

// Guard evaluators for WithGuardEvaluator.
var (
	NewDefaultGuardEvaluator    = extensibility.NewDefaultGuardEvaluator
	NewExpressionGuardEvaluator = extensibility.NewExpressionGuardEvaluator
	NewLoggingGuardEvaluator    = extensibility.NewLoggingGuardEvaluator
)

// NewMachine builds a machine from cfg. See core.NewMachine.
func NewMachine(cfg MachineConfig, opts ...Option) (*Machine, error) {
	return core.NewMachine(cfg, opts...)
}

// LoadYAML parses a YAML definition and builds the machine.
func LoadYAML(data []byte, opts ...Option) (*Machine, error) {
	cfg, err := primitives.LoadYAML(data)
	if err != nil {
		return nil, err
	}
	return core.NewMachine(cfg, opts...)
}

// LoadFile reads a YAML definition file and builds the machine.
func LoadFile(path string, opts ...Option) (*Machine, error) {
	cfg, err := primitives.LoadYAMLFile(path)
	if err != nil {
		return nil, err
	}
	return core.NewMachine(cfg, opts...)
}
