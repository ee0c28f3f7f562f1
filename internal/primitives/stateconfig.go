// Package primitives defines the foundational data structures for the statechart engine.
//
// StateConfig is the declarative description of one node. Kind is derived by
// internal/core when Type is empty: compound if children are declared, history
// if History is set, atomic otherwise.
package primitives

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// StateType defines the possible kinds of nodes in the statechart.
type StateType string

const (
	Atomic   StateType = "atomic"
	Compound StateType = "compound"
	Parallel StateType = "parallel"
	History  StateType = "history"
	Final    StateType = "final"
)

// HistoryMode selects what a history node remembers.
type HistoryMode string

const (
	NoHistory      HistoryMode = ""
	ShallowHistory HistoryMode = "shallow"
	DeepHistory    HistoryMode = "deep"
)

// StateConfig defines a node configuration, supporting hierarchical nesting.
// Children keep declaration order.
type StateConfig struct {
	Key       string             `json:"key" yaml:"key" mapstructure:"key" validate:"required"`
	ID        string             `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Type      StateType          `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type" validate:"omitempty,oneof=atomic compound parallel history final"`
	Initial   string             `json:"initial,omitempty" yaml:"initial,omitempty" mapstructure:"initial"`
	History   HistoryMode        `json:"history,omitempty" yaml:"history,omitempty" mapstructure:"history" validate:"omitempty,oneof=shallow deep"`
	Target    string             `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"` // history fallback
	Delimiter string             `json:"delimiter,omitempty" yaml:"delimiter,omitempty" mapstructure:"delimiter"`
	On        EventMap           `json:"on,omitempty" yaml:"on,omitempty" mapstructure:"on"`
	Always    []TransitionConfig `json:"always,omitempty" yaml:"always,omitempty" mapstructure:"always"`
	After     []TransitionConfig `json:"after,omitempty" yaml:"after,omitempty" mapstructure:"after"`
	OnDone    []TransitionConfig `json:"onDone,omitempty" yaml:"onDone,omitempty" mapstructure:"onDone"`
	Entry     []ActionRef        `json:"entry,omitempty" yaml:"entry,omitempty" mapstructure:"entry"`
	Exit      []ActionRef        `json:"exit,omitempty" yaml:"exit,omitempty" mapstructure:"exit"`
	Invoke    []InvokeConfig     `json:"invoke,omitempty" yaml:"invoke,omitempty" mapstructure:"invoke"`
	Meta      map[string]any     `json:"meta,omitempty" yaml:"meta,omitempty" mapstructure:"meta"`
	Data      any                `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"` // final output mapper
	Children  []*StateConfig     `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children" validate:"dive"`
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func validate() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// NewStateConfig creates a new StateConfig with Key and Type.
func NewStateConfig(key string, typ StateType) *StateConfig {
	return &StateConfig{
		Key:  key,
		Type: typ,
	}
}

// WithID overrides the derived id.
func (s *StateConfig) WithID(id string) *StateConfig {
	s.ID = id
	return s
}

// WithInitial sets the initial child key (compound only).
func (s *StateConfig) WithInitial(initial string) *StateConfig {
	s.Initial = initial
	return s
}

// WithHistory sets the history mode and optional fallback target.
func (s *StateConfig) WithHistory(mode HistoryMode, target string) *StateConfig {
	s.History = mode
	s.Target = target
	return s
}

// WithDelimiter overrides the id delimiter. Only honored on the root.
func (s *StateConfig) WithDelimiter(d string) *StateConfig {
	s.Delimiter = d
	return s
}

// WithOn replaces the handlers. Go maps carry no order, so events are sorted by name.
func (s *StateConfig) WithOn(on map[string][]TransitionConfig) *StateConfig {
	s.On = EventMapFrom(on)
	return s
}

// AddTransition adds a transition for an event, keeping declaration order.
func (s *StateConfig) AddTransition(event string, trans TransitionConfig) *StateConfig {
	s.On = s.On.Add(event, trans)
	return s
}

// Transition adds a simple transition from event to target.
// Optionally override with full TransitionConfig via first arg.
// Usage: .Transition("evt", "target") or .Transition("evt", "", To("a").WithGuard(fn)).
func (s *StateConfig) Transition(event, target string, transOpts ...TransitionConfig) *StateConfig {
	trans := TransitionConfig{}
	if target != "" {
		trans.Target = []string{target}
	}
	if len(transOpts) > 0 {
		trans = transOpts[0]
	}
	return s.AddTransition(event, trans)
}

// AddAlways adds an eventless transition.
func (s *StateConfig) AddAlways(trans TransitionConfig) *StateConfig {
	s.Always = append(s.Always, trans)
	return s
}

// AddAfter adds a delayed transition.
func (s *StateConfig) AddAfter(trans TransitionConfig) *StateConfig {
	s.After = append(s.After, trans)
	return s
}

// AddOnDone adds a transition taken when the node reaches a final child.
func (s *StateConfig) AddOnDone(trans TransitionConfig) *StateConfig {
	s.OnDone = append(s.OnDone, trans)
	return s
}

// WithEntry sets entry actions.
func (s *StateConfig) WithEntry(entry []ActionRef) *StateConfig {
	s.Entry = entry
	return s
}

// AddEntry adds an entry action.
func (s *StateConfig) AddEntry(action ActionRef) *StateConfig {
	s.Entry = append(s.Entry, action)
	return s
}

// WithExit sets exit actions.
func (s *StateConfig) WithExit(exit []ActionRef) *StateConfig {
	s.Exit = exit
	return s
}

// AddExit adds an exit action.
func (s *StateConfig) AddExit(action ActionRef) *StateConfig {
	s.Exit = append(s.Exit, action)
	return s
}

// AddInvoke declares an invoked service.
func (s *StateConfig) AddInvoke(inv InvokeConfig) *StateConfig {
	s.Invoke = append(s.Invoke, inv)
	return s
}

// WithMeta sets metadata.
func (s *StateConfig) WithMeta(meta map[string]any) *StateConfig {
	s.Meta = meta
	return s
}

// WithData sets the final-state output mapper.
func (s *StateConfig) WithData(data any) *StateConfig {
	s.Data = data
	return s
}

// WithChildren sets child states.
func (s *StateConfig) WithChildren(children []*StateConfig) *StateConfig {
	s.Children = children
	return s
}

// AddChild adds a child state.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.Children = append(s.Children, child)
	return s
}

// State creates and adds a child state (kind derived, or specified type).
// Returns the child for fluent chaining: parent.State("child").Transition("evt", "target").
func (s *StateConfig) State(key string, typ ...StateType) *StateConfig {
	var t StateType
	if len(typ) > 0 {
		t = typ[0]
	}
	child := NewStateConfig(key, t)
	s.AddChild(child)
	return child
}

// Validate performs recursive structural validation of the StateConfig tree.
// Reference checks (initial child, targets, id uniqueness) happen when
// internal/core builds the node tree.
func (s *StateConfig) Validate() error {
	if s.Key == "" {
		return errors.New("state key is required")
	}
	if err := validate().Struct(s); err != nil {
		return fmt.Errorf("state %s: %w", s.Key, err)
	}

	switch s.Type {
	case Atomic, Final:
		if s.Initial != "" {
			return fmt.Errorf("%s state %s cannot have Initial", s.Type, s.Key)
		}
		if len(s.Children) > 0 {
			return fmt.Errorf("%s state %s cannot have Children", s.Type, s.Key)
		}
	case Compound, Parallel:
		if len(s.Children) == 0 {
			return fmt.Errorf("%s state %s requires Children", s.Type, s.Key)
		}
	case History:
		if len(s.Children) > 0 {
			return fmt.Errorf("history state %s cannot have Children (restored at runtime)", s.Key)
		}
	}
	if s.History != NoHistory && len(s.Children) > 0 {
		return fmt.Errorf("history state %s cannot have Children (restored at runtime)", s.Key)
	}

	for _, h := range s.On {
		if strings.TrimSpace(h.Event) == "" {
			return fmt.Errorf("empty event name in On map for state %s", s.Key)
		}
	}

	for i, child := range s.Children {
		if child == nil {
			return fmt.Errorf("child %d of %s is nil", i, s.Key)
		}
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d (%s) of %s failed validation: %w", i, child.Key, s.Key, err)
		}
	}

	return nil
}
