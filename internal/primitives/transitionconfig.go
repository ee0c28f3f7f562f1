// Package primitives defines the foundational data structures for the statechart engine.
// TransitionConfig declares a handler entry: event matcher, targets, guard,
// "in"-condition, actions and the internal flag.
//
// Targets are references resolved later by internal/core:
//   - "#id"       absolute state id
//   - ".child"    child of the declaring node (implies an internal transition)
//   - "sibling"   key of a sibling, or of a child when the node has one
//   - "a.b"       delimited path walked from the sibling/child scope
package primitives

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TransitionConfig defines a single transition triggered by an Event.
type TransitionConfig struct {
	Event    string        `json:"event,omitempty" yaml:"event,omitempty" mapstructure:"event"`
	Target   []string      `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Guard    GuardRef      `json:"guard,omitempty" yaml:"guard,omitempty" mapstructure:"guard"`
	In       string        `json:"in,omitempty" yaml:"in,omitempty" mapstructure:"in"`
	Actions  []ActionRef   `json:"actions,omitempty" yaml:"actions,omitempty" mapstructure:"actions"`
	Internal *bool         `json:"internal,omitempty" yaml:"internal,omitempty" mapstructure:"internal"`
	Delay    time.Duration `json:"delay,omitempty" yaml:"delay,omitempty" mapstructure:"delay"`
}

// To is shorthand for a transition to the given targets.
func To(targets ...string) TransitionConfig {
	return TransitionConfig{Target: targets}
}

// WithGuard sets the guard and returns the modified copy.
func (t TransitionConfig) WithGuard(g GuardRef) TransitionConfig {
	t.Guard = g
	return t
}

// WithActions sets the actions and returns the modified copy.
func (t TransitionConfig) WithActions(actions ...ActionRef) TransitionConfig {
	t.Actions = actions
	return t
}

// WithIn sets the "in"-condition and returns the modified copy.
func (t TransitionConfig) WithIn(in string) TransitionConfig {
	t.In = in
	return t
}

// AsInternal marks the transition internal (or external) explicitly.
func (t TransitionConfig) AsInternal(internal bool) TransitionConfig {
	t.Internal = &internal
	return t
}

// UnmarshalYAML accepts either a bare target ("active"), a list of targets, or
// a full mapping.
func (t *TransitionConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = TransitionConfig{Target: []string{node.Value}}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Event    string        `yaml:"event"`
			Target   yaml.Node     `yaml:"target"`
			Guard    GuardRef      `yaml:"guard"`
			In       string        `yaml:"in"`
			Actions  []ActionRef   `yaml:"actions"`
			Internal *bool         `yaml:"internal"`
			Delay    time.Duration `yaml:"delay"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		targets, err := decodeTargets(&raw.Target)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*t = TransitionConfig{
			Event:    raw.Event,
			Guard:    raw.Guard,
			In:       raw.In,
			Actions:  raw.Actions,
			Internal: raw.Internal,
			Delay:    raw.Delay,
		}
		t.Target = targets
		return nil
	default:
		return fmt.Errorf("line %d: transition must be a target string or mapping", node.Line)
	}
}

func decodeTargets(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, errors.New("target must be a string or list of strings")
	}
}

// Validate checks TransitionConfig fields and target path syntax.
func (t *TransitionConfig) Validate(delimiter string) error {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	for _, target := range t.Target {
		if strings.TrimSpace(target) == "" {
			return errors.New("empty target reference")
		}
		ref := strings.TrimPrefix(target, "#")
		if strings.HasPrefix(target, "#") {
			if ref == "" {
				return fmt.Errorf("invalid target %q: empty id", target)
			}
			continue
		}
		ref = strings.TrimPrefix(ref, delimiter)
		for i, seg := range strings.Split(ref, delimiter) {
			if strings.TrimSpace(seg) == "" {
				return fmt.Errorf("invalid target path %q: empty segment at index %d", target, i)
			}
		}
	}
	if t.Delay < 0 {
		return errors.New("delay must be non-negative")
	}
	return nil
}

// EventHandlers groups the transitions declared for one event matcher.
type EventHandlers struct {
	Event       string             `json:"event" yaml:"event" mapstructure:"event"`
	Transitions []TransitionConfig `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}

// EventMap is an ordered event → handlers mapping. YAML mappings keep their
// key order; Go maps converted with EventMapFrom are sorted by event name.
type EventMap []EventHandlers

// EventMapFrom converts a Go map into an EventMap sorted by event name.
func EventMapFrom(m map[string][]TransitionConfig) EventMap {
	events := make([]string, 0, len(m))
	for e := range m {
		events = append(events, e)
	}
	sort.Strings(events)
	out := make(EventMap, 0, len(events))
	for _, e := range events {
		out = append(out, EventHandlers{Event: e, Transitions: append([]TransitionConfig(nil), m[e]...)})
	}
	return out
}

// Add appends a transition under event, keeping first-seen event order.
func (m EventMap) Add(event string, trans ...TransitionConfig) EventMap {
	for i := range m {
		if m[i].Event == event {
			m[i].Transitions = append(m[i].Transitions, trans...)
			return m
		}
	}
	return append(m, EventHandlers{Event: event, Transitions: trans})
}

// Flatten lists every transition in declaration order with Event filled in.
func (m EventMap) Flatten() []TransitionConfig {
	var out []TransitionConfig
	for _, h := range m {
		for _, t := range h.Transitions {
			t.Event = h.Event
			out = append(out, t)
		}
	}
	return out
}

// UnmarshalYAML reads an ordered mapping of event → transition(s), or a list
// of transitions that each carry an "event" key.
func (m *EventMap) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []TransitionConfig
		if err := node.Decode(&list); err != nil {
			return err
		}
		var out EventMap
		for _, t := range list {
			out = out.Add(t.Event, t)
		}
		*m = out
		return nil
	case yaml.MappingNode:
		var out EventMap
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			var trans []TransitionConfig
			if val.Kind == yaml.SequenceNode {
				if err := val.Decode(&trans); err != nil {
					return fmt.Errorf("event %q: %w", key.Value, err)
				}
			} else {
				var one TransitionConfig
				if err := val.Decode(&one); err != nil {
					return fmt.Errorf("event %q: %w", key.Value, err)
				}
				trans = []TransitionConfig{one}
			}
			out = out.Add(key.Value, trans...)
		}
		*m = out
		return nil
	default:
		return fmt.Errorf("line %d: on must be a mapping or list", node.Line)
	}
}

// AfterEvent is the event type of a delayed transition on the node with the given id.
func AfterEvent(delay time.Duration, nodeID string) string {
	return fmt.Sprintf("after(%d)#%s", delay.Milliseconds(), nodeID)
}

// DoneStateEvent is raised when the compound or parallel node reaches a final state.
func DoneStateEvent(nodeID string) string {
	return "done.state." + nodeID
}

// DoneInvokeEvent is raised when an invoked service completes.
func DoneInvokeEvent(invokeID string) string {
	return "done.invoke." + invokeID
}

// ErrorPlatformEvent is raised when an invoked service fails.
func ErrorPlatformEvent(invokeID string) string {
	return "error.platform." + invokeID
}
