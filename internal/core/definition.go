package core

import (
	"reflect"
	"time"

	"github.com/comalice/statenode/internal/primitives"
)

// Definition is the serializable view of a node and its subtree.
type Definition struct {
	ID          string                            `json:"id" yaml:"id"`
	Key         string                            `json:"key" yaml:"key"`
	Type        primitives.StateType              `json:"type" yaml:"type"`
	Path        []string                          `json:"path" yaml:"path"`
	Order       int                               `json:"order" yaml:"order"`
	Version     string                            `json:"version,omitempty" yaml:"version,omitempty"`
	Delimiter   string                            `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Initial     string                            `json:"initial,omitempty" yaml:"initial,omitempty"`
	History     primitives.HistoryMode            `json:"history,omitempty" yaml:"history,omitempty"`
	Target      string                            `json:"target,omitempty" yaml:"target,omitempty"`
	Entry       []primitives.Action               `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit        []primitives.Action               `json:"exit,omitempty" yaml:"exit,omitempty"`
	On          map[string][]TransitionDefinition `json:"on,omitempty" yaml:"on,omitempty"`
	Transitions []TransitionDefinition            `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	Invoke      []Invocation                      `json:"invoke,omitempty" yaml:"invoke,omitempty"`
	Meta        map[string]any                    `json:"meta,omitempty" yaml:"meta,omitempty"`
	Data        any                               `json:"data,omitempty" yaml:"data,omitempty"`
	Children    []Definition                      `json:"states,omitempty" yaml:"states,omitempty"`
}

// TransitionDefinition is the serializable view of a Transition. Targets are
// node ids.
type TransitionDefinition struct {
	Event    string              `json:"event" yaml:"event"`
	Source   string              `json:"source" yaml:"source"`
	Target   []string            `json:"target,omitempty" yaml:"target,omitempty"`
	Guard    *primitives.Guard   `json:"guard,omitempty" yaml:"guard,omitempty"`
	In       string              `json:"in,omitempty" yaml:"in,omitempty"`
	Actions  []primitives.Action `json:"actions,omitempty" yaml:"actions,omitempty"`
	Internal bool                `json:"internal" yaml:"internal"`
	Delay    time.Duration       `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Definition returns the view of the whole machine, fingerprinted with the
// configured version or a hash of the view itself.
func (m *Machine) Definition() Definition {
	def := m.root.Definition()
	def.Delimiter = m.delimiter
	def.Version = primitives.ComputeVersion(m.config.Version, def)
	return def
}

// Definition returns the view of n and its subtree.
func (n *Node) Definition() Definition {
	def := Definition{
		ID:      n.ID,
		Key:     n.Key,
		Type:    n.Kind,
		Path:    append([]string{}, n.Path...),
		Order:   n.Order,
		Initial: n.Initial,
		History: n.History,
		Entry:   n.Entry,
		Exit:    n.Exit,
		Invoke:  n.Invoke(),
		Meta:    n.Meta,
	}
	if n.Kind == primitives.History {
		def.Target = n.config.Target
	}
	if n.Data != nil && reflect.TypeOf(n.Data).Kind() != reflect.Func {
		def.Data = n.Data
	}

	for _, t := range n.Transitions() {
		td := t.Definition()
		def.Transitions = append(def.Transitions, td)
		if def.On == nil {
			def.On = make(map[string][]TransitionDefinition)
		}
		def.On[t.EventType] = append(def.On[t.EventType], td)
	}
	for _, child := range n.Children {
		def.Children = append(def.Children, child.Definition())
	}
	return def
}

// Definition returns the serializable view of t.
func (t *Transition) Definition() TransitionDefinition {
	td := TransitionDefinition{
		Event:    t.EventType,
		Source:   t.Source.ID,
		Guard:    t.Guard,
		In:       t.In,
		Actions:  t.Actions,
		Internal: t.Internal,
		Delay:    t.Delay,
	}
	for _, target := range t.Target {
		td.Target = append(td.Target, "#"+target.ID)
	}
	return td
}
