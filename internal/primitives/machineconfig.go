// Package primitives defines the foundational data structures for the statechart engine.
//
// MachineConfig is the root node configuration plus machine-level metadata.
// The root's fields are inlined so a YAML definition reads like any other node.

package primitives

import (
	"errors"
	"fmt"
	"strings"
)

// MachineConfig defines the complete statechart configuration.
type MachineConfig struct {
	Version     string `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	StateConfig `yaml:",inline" mapstructure:",squash"`
}

// NewMachineConfig wraps a root node configuration.
func NewMachineConfig(root *StateConfig) MachineConfig {
	if root == nil {
		return MachineConfig{}
	}
	return MachineConfig{StateConfig: *root}
}

// Root returns the root node configuration.
func (m *MachineConfig) Root() *StateConfig {
	return &m.StateConfig
}

// EffectiveDelimiter returns the configured delimiter or DefaultDelimiter.
func (m *MachineConfig) EffectiveDelimiter() string {
	if m.Delimiter == "" {
		return DefaultDelimiter
	}
	return m.Delimiter
}

// Validate validates the entire machine configuration:
// - Non-empty root key
// - Structural validity of every node (recursive)
// - Transition reference syntax on every node
func (m *MachineConfig) Validate() error {
	if m.Key == "" {
		return errors.New("machine key is required")
	}
	if err := m.StateConfig.Validate(); err != nil {
		return fmt.Errorf("machine %q: %w", m.Key, err)
	}
	return m.validateTransitions(&m.StateConfig)
}

func (m *MachineConfig) validateTransitions(s *StateConfig) error {
	d := m.EffectiveDelimiter()
	groups := [][]TransitionConfig{s.On.Flatten(), s.Always, s.After, s.OnDone}
	for _, inv := range s.Invoke {
		groups = append(groups, inv.OnDone, inv.OnError)
	}
	for _, group := range groups {
		for i := range group {
			if err := group[i].Validate(d); err != nil {
				return fmt.Errorf("state %q, transition %d (event %q): %w", s.Key, i, group[i].Event, err)
			}
		}
	}
	for _, child := range s.Children {
		if err := m.validateTransitions(child); err != nil {
			return err
		}
	}
	return nil
}

// FindState resolves a node configuration by delimited key path relative to
// the root (e.g. "parent.child.grandchild").
func (m *MachineConfig) FindState(path string) (*StateConfig, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	segments := strings.Split(path, m.EffectiveDelimiter())
	current := &m.StateConfig
	for i, seg := range segments {
		found := false
		for _, child := range current.Children {
			if child.Key == seg {
				current = child
				found = true
				break
			}
		}
		if !found {
			prefix := strings.Join(segments[:i], m.EffectiveDelimiter())
			if prefix == "" {
				prefix = m.Key
			}
			return nil, fmt.Errorf("child %q not found in %q", seg, prefix)
		}
	}
	return current, nil
}
