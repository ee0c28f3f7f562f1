package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid statechart configuration")
	// ErrNotFound reports an id or path that does not resolve to a node.
	ErrNotFound = errors.New("state node not found")
)

// ConfigError reports a malformed node tree. It is fatal: a machine is never
// returned alongside one.
type ConfigError struct {
	NodeID string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("state node %q: %s", e.NodeID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidConfig}
	}
	return []error{ErrInvalidConfig, e.Err}
}

func configErrorf(nodeID string, format string, args ...any) *ConfigError {
	return &ConfigError{NodeID: nodeID, Reason: fmt.Sprintf(format, args...)}
}

// GuardError wraps a guard callback failure. Resolution of the event on the
// node is aborted; no partial result is returned.
type GuardError struct {
	Guard  string
	Event  string
	NodeID string
	Err    error
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("unable to evaluate guard %q in transition for event %q in state node %q: %v",
		e.Guard, e.Event, e.NodeID, e.Err)
}

func (e *GuardError) Unwrap() error {
	return e.Err
}
