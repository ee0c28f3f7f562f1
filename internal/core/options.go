// Options for configuring Machine instances.
package core

import (
	"log/slog"

	"github.com/comalice/statenode/internal/primitives"
)

// WithGuardEvaluator configures the Machine with a custom GuardEvaluator.
func WithGuardEvaluator(e GuardEvaluator) Option {
	return func(m *Machine) {
		m.guardEval = e
	}
}

// WithGuards registers named guard predicates for the default evaluator.
func WithGuards(guards map[string]primitives.GuardFunc) Option {
	return func(m *Machine) {
		for name, g := range guards {
			m.guards[name] = g
		}
	}
}

// WithServices seeds the shared service table with named implementations.
func WithServices(services map[string]any) Option {
	return func(m *Machine) {
		m.services = primitives.NewServiceTable(services)
	}
}

// WithLogger configures the Machine with a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver configures the Machine with a telemetry Observer.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithLazyInvocations defers invocation binding (and anonymous service
// registration) until a node's Invoke view is first read.
func WithLazyInvocations() Option {
	return func(m *Machine) {
		m.lazyInvoke = true
	}
}
