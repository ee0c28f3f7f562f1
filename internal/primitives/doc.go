// Package primitives provides the declarative data structures consumed by the
// statenode resolver: node and transition configuration, events, state values,
// action/guard descriptors and the machine-wide service table.
//
// Nothing in this package resolves transitions. Types here are inputs to
// internal/core, which builds the immutable node tree from them.
//
// Core invariants:
// - Events are values and are never mutated after construction
// - StateValue helpers never mutate their arguments
// - Declaration order of children and handlers is preserved end to end
package primitives
