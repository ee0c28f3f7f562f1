// Package extensibility provides pluggable guard evaluators for core.Machine.
package extensibility

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/comalice/statenode/internal/core"
	"github.com/comalice/statenode/internal/primitives"
)

// DefaultGuardEvaluator provides the default implementation of core.GuardEvaluator.
// Inline predicates run directly; named guards are looked up in Guards, then in
// the machine's own registry. Unregistered guards are an error.
type DefaultGuardEvaluator struct {
	Guards map[string]primitives.GuardFunc
}

// NewDefaultGuardEvaluator creates a DefaultGuardEvaluator over the given guards.
func NewDefaultGuardEvaluator(guards map[string]primitives.GuardFunc) *DefaultGuardEvaluator {
	return &DefaultGuardEvaluator{Guards: guards}
}

// Eval evaluates a guard condition.
func (e *DefaultGuardEvaluator) Eval(node *core.Node, guard *primitives.Guard, ctx any, evt primitives.Event, _ core.State) (bool, error) {
	if guard == nil {
		return true, nil
	}
	if guard.Predicate != nil {
		return guard.Predicate(ctx, evt)
	}
	if fn, ok := e.Guards[guard.Type]; ok {
		return fn(ctx, evt)
	}
	if node != nil {
		if fn, ok := node.Machine().GuardFunc(guard.Type); ok {
			return fn(ctx, evt)
		}
	}
	return false, fmt.Errorf("%w: %q", core.ErrGuardNotRegistered, guard.Type)
}

// ContextGetter is implemented by contexts that expose keyed values.
type ContextGetter interface {
	Get(key string) (any, bool)
}

// ExpressionGuardEvaluator evaluates simple string expressions like
// "temp > 30", "user.loggedIn == true" or "event.kind == urgent" against the
// context and event payload. Guards that are not expressions go to Fallback.
type ExpressionGuardEvaluator struct {
	Fallback core.GuardEvaluator
}

// NewExpressionGuardEvaluator creates a new ExpressionGuardEvaluator that
// falls back to a DefaultGuardEvaluator.
func NewExpressionGuardEvaluator() *ExpressionGuardEvaluator {
	return &ExpressionGuardEvaluator{Fallback: NewDefaultGuardEvaluator(nil)}
}

// Eval parses and evaluates "key op value" against ctx. Keys prefixed with
// "event." read from the event's Data instead.
func (e *ExpressionGuardEvaluator) Eval(node *core.Node, guard *primitives.Guard, ctx any, evt primitives.Event, state core.State) (bool, error) {
	if guard == nil {
		return true, nil
	}
	parts := strings.Fields(guard.Type)
	if guard.Predicate != nil || len(parts) != 3 {
		if e.Fallback == nil {
			return false, fmt.Errorf("%w: %q", core.ErrGuardNotRegistered, guard.Type)
		}
		return e.Fallback.Eval(node, guard, ctx, evt, state)
	}
	key, op, literal := parts[0], parts[1], parts[2]

	var v any
	var found bool
	if rest, ok := strings.CutPrefix(key, "event."); ok {
		v, found = lookup(evt.Data, rest)
	} else {
		v, found = lookup(ctx, key)
	}
	if !found {
		return false, nil
	}
	return compare(v, op, literal)
}

func compare(v any, op, literal string) (bool, error) {
	switch op {
	case "==", "!=":
		eq := equal(v, literal)
		return eq == (op == "=="), nil
	case ">", "<", ">=", "<=":
		lhs, err := cast.ToFloat64E(v)
		if err != nil {
			return false, nil
		}
		rhs, err := cast.ToFloat64E(literal)
		if err != nil {
			return false, fmt.Errorf("guard literal %q is not a number: %w", literal, err)
		}
		switch op {
		case ">":
			return lhs > rhs, nil
		case "<":
			return lhs < rhs, nil
		case ">=":
			return lhs >= rhs, nil
		default:
			return lhs <= rhs, nil
		}
	default:
		return false, fmt.Errorf("unsupported guard operator %q", op)
	}
}

func equal(v any, literal string) bool {
	switch literal {
	case "nil", "null":
		return v == nil
	case "true", "false":
		b, err := cast.ToBoolE(v)
		return err == nil && b == (literal == "true")
	}
	if f, err := cast.ToFloat64E(literal); err == nil {
		if g, err := cast.ToFloat64E(v); err == nil {
			return f == g
		}
	}
	s, err := cast.ToStringE(v)
	return err == nil && s == literal
}

// lookup resolves a dotted key against nested maps or ContextGetters.
func lookup(ctx any, key string) (any, bool) {
	cursor := ctx
	for _, seg := range strings.Split(key, ".") {
		switch c := cursor.(type) {
		case ContextGetter:
			v, ok := c.Get(seg)
			if !ok {
				return nil, false
			}
			cursor = v
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cursor = v
		default:
			m, err := cast.ToStringMapE(cursor)
			if err != nil {
				return nil, false
			}
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cursor = v
		}
	}
	return cursor, true
}

// LoggingGuardEvaluator wraps a GuardEvaluator and logs every evaluation.
type LoggingGuardEvaluator struct {
	inner  core.GuardEvaluator
	logger *slog.Logger
}

// NewLoggingGuardEvaluator creates a new LoggingGuardEvaluator wrapping the given inner evaluator.
func NewLoggingGuardEvaluator(inner core.GuardEvaluator, logger *slog.Logger) *LoggingGuardEvaluator {
	return &LoggingGuardEvaluator{inner: inner, logger: logger}
}

// Eval logs the outcome and duration of delegating to the inner evaluator.
func (e *LoggingGuardEvaluator) Eval(node *core.Node, guard *primitives.Guard, ctx any, evt primitives.Event, state core.State) (bool, error) {
	start := time.Now()
	ok, err := e.inner.Eval(node, guard, ctx, evt, state)
	attrs := []any{
		"guard", guard.Name(),
		"event", evt.Type,
		"result", ok,
		"duration", time.Since(start),
	}
	if node != nil {
		attrs = append(attrs, "node", node.ID)
	}
	if err != nil {
		e.logger.Warn("guard evaluation failed", append(attrs, "error", err)...)
	} else {
		e.logger.Debug("guard evaluated", attrs...)
	}
	return ok, err
}
