package primitives

import (
	"fmt"
	"path"
	"reflect"
	"runtime"
)

// ActionRef references an action: a string type, an Action, a func(any, Event),
// or a map carrying a "type" key plus parameters.
type ActionRef any

// GuardRef references a guard condition: a string type or expression, a Guard,
// a GuardFunc, a func(any, Event) bool, or a map carrying a "type" key.
type GuardRef any

// ActionFunc is an opaque caller-supplied action implementation. The resolver
// never calls it; it is carried through to the interpreter.
type ActionFunc func(ctx any, evt Event)

// GuardFunc is an inline guard predicate. A returned error aborts resolution.
type GuardFunc func(ctx any, evt Event) (bool, error)

// Action is the normalized action descriptor.
type Action struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Exec   ActionFunc     `json:"-" yaml:"-"`
}

// Guard is the normalized guard descriptor.
type Guard struct {
	Type      string         `json:"type" yaml:"type"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Predicate GuardFunc      `json:"-" yaml:"-"`
}

// Name identifies the guard in error messages.
func (g *Guard) Name() string {
	if g == nil {
		return ""
	}
	if g.Type != "" {
		return g.Type
	}
	return "anonymous"
}

// ToAction normalizes an ActionRef.
func ToAction(ref ActionRef) (Action, error) {
	switch a := ref.(type) {
	case Action:
		return a, nil
	case *Action:
		if a == nil {
			return Action{}, fmt.Errorf("nil action")
		}
		return *a, nil
	case string:
		if a == "" {
			return Action{}, fmt.Errorf("empty action type")
		}
		return Action{Type: a}, nil
	case ActionFunc:
		return Action{Type: funcName(a), Exec: a}, nil
	case func(any, Event):
		return Action{Type: funcName(a), Exec: a}, nil
	case map[string]any:
		typ, params, err := splitTyped(a)
		if err != nil {
			return Action{}, fmt.Errorf("action: %w", err)
		}
		return Action{Type: typ, Params: params}, nil
	default:
		return Action{}, fmt.Errorf("unsupported action reference %T", ref)
	}
}

// ToActions normalizes a list of ActionRefs, preserving order.
func ToActions(refs []ActionRef) ([]Action, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]Action, 0, len(refs))
	for i, ref := range refs {
		a, err := ToAction(ref)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// ToGuard normalizes a GuardRef. A nil reference yields a nil guard.
func ToGuard(ref GuardRef) (*Guard, error) {
	switch g := ref.(type) {
	case nil:
		return nil, nil
	case Guard:
		return &g, nil
	case *Guard:
		return g, nil
	case string:
		if g == "" {
			return nil, nil
		}
		return &Guard{Type: g}, nil
	case GuardFunc:
		return &Guard{Type: funcName(g), Predicate: g}, nil
	case func(any, Event) (bool, error):
		return &Guard{Type: funcName(g), Predicate: g}, nil
	case func(any, Event) bool:
		return &Guard{Type: funcName(g), Predicate: func(ctx any, evt Event) (bool, error) {
			return g(ctx, evt), nil
		}}, nil
	case map[string]any:
		typ, params, err := splitTyped(g)
		if err != nil {
			return nil, fmt.Errorf("guard: %w", err)
		}
		return &Guard{Type: typ, Params: params}, nil
	default:
		return nil, fmt.Errorf("unsupported guard reference %T", ref)
	}
}

func splitTyped(m map[string]any) (string, map[string]any, error) {
	typ, ok := m["type"].(string)
	if !ok || typ == "" {
		return "", nil, fmt.Errorf("map reference has no string \"type\" key")
	}
	var params map[string]any
	for k, v := range m {
		if k == "type" {
			continue
		}
		if params == nil {
			params = make(map[string]any, len(m)-1)
		}
		params[k] = v
	}
	return typ, params, nil
}

func funcName(fn any) string {
	if fn == nil {
		return ""
	}
	return path.Base(runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name())
}
