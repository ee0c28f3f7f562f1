// StateValue is the structured form of an active configuration.
//
// A key mapped to an empty value is a leaf: {"idle": nil} means the compound
// parent is in its "idle" child. Parallel regions appear as sibling keys:
// {"upload": {"pending": nil}, "download": {"idle": nil}}.
package primitives

import (
	"sort"
	"strings"
)

// DefaultDelimiter joins keys into ids and dotted state references.
const DefaultDelimiter = "."

// StateValue maps a child key to that child's own StateValue.
type StateValue map[string]StateValue

// ToStateValue parses a delimited reference ("a.b.c") into a StateValue.
// An empty reference yields an empty value.
func ToStateValue(ref, delimiter string) StateValue {
	if ref == "" {
		return StateValue{}
	}
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return PathToStateValue(strings.Split(ref, delimiter))
}

// PathToStateValue nests each path segment under the previous one.
func PathToStateValue(path []string) StateValue {
	value := StateValue{}
	if len(path) == 0 {
		return value
	}
	cursor := value
	for i, key := range path {
		if i == len(path)-1 {
			cursor[key] = nil
			break
		}
		next := StateValue{}
		cursor[key] = next
		cursor = next
	}
	return value
}

// ToStatePaths lists every root-to-leaf key path in v, sorted for determinism.
func ToStatePaths(v StateValue) [][]string {
	var paths [][]string
	for _, key := range v.Keys() {
		child := v[key]
		if len(child) == 0 {
			paths = append(paths, []string{key})
			continue
		}
		for _, sub := range ToStatePaths(child) {
			paths = append(paths, append([]string{key}, sub...))
		}
	}
	return paths
}

// Matches reports whether child satisfies parent. Every key of parent must be
// present in child; a leaf in parent matches any subtree under the same key.
func Matches(parent, child StateValue) bool {
	for key, sub := range parent {
		csub, ok := child[key]
		if !ok {
			return false
		}
		if len(sub) == 0 {
			continue
		}
		if !Matches(sub, csub) {
			return false
		}
	}
	return true
}

// ValueAt descends v along path. Missing segments yield nil.
func ValueAt(v StateValue, path []string) StateValue {
	cursor := v
	for _, key := range path {
		next, ok := cursor[key]
		if !ok {
			return nil
		}
		cursor = next
	}
	return cursor
}

// Keys returns the keys of v in sorted order.
func (v StateValue) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone deep-copies v.
func (v StateValue) Clone() StateValue {
	if v == nil {
		return nil
	}
	out := make(StateValue, len(v))
	for k, sub := range v {
		out[k] = sub.Clone()
	}
	return out
}

// Merge returns a copy of v with other's keys grafted in recursively.
func (v StateValue) Merge(other StateValue) StateValue {
	out := v.Clone()
	if out == nil {
		out = StateValue{}
	}
	for k, sub := range other {
		if existing, ok := out[k]; ok && len(existing) > 0 {
			out[k] = existing.Merge(sub)
			continue
		}
		out[k] = sub.Clone()
	}
	return out
}

// String renders single chains with the default delimiter ("a.b") and
// branching values as "{a.x, b.y}".
func (v StateValue) String() string {
	paths := ToStatePaths(v)
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = strings.Join(p, DefaultDelimiter)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
