package primitives

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML (or JSON) machine definition and validates its structure.
func LoadYAML(data []byte) (MachineConfig, error) {
	var cfg MachineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MachineConfig{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return MachineConfig{}, err
	}
	return cfg, nil
}

// LoadYAMLFile reads and parses a machine definition file.
func LoadYAMLFile(path string) (MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MachineConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := LoadYAML(data)
	if err != nil {
		return MachineConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeMap decodes a loosely typed definition (for example from JSON or
// another config loader) into a MachineConfig. Event mappings coming from a Go
// map have no order, so their events are sorted by name.
func DecodeMap(raw map[string]any) (MachineConfig, error) {
	var cfg MachineConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			eventMapHook,
			transitionHook,
		),
	})
	if err != nil {
		return MachineConfig{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return MachineConfig{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return MachineConfig{}, err
	}
	return cfg, nil
}

var (
	eventMapType   = reflect.TypeOf(EventMap{})
	transitionType = reflect.TypeOf(TransitionConfig{})
)

// eventMapHook rewrites {"EVENT": handler(s)} and [{event: ...}] shapes into
// the []EventHandlers layout of EventMap.
func eventMapHook(from, to reflect.Type, data any) (any, error) {
	if to != eventMapType {
		return data, nil
	}
	switch d := data.(type) {
	case map[string]any:
		events := make([]string, 0, len(d))
		for e := range d {
			events = append(events, e)
		}
		sort.Strings(events)
		out := make([]any, 0, len(events))
		for _, e := range events {
			out = append(out, map[string]any{"event": e, "transitions": asList(d[e])})
		}
		return out, nil
	case []any:
		var out []any
		index := map[string]int{}
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("on list entries must be mappings, got %T", item)
			}
			e, _ := m["event"].(string)
			if i, seen := index[e]; seen {
				group := out[i].(map[string]any)
				group["transitions"] = append(group["transitions"].([]any), m)
				continue
			}
			index[e] = len(out)
			out = append(out, map[string]any{"event": e, "transitions": []any{m}})
		}
		return out, nil
	default:
		return data, nil
	}
}

// transitionHook accepts a bare target string wherever a transition is expected.
func transitionHook(from, to reflect.Type, data any) (any, error) {
	if to != transitionType || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"target": data}, nil
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}
