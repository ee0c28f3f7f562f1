// Event provides the immutable event primitive for statechart transitions.
//
// Events are value types. Once created, Events should not be mutated. Use
// NewEvent for construction.
//
// Two event types are reserved:
//
//   - NullEvent ("") selects eventless (transient) transitions.
//   - WildcardEvent ("*") declares a transition matching any non-null event.
package primitives

import "fmt"

const (
	// NullEvent is the event type of eventless ("always") transitions.
	NullEvent = ""
	// WildcardEvent matches every event except NullEvent.
	WildcardEvent = "*"
)

type Event struct {
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewEvent creates and returns a new immutable Event.
func NewEvent(eventType string, data any) Event {
	return Event{
		Type: eventType,
		Data: data,
	}
}

// ToEvent normalizes an event-like value into an Event.
// Accepts Event, *Event, a bare event type string, or a map carrying a "type" key.
func ToEvent(v any) (Event, error) {
	switch e := v.(type) {
	case Event:
		return e, nil
	case *Event:
		if e == nil {
			return Event{}, fmt.Errorf("nil event")
		}
		return *e, nil
	case string:
		return NewEvent(e, nil), nil
	case map[string]any:
		typ, ok := e["type"].(string)
		if !ok {
			return Event{}, fmt.Errorf("event map has no string \"type\" key")
		}
		return NewEvent(typ, e), nil
	default:
		return Event{}, fmt.Errorf("unsupported event value %T", v)
	}
}
