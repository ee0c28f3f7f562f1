package core

// Outcome classifies the result of one Next call.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeUnhandled Outcome = "unhandled"
	OutcomeHistory   Outcome = "history"
	OutcomeError     Outcome = "error"
)

// Memoized view names reported to Observer.ViewComputed.
const (
	ViewTransitions = "transitions"
	ViewOn          = "on"
	ViewAfter       = "after"
	ViewCandidates  = "candidates"
	ViewInitial     = "initial"
	ViewEvents      = "events"
	ViewOwnEvents   = "ownEvents"
	ViewInvoke      = "invoke"
)

// Observer receives resolver telemetry. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// ViewComputed fires once per memoized view per node, when it is computed.
	ViewComputed(view, nodeID string)
	// Resolved fires after every Next call.
	Resolved(nodeID, eventType string, outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) ViewComputed(string, string)      {}
func (nopObserver) Resolved(string, string, Outcome) {}
