package federation

import "github.com/cyp0633/calfed/federation/backend"

// decision is the outcome of capability negotiation for one operation.
type decision int

const (
	// delegate: the backend implements the operation natively.
	delegate decision = iota
	// emulate: the backend lacks the operation but the federation layer
	// has a fallback composed from other primitives.
	emulate
	// unsupported: no native support and no fallback.
	unsupported
)

// negotiate decides how an operation should be carried out on a backend.
// It is consulted before every mutating call and before the period-bounded
// listing optimization; the dispatcher never guesses a capability.
func negotiate(b backend.Backend, op backend.Operation) decision {
	if b.Supports(op) {
		return delegate
	}
	switch op {
	case backend.OpDeleteCalendar, backend.OpDeleteObject:
		// Hide fallback: mark non-listable, keep the data.
		return emulate
	case backend.OpObjectsInPeriod:
		// Fetch everything and filter locally.
		return emulate
	case backend.OpMergeCalendars, backend.OpMoveObject:
		// Decompose into create-then-delete.
		return emulate
	default:
		return unsupported
	}
}
