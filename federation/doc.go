/*
Package federation lets a calendaring application address calendars and
calendar objects spread over multiple, independently implemented storage
backends through one uniform API and one flat identifier scheme.

# Identifiers

Everything is addressed by a composite identifier of two or three
dot-delimited, non-empty segments:

	backend.calendar         a calendar
	backend.calendar.object  one object inside it

The first segment is the canonical name of the activated backend, derived
from the backend type's name, lowercased. Segments may not contain the
delimiter and identifiers are case-sensitive.

# Basic Usage

Build a registry, activate backends, and hand both to a Federation:

	reg := federation.NewRegistry()
	reg.Activate(nil) // default in-memory backend, activated as "store"
	reg.Activate(myDatabaseBackend)

	fed := federation.New(reg, nil, slog.Default())

	cals, err := fed.ListCalendars(ctx, "alice", federation.ListFilter{ActiveOnly: true})
	objs, err := fed.ListObjectsInPeriod(ctx, "store.personal", from, to)

Backends can also be declared as descriptors and constructed later:

	reg.RegisterFactory("memory", func(args ...string) (backend.Backend, error) {
		return memory.New(), nil
	})
	reg.Register(federation.Descriptor{Name: "scratch", Factory: "memory"})
	skipped := reg.SetupAll()

# Capability Negotiation

Backends advertise, per operation kind, whether they implement it natively
(see backend.Operation). The dispatcher checks before every mutating call
and never guesses. Missing capabilities are handled three ways:

  - create, edit and touch fail with ErrUnsupportedOperation
  - delete falls back to hiding the target: it disappears from listings,
    the underlying data stays, and the call succeeds
  - period-bounded listing, move and merge are emulated from primitives

The emulated merge and move paths are best-effort, not atomic: a failure
partway through is reported but already-completed steps are not rolled back.

# Custom Backends

Implement the backend.Backend interface and activate an instance. The
backend/memory package is a complete reference implementation and useful in
tests:

	store := memory.New().Disable(backend.OpDeleteCalendar)
	name, err := reg.Activate(store)

# Caching

GetCalendar consults a CacheGate before asking the backend. Pass nil for no
caching, or a MemoryGate (TTL-based), or your own implementation. The
dispatcher never writes to the gate.
*/
package federation
