package federation

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cyp0633/calfed/federation/backend"
)

// Federation is the public operation surface over all activated backends.
// Every operation decodes the supplied composite identifier, resolves the
// owning backend through the registry, negotiates capabilities and
// dispatches, emulating what the backend cannot do natively.
//
// A Federation is safe for concurrent use as long as the registry it reads
// is not mutated concurrently (see Registry).
type Federation struct {
	registry *Registry
	gate     CacheGate
	logger   *slog.Logger

	mu sync.RWMutex
	// uidIndex maps bare object UIDs to composite identifiers. Populated
	// whenever an object is observed on a read path; never written on
	// create/edit and never invalidated.
	uidIndex map[string]string
	// hidden records composite ids removed from listings by the
	// hide-instead-of-delete fallback. Backend data stays untouched.
	hidden map[string]struct{}
}

// New creates a Federation over the given registry. A nil gate disables
// calendar caching; a nil logger falls back to slog.Default().
func New(registry *Registry, gate CacheGate, logger *slog.Logger) *Federation {
	if gate == nil {
		gate = noopGate{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Federation{
		registry: registry,
		gate:     gate,
		logger:   logger,
		uidIndex: make(map[string]string),
		hidden:   make(map[string]struct{}),
	}
}

// Registry returns the registry the federation dispatches through.
func (f *Federation) Registry() *Registry {
	return f.registry
}

// resolve returns the activated backend for a canonical name.
func (f *Federation) resolve(name string) (backend.Backend, error) {
	b, ok := f.registry.Lookup(name)
	if !ok {
		f.logger.Warn("backend not activated",
			"component", "dispatcher",
			"backend", name)
		return nil, fmt.Errorf("%w: %q", ErrBackendNotFound, name)
	}
	return b, nil
}

// decodeCalendar decodes an identifier that must address a calendar and
// resolves its backend.
func (f *Federation) decodeCalendar(id string) (ID, backend.Backend, error) {
	decoded, err := DecodeID(id)
	if err != nil {
		return ID{}, nil, err
	}
	if decoded.Object != "" {
		return ID{}, nil, fmt.Errorf("%w: %q addresses an object, want a calendar", ErrMalformedIdentifier, id)
	}
	b, err := f.resolve(decoded.Backend)
	return decoded, b, err
}

// decodeObject decodes an identifier that must address an object and
// resolves its backend.
func (f *Federation) decodeObject(id string) (ID, backend.Backend, error) {
	decoded, err := DecodeID(id)
	if err != nil {
		return ID{}, nil, err
	}
	if decoded.Object == "" {
		return ID{}, nil, fmt.Errorf("%w: %q addresses a calendar, want an object", ErrMalformedIdentifier, id)
	}
	b, err := f.resolve(decoded.Backend)
	return decoded, b, err
}

// tagCalendar stamps a calendar with its owning backend: the canonical name
// is prefixed onto the URI and the composite identifier is stored as a
// property. Derived from (backend name, bare URI) alone, and idempotent.
func tagCalendar(backendName string, cal *backend.Calendar) error {
	if taggedID, err := DecodeID(cal.URI); err == nil && taggedID.Backend == backendName {
		return nil // already tagged
	}
	id, err := EncodeCalendarID(backendName, cal.URI)
	if err != nil {
		return err
	}
	cal.URI = id
	if cal.Props == nil {
		cal.Props = backend.Properties{}
	}
	cal.Props[backend.PropFederationID] = id
	return nil
}

// decorateObject stamps an object with its derived composite identifier and
// records the UID in the index.
func (f *Federation) decorateObject(calID ID, obj *backend.Object) error {
	id, err := EncodeObjectID(calID.Backend, calID.Calendar, obj.UID)
	if err != nil {
		return err
	}
	if obj.Props == nil {
		obj.Props = backend.Properties{}
	}
	obj.Props[backend.PropFederationID] = id

	f.mu.Lock()
	f.uidIndex[obj.UID] = id
	f.mu.Unlock()
	return nil
}

func (f *Federation) hide(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hidden[id] = struct{}{}
}

func (f *Federation) isHidden(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.hidden[id]
	return ok
}

// backendFailed logs a backend-reported failure and wraps it so callers can
// test for ErrBackendOperationFailed.
func (f *Federation) backendFailed(op, id string, err error) error {
	f.logger.Error("backend operation failed",
		"component", "dispatcher",
		"operation", op,
		"id", id,
		"error", err)
	return fmt.Errorf("%w: %s on %q: %v", ErrBackendOperationFailed, op, id, err)
}

// unsupportedOp logs and returns the typed unsupported-operation failure.
func (f *Federation) unsupportedOp(op backend.Operation, id string) error {
	f.logger.Warn("operation not supported by backend",
		"component", "dispatcher",
		"operation", op.String(),
		"id", id)
	return fmt.Errorf("%w: %s on %q", ErrUnsupportedOperation, op, id)
}
