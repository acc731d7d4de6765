package federation

import (
	"context"

	"github.com/cyp0633/calfed/federation/backend"
	"github.com/samber/mo"
)

// ListFilter narrows ListCalendars results.
type ListFilter struct {
	// ActiveOnly drops calendars flagged disabled, including ones hidden
	// by the delete fallback.
	ActiveOnly bool
	// WritableOnly drops calendars the backend reports as non-writable for
	// the requesting user.
	WritableOnly bool
	// Backends restricts the listing to these canonical names, in the
	// given order. Empty means all activated backends, sorted by name.
	Backends []string
}

// ListCalendars fetches the user's calendars from every backend in scope and
// concatenates them in backend-iteration order, preserving each backend's own
// return order within its segment. No cross-backend sort is applied. Every
// calendar is tagged with its owning backend (URI prefix plus composite
// identifier property).
func (f *Federation) ListCalendars(ctx context.Context, userID string, filter ListFilter) ([]backend.Calendar, error) {
	names := filter.Backends
	if len(names) == 0 {
		names = f.registry.ActivatedNames()
	}

	// An explicit subset must exist before any backend is queried.
	backends := make([]backend.Backend, 0, len(names))
	for _, name := range names {
		b, err := f.resolve(name)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}

	var out []backend.Calendar
	for i, b := range backends {
		calendars, err := b.GetCalendars(ctx, userID)
		if err != nil {
			return nil, f.backendFailed("get-calendars", names[i], err)
		}

		for _, cal := range calendars {
			bareURI := cal.URI
			if err := tagCalendar(names[i], &cal); err != nil {
				return nil, err
			}
			if filter.ActiveOnly && (!cal.Active || f.isHidden(cal.URI)) {
				continue
			}
			if filter.WritableOnly {
				writable, err := b.IsCalendarWritable(ctx, bareURI, userID)
				if err != nil {
					return nil, f.backendFailed("is-calendar-writable", cal.URI, err)
				}
				if !writable {
					continue
				}
			}
			out = append(out, cal)
		}
	}
	return out, nil
}

// GetCalendar resolves a calendar by its composite identifier. The cache
// gate is consulted first; a present, non-stale entry short-circuits the
// backend lookup. Absence is mo.None, not an error.
func (f *Federation) GetCalendar(ctx context.Context, id string) (mo.Option[backend.Calendar], error) {
	none := mo.None[backend.Calendar]()

	if cached := f.gate.Lookup(id); cached.IsPresent() && !f.gate.IsStale(id) {
		return cached, nil
	}

	decoded, b, err := f.decodeCalendar(id)
	if err != nil {
		return none, err
	}

	found, err := b.FindCalendar(ctx, decoded.Calendar)
	if err != nil {
		return none, f.backendFailed("find-calendar", id, err)
	}
	cal, ok := found.Get()
	if !ok {
		f.logger.Info("calendar not found",
			"component", "dispatcher",
			"id", id)
		return none, nil
	}

	if err := tagCalendar(decoded.Backend, &cal); err != nil {
		return none, err
	}
	return mo.Some(cal), nil
}

// CreateCalendar creates a calendar on the named backend and returns its
// composite identifier. Fails with ErrUnsupportedOperation when the backend
// lacks native calendar creation.
func (f *Federation) CreateCalendar(ctx context.Context, backendName string, cal *backend.Calendar) (string, error) {
	b, err := f.resolve(backendName)
	if err != nil {
		return "", err
	}
	if negotiate(b, backend.OpCreateCalendar) != delegate {
		return "", f.unsupportedOp(backend.OpCreateCalendar, backendName)
	}

	if err := b.CreateCalendar(ctx, cal); err != nil {
		return "", f.backendFailed(backend.OpCreateCalendar.String(), backendName, err)
	}
	return EncodeCalendarID(backendName, cal.URI)
}

// EditCalendar applies property changes to the calendar. Fails with
// ErrUnsupportedOperation when the backend lacks native calendar editing.
func (f *Federation) EditCalendar(ctx context.Context, id string, props backend.Properties) error {
	decoded, b, err := f.decodeCalendar(id)
	if err != nil {
		return err
	}
	if negotiate(b, backend.OpEditCalendar) != delegate {
		return f.unsupportedOp(backend.OpEditCalendar, id)
	}

	if err := b.EditCalendar(ctx, decoded.Calendar, props); err != nil {
		return f.backendFailed(backend.OpEditCalendar.String(), id, err)
	}
	return nil
}

// TouchCalendar marks the calendar as changed without modifying contents.
// Fails with ErrUnsupportedOperation when unsupported.
func (f *Federation) TouchCalendar(ctx context.Context, id string) error {
	decoded, b, err := f.decodeCalendar(id)
	if err != nil {
		return err
	}
	if negotiate(b, backend.OpTouchCalendar) != delegate {
		return f.unsupportedOp(backend.OpTouchCalendar, id)
	}

	if err := b.TouchCalendar(ctx, decoded.Calendar); err != nil {
		return f.backendFailed(backend.OpTouchCalendar.String(), id, err)
	}
	return nil
}

// DeleteCalendar deletes the calendar natively when the backend supports it.
// Otherwise it falls back to hiding: the calendar is dropped from subsequent
// active listings while the underlying data stays in place, and the call
// still succeeds. Deletion is the one calendar mutation with a non-failing
// degraded path.
func (f *Federation) DeleteCalendar(ctx context.Context, id string) error {
	decoded, b, err := f.decodeCalendar(id)
	if err != nil {
		return err
	}

	if negotiate(b, backend.OpDeleteCalendar) == delegate {
		if err := b.DeleteCalendar(ctx, decoded.Calendar); err != nil {
			return f.backendFailed(backend.OpDeleteCalendar.String(), id, err)
		}
		return nil
	}

	f.logger.Warn("backend cannot delete, hiding instead",
		"component", "dispatcher",
		"operation", backend.OpDeleteCalendar.String(),
		"id", id)
	f.hide(decoded.String())
	return nil
}
