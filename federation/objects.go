package federation

import (
	"context"
	"time"

	"github.com/cyp0633/calfed/federation/backend"
	"github.com/samber/mo"
)

// ListObjects retrieves every object in the calendar, in the backend's own
// order, decorated with its derived composite identifier. Objects hidden by
// the delete fallback are dropped.
func (f *Federation) ListObjects(ctx context.Context, calendarID string) ([]backend.Object, error) {
	decoded, b, err := f.decodeCalendar(calendarID)
	if err != nil {
		return nil, err
	}

	objects, err := b.GetObjects(ctx, decoded.Calendar)
	if err != nil {
		return nil, f.backendFailed("get-objects", calendarID, err)
	}
	return f.decorateObjects(decoded, objects)
}

// ListObjectsInPeriod retrieves the objects with an occurrence in the
// inclusive period [start, end]. Backends advertising native period support
// are delegated to; otherwise all objects are fetched and filtered locally,
// recurrence-aware.
func (f *Federation) ListObjectsInPeriod(ctx context.Context, calendarID string, start, end time.Time) ([]backend.Object, error) {
	decoded, b, err := f.decodeCalendar(calendarID)
	if err != nil {
		return nil, err
	}

	var objects []backend.Object
	if negotiate(b, backend.OpObjectsInPeriod) == delegate {
		objects, err = b.GetInPeriod(ctx, decoded.Calendar, start, end)
		if err != nil {
			return nil, f.backendFailed(backend.OpObjectsInPeriod.String(), calendarID, err)
		}
	} else {
		objects, err = b.GetObjects(ctx, decoded.Calendar)
		if err != nil {
			return nil, f.backendFailed("get-objects", calendarID, err)
		}
		objects = backend.FilterPeriod(objects, start, end)
	}
	return f.decorateObjects(decoded, objects)
}

// decorateObjects tags each object with its composite identifier, records
// UIDs in the index and drops hidden objects.
func (f *Federation) decorateObjects(calID ID, objects []backend.Object) ([]backend.Object, error) {
	out := make([]backend.Object, 0, len(objects))
	for _, obj := range objects {
		if err := f.decorateObject(calID, &obj); err != nil {
			return nil, err
		}
		if f.isHidden(obj.Props[backend.PropFederationID]) {
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

// FindObject resolves an object by its composite identifier. Absence is
// mo.None, not an error.
func (f *Federation) FindObject(ctx context.Context, objectID string) (mo.Option[backend.Object], error) {
	none := mo.None[backend.Object]()

	decoded, b, err := f.decodeObject(objectID)
	if err != nil {
		return none, err
	}

	found, err := b.FindObject(ctx, decoded.Calendar, decoded.Object)
	if err != nil {
		return none, f.backendFailed("find-object", objectID, err)
	}
	obj, ok := found.Get()
	if !ok {
		f.logger.Info("object not found",
			"component", "dispatcher",
			"id", objectID)
		return none, nil
	}

	if err := f.decorateObject(ID{Backend: decoded.Backend, Calendar: decoded.Calendar}, &obj); err != nil {
		return none, err
	}
	return mo.Some(obj), nil
}

// FindObjectByUID resolves an object by bare UID through the UID index. The
// index is populated as objects are observed on read paths, so this is
// best-effort: a UID never observed fails with ErrUIDNotIndexed rather than
// triggering a backend search.
func (f *Federation) FindObjectByUID(ctx context.Context, uid string) (mo.Option[backend.Object], error) {
	f.mu.RLock()
	id, ok := f.uidIndex[uid]
	f.mu.RUnlock()
	if !ok {
		return mo.None[backend.Object](), ErrUIDNotIndexed
	}
	return f.FindObject(ctx, id)
}

// CreateObject creates an object in the calendar and returns its composite
// identifier. Fails with ErrUnsupportedOperation when the backend lacks
// native object creation.
func (f *Federation) CreateObject(ctx context.Context, calendarID string, obj *backend.Object) (string, error) {
	decoded, b, err := f.decodeCalendar(calendarID)
	if err != nil {
		return "", err
	}
	if negotiate(b, backend.OpCreateObject) != delegate {
		return "", f.unsupportedOp(backend.OpCreateObject, calendarID)
	}

	if err := b.CreateObject(ctx, decoded.Calendar, obj); err != nil {
		return "", f.backendFailed(backend.OpCreateObject.String(), calendarID, err)
	}
	return EncodeObjectID(decoded.Backend, decoded.Calendar, obj.UID)
}

// EditObject applies property changes to the object. Fails with
// ErrUnsupportedOperation when the backend lacks native object editing.
func (f *Federation) EditObject(ctx context.Context, objectID string, props backend.Properties) error {
	decoded, b, err := f.decodeObject(objectID)
	if err != nil {
		return err
	}
	if negotiate(b, backend.OpEditObject) != delegate {
		return f.unsupportedOp(backend.OpEditObject, objectID)
	}

	if err := b.EditObject(ctx, decoded.Calendar, decoded.Object, props); err != nil {
		return f.backendFailed(backend.OpEditObject.String(), objectID, err)
	}
	return nil
}

// DeleteObject deletes the object natively when the backend supports it,
// and otherwise hides it in place: dropped from subsequent listings, data
// untouched, call reported successful.
func (f *Federation) DeleteObject(ctx context.Context, objectID string) error {
	decoded, b, err := f.decodeObject(objectID)
	if err != nil {
		return err
	}

	if negotiate(b, backend.OpDeleteObject) == delegate {
		if err := b.DeleteObject(ctx, decoded.Calendar, decoded.Object); err != nil {
			return f.backendFailed(backend.OpDeleteObject.String(), objectID, err)
		}
		return nil
	}

	f.logger.Warn("backend cannot delete, hiding instead",
		"component", "dispatcher",
		"operation", backend.OpDeleteObject.String(),
		"id", objectID)
	f.hide(decoded.String())
	return nil
}
