package federation

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyp0633/calfed/federation/backend"
)

// MoveObject relocates an object into another calendar. When source and
// destination live on the same backend and that backend supports moves, the
// move is delegated natively. Otherwise it is emulated as
// create-in-destination followed by delete-from-source. The emulated path is
// not atomic: a failure between the two steps leaves the object duplicated.
func (f *Federation) MoveObject(ctx context.Context, objectID, destinationCalendarID string) error {
	src, b, err := f.decodeObject(objectID)
	if err != nil {
		return err
	}
	dst, _, err := f.decodeCalendar(destinationCalendarID)
	if err != nil {
		return err
	}

	if src.Backend == dst.Backend && negotiate(b, backend.OpMoveObject) == delegate {
		if err := b.MoveObject(ctx, src.Calendar, src.Object, dst.Calendar); err != nil {
			return f.backendFailed(backend.OpMoveObject.String(), objectID, err)
		}
		return nil
	}
	return f.emulateMove(ctx, objectID, destinationCalendarID)
}

// emulateMove is the single-object core of the merge loop: copy into the
// destination, then delete the original.
func (f *Federation) emulateMove(ctx context.Context, objectID, destinationCalendarID string) error {
	found, err := f.FindObject(ctx, objectID)
	if err != nil {
		return err
	}
	obj, ok := found.Get()
	if !ok {
		return fmt.Errorf("move %q: %w", objectID, backend.ErrNotFound)
	}

	// The copy gets a fresh identifier in the destination.
	copied := obj
	copied.Props = obj.Props.Clone()
	delete(copied.Props, backend.PropFederationID)

	if _, err := f.CreateObject(ctx, destinationCalendarID, &copied); err != nil {
		return err
	}
	return f.DeleteObject(ctx, objectID)
}

// MergeCalendars drains every source calendar into the destination and
// removes the sources, in the order supplied. Sources sharing the
// destination's backend are merged natively when the backend supports it;
// the rest are emulated one object at a time through dispatcher primitives.
//
// The emulated path is best-effort, not transactional: a failure partway
// leaves that source partially drained and is not rolled back. Failures are
// reported per source calendar and do not stop the remaining sources.
func (f *Federation) MergeCalendars(ctx context.Context, destinationID string, sourceIDs ...string) error {
	dst, dstBackend, err := f.decodeCalendar(destinationID)
	if err != nil {
		return err
	}

	var failures []error
	for _, sourceID := range sourceIDs {
		src, _, err := f.decodeCalendar(sourceID)
		if err != nil {
			failures = append(failures, fmt.Errorf("merge %q: %w", sourceID, err))
			continue
		}

		if src.Backend == dst.Backend && negotiate(dstBackend, backend.OpMergeCalendars) == delegate {
			if err := dstBackend.MergeCalendars(ctx, dst.Calendar, src.Calendar); err != nil {
				failures = append(failures, fmt.Errorf("merge %q: %w",
					sourceID, f.backendFailed(backend.OpMergeCalendars.String(), sourceID, err)))
			}
			continue
		}

		if err := f.emulateMerge(ctx, destinationID, sourceID); err != nil {
			failures = append(failures, fmt.Errorf("merge %q: %w", sourceID, err))
		}
	}
	return errors.Join(failures...)
}

// emulateMerge moves every object of the source calendar into the
// destination, one at a time, then deletes the drained source.
func (f *Federation) emulateMerge(ctx context.Context, destinationID, sourceID string) error {
	objects, err := f.ListObjects(ctx, sourceID)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		objectID := obj.Props[backend.PropFederationID]
		if err := f.emulateMove(ctx, objectID, destinationID); err != nil {
			return err
		}
	}
	return f.DeleteCalendar(ctx, sourceID)
}
