package federation

import (
	"fmt"
	"strings"
)

// Delimiter separates the segments of a composite identifier. It may not
// appear inside any segment.
const Delimiter = "."

// ID is a decoded composite identifier. Object is empty for the
// two-segment calendar form.
type ID struct {
	Backend  string
	Calendar string
	Object   string
}

// String re-encodes the identifier.
func (id ID) String() string {
	if id.Object == "" {
		return id.Backend + Delimiter + id.Calendar
	}
	return id.Backend + Delimiter + id.Calendar + Delimiter + id.Object
}

// CalendarID returns the two-segment identifier of the containing calendar.
func (id ID) CalendarID() string {
	return id.Backend + Delimiter + id.Calendar
}

// EncodeCalendarID encodes the two-segment identifier addressing a calendar.
func EncodeCalendarID(backendName, calendar string) (string, error) {
	if err := checkSegments(backendName, calendar); err != nil {
		return "", err
	}
	return backendName + Delimiter + calendar, nil
}

// EncodeObjectID encodes the three-segment identifier addressing one object
// inside a calendar.
func EncodeObjectID(backendName, calendar, object string) (string, error) {
	if err := checkSegments(backendName, calendar, object); err != nil {
		return "", err
	}
	return backendName + Delimiter + calendar + Delimiter + object, nil
}

// DecodeID parses a composite identifier. It fails with
// ErrMalformedIdentifier unless the input splits into exactly 2 or 3
// non-empty segments; malformed input is never silently truncated.
func DecodeID(s string) (ID, error) {
	segments := strings.Split(s, Delimiter)
	if len(segments) != 2 && len(segments) != 3 {
		return ID{}, fmt.Errorf("%w: %q has %d segments, want 2 or 3", ErrMalformedIdentifier, s, len(segments))
	}
	for _, seg := range segments {
		if seg == "" {
			return ID{}, fmt.Errorf("%w: %q contains an empty segment", ErrMalformedIdentifier, s)
		}
	}

	id := ID{Backend: segments[0], Calendar: segments[1]}
	if len(segments) == 3 {
		id.Object = segments[2]
	}
	return id, nil
}

func checkSegments(segments ...string) error {
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("%w: empty segment", ErrInvalidSegment)
		}
		if strings.Contains(seg, Delimiter) {
			return fmt.Errorf("%w: %q contains the delimiter", ErrInvalidSegment, seg)
		}
	}
	return nil
}
