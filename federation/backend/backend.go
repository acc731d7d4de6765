// Package backend defines the capability surface a calendar storage backend
// must expose to the federation layer, plus the value types carried across it.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// Operation identifies one kind of backend operation for capability
// negotiation. Backends advertise native support per operation; the
// federation layer emulates or rejects the rest.
type Operation int

const (
	OpCreateCalendar Operation = iota
	OpEditCalendar
	OpDeleteCalendar
	OpTouchCalendar
	OpMergeCalendars
	OpCreateObject
	OpEditObject
	OpDeleteObject
	OpMoveObject
	OpObjectsInPeriod
)

// String returns the string representation of the Operation.
func (op Operation) String() string {
	switch op {
	case OpCreateCalendar:
		return "create-calendar"
	case OpEditCalendar:
		return "edit-calendar"
	case OpDeleteCalendar:
		return "delete-calendar"
	case OpTouchCalendar:
		return "touch-calendar"
	case OpMergeCalendars:
		return "merge-calendars"
	case OpCreateObject:
		return "create-object"
	case OpEditObject:
		return "edit-object"
	case OpDeleteObject:
		return "delete-object"
	case OpMoveObject:
		return "move-object"
	case OpObjectsInPeriod:
		return "objects-in-period"
	default:
		return "unknown"
	}
}

// Operations lists every negotiable operation kind.
var Operations = []Operation{
	OpCreateCalendar, OpEditCalendar, OpDeleteCalendar, OpTouchCalendar,
	OpMergeCalendars, OpCreateObject, OpEditObject, OpDeleteObject,
	OpMoveObject, OpObjectsInPeriod,
}

// PropFederationID is the property key under which the federation layer
// stores the composite identifier it derives for calendars and objects.
const PropFederationID = "federation-id"

// Properties maps property names to values.
type Properties map[string]string

// Clone returns a copy of the property map. A nil receiver clones to an
// empty, non-nil map so callers can write to the result.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge overwrites entries in p with those from other and returns p.
func (p Properties) Merge(other Properties) Properties {
	for k, v := range other {
		p[k] = v
	}
	return p
}

// Calendar represents a calendar collection owned by exactly one backend.
// The federation layer tags the URI with the owning backend's canonical name
// before returning it to callers; inside a backend the URI is bare.
type Calendar struct {
	// URI identifies the calendar within its backend.
	URI string
	// Owner is the user id of the calendar owner.
	Owner string
	// Active is false for calendars the user has disabled.
	Active bool
	// CTag changes whenever the calendar's contents change.
	CTag string
	// Props holds calendar metadata.
	Props Properties
	// Data stores display properties (NAME, COLOR, ...) using go-ical.
	// The federation layer never interprets it.
	Data *ical.Calendar
}

// Object represents a single calendar object (VEVENT, VTODO, VJOURNAL),
// uniquely identified within its calendar by UID.
type Object struct {
	// UID identifies the object within its calendar.
	UID string
	// Props holds object metadata.
	Props Properties
	// Component stores the underlying VEVENT, VTODO, etc. data using
	// go-ical. Opaque to the federation layer except for time bounds,
	// which the period fallback reads.
	Component *ical.Component
}

var (
	// ErrNotFound is returned by backends when the target of a mutating
	// operation does not exist. Absence on lookups is mo.None, not an error.
	ErrNotFound = errors.New("resource not found")
	// ErrExists is returned when creating a resource that already exists.
	ErrExists = errors.New("resource already exists")
)

// Backend is the surface a storage backend exposes to the federation layer.
// Mutating methods and GetInPeriod are capability-gated: the federation
// layer calls Supports before dispatching and never calls an operation the
// backend does not advertise.
type Backend interface {
	// Supports reports whether the backend natively implements op.
	Supports(op Operation) bool

	// GetCalendars retrieves all calendars belonging to userID.
	GetCalendars(ctx context.Context, userID string) ([]Calendar, error)
	// FindCalendar looks a calendar up by its bare URI.
	FindCalendar(ctx context.Context, uri string) (mo.Option[Calendar], error)
	// IsCalendarWritable reports whether userID may modify the calendar.
	IsCalendarWritable(ctx context.Context, uri, userID string) (bool, error)
	CreateCalendar(ctx context.Context, cal *Calendar) error
	EditCalendar(ctx context.Context, uri string, props Properties) error
	DeleteCalendar(ctx context.Context, uri string) error
	TouchCalendar(ctx context.Context, uri string) error
	// MergeCalendars moves every object of srcURI into dstURI and removes
	// srcURI. Both calendars belong to this backend.
	MergeCalendars(ctx context.Context, dstURI, srcURI string) error

	// GetObjects retrieves all objects in the calendar at uri.
	GetObjects(ctx context.Context, uri string) ([]Object, error)
	// GetInPeriod retrieves the objects in the calendar at uri with an
	// occurrence intersecting [start, end].
	GetInPeriod(ctx context.Context, uri string, start, end time.Time) ([]Object, error)
	// FindObject looks an object up by calendar URI and UID.
	FindObject(ctx context.Context, uri, uid string) (mo.Option[Object], error)
	CreateObject(ctx context.Context, uri string, obj *Object) error
	EditObject(ctx context.Context, uri, uid string, props Properties) error
	DeleteObject(ctx context.Context, uri, uid string) error
	MoveObject(ctx context.Context, srcURI, uid, dstURI string) error
}
