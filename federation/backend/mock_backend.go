package backend

import (
	"context"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockBackend implements the Backend interface for testing
type MockBackend struct {
	mock.Mock
}

// Supports implements the Backend interface
func (m *MockBackend) Supports(op Operation) bool {
	args := m.Called(op)
	return args.Bool(0)
}

// GetCalendars implements the Backend interface
func (m *MockBackend) GetCalendars(_ context.Context, userID string) ([]Calendar, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Calendar), args.Error(1)
}

// FindCalendar implements the Backend interface
func (m *MockBackend) FindCalendar(_ context.Context, uri string) (mo.Option[Calendar], error) {
	args := m.Called(uri)
	if args.Get(0) == nil {
		return mo.None[Calendar](), args.Error(1)
	}
	return args.Get(0).(mo.Option[Calendar]), args.Error(1)
}

// IsCalendarWritable implements the Backend interface
func (m *MockBackend) IsCalendarWritable(_ context.Context, uri, userID string) (bool, error) {
	args := m.Called(uri, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackend) CreateCalendar(_ context.Context, cal *Calendar) error {
	args := m.Called(cal)
	return args.Error(0)
}

func (m *MockBackend) EditCalendar(_ context.Context, uri string, props Properties) error {
	args := m.Called(uri, props)
	return args.Error(0)
}

func (m *MockBackend) DeleteCalendar(_ context.Context, uri string) error {
	args := m.Called(uri)
	return args.Error(0)
}

func (m *MockBackend) TouchCalendar(_ context.Context, uri string) error {
	args := m.Called(uri)
	return args.Error(0)
}

func (m *MockBackend) MergeCalendars(_ context.Context, dstURI, srcURI string) error {
	args := m.Called(dstURI, srcURI)
	return args.Error(0)
}

// GetObjects implements the Backend interface
func (m *MockBackend) GetObjects(_ context.Context, uri string) ([]Object, error) {
	args := m.Called(uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Object), args.Error(1)
}

// GetInPeriod implements the Backend interface
func (m *MockBackend) GetInPeriod(_ context.Context, uri string, start, end time.Time) ([]Object, error) {
	args := m.Called(uri, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Object), args.Error(1)
}

// FindObject implements the Backend interface
func (m *MockBackend) FindObject(_ context.Context, uri, uid string) (mo.Option[Object], error) {
	args := m.Called(uri, uid)
	if args.Get(0) == nil {
		return mo.None[Object](), args.Error(1)
	}
	return args.Get(0).(mo.Option[Object]), args.Error(1)
}

func (m *MockBackend) CreateObject(_ context.Context, uri string, obj *Object) error {
	args := m.Called(uri, obj)
	return args.Error(0)
}

func (m *MockBackend) EditObject(_ context.Context, uri, uid string, props Properties) error {
	args := m.Called(uri, uid, props)
	return args.Error(0)
}

func (m *MockBackend) DeleteObject(_ context.Context, uri, uid string) error {
	args := m.Called(uri, uid)
	return args.Error(0)
}

func (m *MockBackend) MoveObject(_ context.Context, srcURI, uid, dstURI string) error {
	args := m.Called(srcURI, uid, dstURI)
	return args.Error(0)
}

// SupportsAll registers a catch-all Supports expectation answering v for
// every operation kind.
func (m *MockBackend) SupportsAll(v bool) {
	m.On("Supports", mock.AnythingOfType("backend.Operation")).Return(v).Maybe()
}

// --- Helper methods for creating test data ---

// NewMockCalendar creates a test Calendar with basic properties
func NewMockCalendar(uri, owner, name string) Calendar {
	data := ical.NewCalendar()
	data.Props.SetText(ical.PropName, name)

	return Calendar{
		URI:    uri,
		Owner:  owner,
		Active: true,
		CTag:   "ctag-" + uri + "-1",
		Props:  Properties{},
		Data:   data,
	}
}

// NewMockEvent creates a test VEVENT calendar object
func NewMockEvent(uid, summary string, start, end time.Time) Object {
	event := ical.NewComponent(ical.CompEvent)
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetText(ical.PropSummary, summary)
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)

	return Object{
		UID:       uid,
		Props:     Properties{"summary": summary},
		Component: event,
	}
}
