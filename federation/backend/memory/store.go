// Package memory provides an in-memory backend implementation. It is the
// default backend activated by the registry and is also useful for testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cyp0633/calfed/federation/backend"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Store implements the backend.Backend interface using in-memory maps
type Store struct {
	mu        sync.RWMutex
	calendars map[string]*backend.Calendar          // key: calendar URI
	objects   map[string]map[string]*backend.Object // key: calendar URI, object UID
	readOnly  map[string]map[string]bool            // key: calendar URI, user ID
	disabled  map[backend.Operation]bool
	ctag      int
}

// New creates a new in-memory backend supporting the full operation surface
func New() *Store {
	return &Store{
		calendars: make(map[string]*backend.Calendar),
		objects:   make(map[string]map[string]*backend.Object),
		readOnly:  make(map[string]map[string]bool),
		disabled:  make(map[backend.Operation]bool),
	}
}

// Disable withdraws native support for the given operations, so tests can
// simulate backends with a limited capability surface.
func (s *Store) Disable(ops ...backend.Operation) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		s.disabled[op] = true
	}
	return s
}

// SetReadOnly marks the calendar at uri as non-writable for userID.
func (s *Store) SetReadOnly(uri, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly[uri] == nil {
		s.readOnly[uri] = make(map[string]bool)
	}
	s.readOnly[uri][userID] = true
}

// Supports implements the backend.Backend interface
func (s *Store) Supports(op backend.Operation) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return !s.disabled[op]
}

func (s *Store) nextCTag() string {
	s.ctag++
	return fmt.Sprintf("ctag-%d", s.ctag)
}

// GetCalendars retrieves all calendars belonging to userID
func (s *Store) GetCalendars(_ context.Context, userID string) ([]backend.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.calendars))
	for uri, cal := range s.calendars {
		if cal.Owner == userID {
			uris = append(uris, uri)
		}
	}
	sort.Strings(uris)

	calendars := make([]backend.Calendar, 0, len(uris))
	for _, uri := range uris {
		calendars = append(calendars, copyCalendar(s.calendars[uri]))
	}
	return calendars, nil
}

// FindCalendar looks a calendar up by its URI
func (s *Store) FindCalendar(_ context.Context, uri string) (mo.Option[backend.Calendar], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cal, ok := s.calendars[uri]
	if !ok {
		return mo.None[backend.Calendar](), nil
	}
	return mo.Some(copyCalendar(cal)), nil
}

// IsCalendarWritable reports whether userID may modify the calendar
func (s *Store) IsCalendarWritable(_ context.Context, uri, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.calendars[uri]; !ok {
		return false, backend.ErrNotFound
	}
	return !s.readOnly[uri][userID], nil
}

// CreateCalendar creates a new calendar, minting a URI when none is given
func (s *Store) CreateCalendar(_ context.Context, cal *backend.Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cal.URI == "" {
		cal.URI = uuid.NewString()
	}
	if _, exists := s.calendars[cal.URI]; exists {
		return backend.ErrExists
	}

	stored := copyCalendar(cal)
	stored.CTag = s.nextCTag()
	s.calendars[cal.URI] = &stored
	s.objects[cal.URI] = make(map[string]*backend.Object)
	return nil
}

// EditCalendar merges props into the calendar's properties
func (s *Store) EditCalendar(_ context.Context, uri string, props backend.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.calendars[uri]
	if !ok {
		return backend.ErrNotFound
	}
	if cal.Props == nil {
		cal.Props = backend.Properties{}
	}
	cal.Props.Merge(props)
	cal.CTag = s.nextCTag()
	return nil
}

// DeleteCalendar removes the calendar and its objects
func (s *Store) DeleteCalendar(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calendars[uri]; !ok {
		return backend.ErrNotFound
	}
	delete(s.calendars, uri)
	delete(s.objects, uri)
	delete(s.readOnly, uri)
	return nil
}

// TouchCalendar bumps the calendar's CTag without changing its contents
func (s *Store) TouchCalendar(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal, ok := s.calendars[uri]
	if !ok {
		return backend.ErrNotFound
	}
	cal.CTag = s.nextCTag()
	return nil
}

// MergeCalendars moves every object of srcURI into dstURI and removes srcURI
func (s *Store) MergeCalendars(_ context.Context, dstURI, srcURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst, ok := s.objects[dstURI]
	if !ok {
		return backend.ErrNotFound
	}
	src, ok := s.objects[srcURI]
	if !ok {
		return backend.ErrNotFound
	}

	for uid, obj := range src {
		dst[uid] = obj
	}
	delete(s.calendars, srcURI)
	delete(s.objects, srcURI)
	delete(s.readOnly, srcURI)
	if cal := s.calendars[dstURI]; cal != nil {
		cal.CTag = s.nextCTag()
	}
	return nil
}

// GetObjects retrieves all objects in the calendar at uri, ordered by UID
func (s *Store) GetObjects(_ context.Context, uri string) ([]backend.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.objects[uri]
	if !ok {
		return nil, backend.ErrNotFound
	}

	uids := make([]string, 0, len(col))
	for uid := range col {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	objects := make([]backend.Object, 0, len(uids))
	for _, uid := range uids {
		objects = append(objects, copyObject(col[uid]))
	}
	return objects, nil
}

// GetInPeriod retrieves the objects with an occurrence in [start, end]
func (s *Store) GetInPeriod(ctx context.Context, uri string, start, end time.Time) ([]backend.Object, error) {
	objects, err := s.GetObjects(ctx, uri)
	if err != nil {
		return nil, err
	}
	return backend.FilterPeriod(objects, start, end), nil
}

// FindObject looks an object up by calendar URI and UID
func (s *Store) FindObject(_ context.Context, uri, uid string) (mo.Option[backend.Object], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.objects[uri]
	if !ok {
		return mo.None[backend.Object](), nil
	}
	obj, ok := col[uid]
	if !ok {
		return mo.None[backend.Object](), nil
	}
	return mo.Some(copyObject(obj)), nil
}

// CreateObject stores a new object, minting a UID when none is given
func (s *Store) CreateObject(_ context.Context, uri string, obj *backend.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.objects[uri]
	if !ok {
		return backend.ErrNotFound
	}
	if obj.UID == "" {
		obj.UID = uuid.NewString()
	}
	if _, exists := col[obj.UID]; exists {
		return backend.ErrExists
	}

	stored := copyObject(obj)
	col[obj.UID] = &stored
	if cal := s.calendars[uri]; cal != nil {
		cal.CTag = s.nextCTag()
	}
	return nil
}

// EditObject merges props into the object's properties
func (s *Store) EditObject(_ context.Context, uri, uid string, props backend.Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.objects[uri]
	if !ok {
		return backend.ErrNotFound
	}
	obj, ok := col[uid]
	if !ok {
		return backend.ErrNotFound
	}
	if obj.Props == nil {
		obj.Props = backend.Properties{}
	}
	obj.Props.Merge(props)
	if cal := s.calendars[uri]; cal != nil {
		cal.CTag = s.nextCTag()
	}
	return nil
}

// DeleteObject removes an object
func (s *Store) DeleteObject(_ context.Context, uri, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.objects[uri]
	if !ok {
		return backend.ErrNotFound
	}
	if _, ok := col[uid]; !ok {
		return backend.ErrNotFound
	}
	delete(col, uid)
	if cal := s.calendars[uri]; cal != nil {
		cal.CTag = s.nextCTag()
	}
	return nil
}

// MoveObject relocates an object between two calendars of this store
func (s *Store) MoveObject(_ context.Context, srcURI, uid, dstURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.objects[srcURI]
	if !ok {
		return backend.ErrNotFound
	}
	dst, ok := s.objects[dstURI]
	if !ok {
		return backend.ErrNotFound
	}
	obj, ok := src[uid]
	if !ok {
		return backend.ErrNotFound
	}

	dst[uid] = obj
	delete(src, uid)
	if cal := s.calendars[srcURI]; cal != nil {
		cal.CTag = s.nextCTag()
	}
	if cal := s.calendars[dstURI]; cal != nil {
		cal.CTag = s.nextCTag()
	}
	return nil
}

// copyCalendar returns a shallow copy with its own property map, so callers
// cannot mutate stored state through the returned value.
func copyCalendar(cal *backend.Calendar) backend.Calendar {
	out := *cal
	out.Props = cal.Props.Clone()
	return out
}

func copyObject(obj *backend.Object) backend.Object {
	out := *obj
	out.Props = obj.Props.Clone()
	return out
}
