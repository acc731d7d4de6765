package federation

import (
	"context"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/calfed/federation/backend"
)

func TestListObjectsInPeriod_LocalFallback(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)

	// abc overlaps [t0, t1]; xyz is a week later.
	abc := backend.NewMockEvent("abc", "In range", t0.Add(9*time.Hour), t0.Add(10*time.Hour))
	xyz := backend.NewMockEvent("xyz", "Out of range", t0.Add(7*24*time.Hour), t0.Add(7*24*time.Hour+time.Hour))

	db := newDatabase()
	db.On("Supports", backend.OpObjectsInPeriod).Return(false)
	db.On("GetObjects", "personal").Return([]backend.Object{abc, xyz}, nil).Once()

	fed := newTestFederation(t, nil, db)
	got, err := fed.ListObjectsInPeriod(context.Background(), "database.personal", t0, t1)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].UID)
	assert.Equal(t, "database.personal.abc", got[0].Props[backend.PropFederationID])
	db.AssertNotCalled(t, "GetInPeriod")
}

func TestListObjectsInPeriod_NativeDelegation(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	abc := backend.NewMockEvent("abc", "In range", t0.Add(time.Hour), t0.Add(2*time.Hour))

	db := newDatabase()
	db.On("Supports", backend.OpObjectsInPeriod).Return(true)
	db.On("GetInPeriod", "personal", t0, t1).Return([]backend.Object{abc}, nil).Once()

	fed := newTestFederation(t, nil, db)
	got, err := fed.ListObjectsInPeriod(context.Background(), "database.personal", t0, t1)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "database.personal.abc", got[0].Props[backend.PropFederationID])
	db.AssertNotCalled(t, "GetObjects")
}

func TestListObjects_Decoration(t *testing.T) {
	now := time.Now()
	abc := backend.NewMockEvent("abc", "One", now, now.Add(time.Hour))
	xyz := backend.NewMockEvent("xyz", "Two", now, now.Add(time.Hour))

	db := newDatabase()
	db.On("GetObjects", "personal").Return([]backend.Object{abc, xyz}, nil).Once()

	fed := newTestFederation(t, nil, db)
	got, err := fed.ListObjects(context.Background(), "database.personal")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "database.personal.abc", got[0].Props[backend.PropFederationID])
	assert.Equal(t, "database.personal.xyz", got[1].Props[backend.PropFederationID])
}

func TestFindObject_BackendNotFound(t *testing.T) {
	fed := newTestFederation(t, nil, newDatabase())

	_, err := fed.FindObject(context.Background(), "missing.cal.uid")
	assert.ErrorIs(t, err, ErrBackendNotFound)
}

func TestFindObject_Absent(t *testing.T) {
	db := newDatabase()
	db.On("FindObject", "personal", "ghost").Return(mo.None[backend.Object](), nil).Once()

	fed := newTestFederation(t, nil, db)
	found, err := fed.FindObject(context.Background(), "database.personal.ghost")
	require.NoError(t, err)
	assert.True(t, found.IsAbsent())
}

func TestFindObjectByUID(t *testing.T) {
	now := time.Now()
	abc := backend.NewMockEvent("abc", "Indexed", now, now.Add(time.Hour))

	db := newDatabase()
	db.On("GetObjects", "personal").Return([]backend.Object{abc}, nil).Once()
	db.On("FindObject", "personal", "abc").Return(mo.Some(abc), nil).Once()

	fed := newTestFederation(t, nil, db)

	// Not observed yet: the index is best-effort, not a backend search.
	_, err := fed.FindObjectByUID(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrUIDNotIndexed)

	// Listing populates the index.
	_, err = fed.ListObjects(context.Background(), "database.personal")
	require.NoError(t, err)

	found, err := fed.FindObjectByUID(context.Background(), "abc")
	require.NoError(t, err)
	obj, ok := found.Get()
	require.True(t, ok)
	assert.Equal(t, "database.personal.abc", obj.Props[backend.PropFederationID])
}

func TestCreateObject_ReturnsCompositeID(t *testing.T) {
	now := time.Now()
	obj := backend.NewMockEvent("abc", "New", now, now.Add(time.Hour))

	db := newDatabase()
	db.On("Supports", backend.OpCreateObject).Return(true)
	db.On("CreateObject", "personal", &obj).Return(nil).Once()

	fed := newTestFederation(t, nil, db)
	id, err := fed.CreateObject(context.Background(), "database.personal", &obj)
	require.NoError(t, err)
	assert.Equal(t, "database.personal.abc", id)
}

func TestCreateObject_Unsupported(t *testing.T) {
	db := newDatabase()
	db.On("Supports", backend.OpCreateObject).Return(false)

	fed := newTestFederation(t, nil, db)
	obj := backend.NewMockEvent("abc", "New", time.Now(), time.Now().Add(time.Hour))
	_, err := fed.CreateObject(context.Background(), "database.personal", &obj)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	db.AssertNotCalled(t, "CreateObject")
}

func TestDeleteObject_HideFallback(t *testing.T) {
	now := time.Now()
	abc := backend.NewMockEvent("abc", "Hidden", now, now.Add(time.Hour))
	xyz := backend.NewMockEvent("xyz", "Visible", now, now.Add(time.Hour))

	db := newDatabase()
	db.On("Supports", backend.OpDeleteObject).Return(false)
	db.On("GetObjects", "personal").Return([]backend.Object{abc, xyz}, nil)

	fed := newTestFederation(t, nil, db)

	err := fed.DeleteObject(context.Background(), "database.personal.abc")
	require.NoError(t, err)
	db.AssertNotCalled(t, "DeleteObject")

	// Hidden in place: gone from listings, data untouched.
	got, err := fed.ListObjects(context.Background(), "database.personal")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "xyz", got[0].UID)
}

func TestEditObject_MalformedID(t *testing.T) {
	fed := newTestFederation(t, nil, newDatabase())

	// A two-segment id addresses a calendar, not an object.
	err := fed.EditObject(context.Background(), "database.personal", backend.Properties{"summary": "x"})
	assert.ErrorIs(t, err, ErrMalformedIdentifier)
}
