package federation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/calfed/federation/backend"
)

func TestMemoryGate(t *testing.T) {
	gate := NewMemoryGate(time.Minute)

	assert.True(t, gate.IsStale("database.work"))
	assert.True(t, gate.Lookup("database.work").IsAbsent())

	gate.Put("database.work", backend.NewMockCalendar("database.work", "alice", "Work"))
	assert.False(t, gate.IsStale("database.work"))

	cal, ok := gate.Lookup("database.work").Get()
	require.True(t, ok)
	assert.Equal(t, "database.work", cal.URI)

	gate.Invalidate("database.work")
	assert.True(t, gate.IsStale("database.work"))
	assert.True(t, gate.Lookup("database.work").IsAbsent())
}

func TestMemoryGate_Expiry(t *testing.T) {
	gate := NewMemoryGate(-time.Second)
	gate.Put("database.work", backend.NewMockCalendar("database.work", "alice", "Work"))

	// Entries are still returned by Lookup; staleness is a separate check,
	// which is why the dispatcher consults both.
	assert.True(t, gate.Lookup("database.work").IsPresent())
	assert.True(t, gate.IsStale("database.work"))
}
