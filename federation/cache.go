package federation

import (
	"sync"
	"time"

	"github.com/cyp0633/calfed/federation/backend"
	"github.com/samber/mo"
)

// CacheGate is consulted by GetCalendar before resolving a calendar through
// its backend. Population is the application's business; the dispatcher only
// reads.
type CacheGate interface {
	// Lookup returns the cached calendar for a composite identifier.
	Lookup(calendarID string) mo.Option[backend.Calendar]
	// IsStale reports whether the cached entry must not be trusted.
	IsStale(calendarID string) bool
}

// noopGate caches nothing, so every lookup falls through to the backend.
type noopGate struct{}

func (noopGate) Lookup(string) mo.Option[backend.Calendar] { return mo.None[backend.Calendar]() }
func (noopGate) IsStale(string) bool                       { return true }

// gateEntry is one cached calendar with its expiry.
type gateEntry struct {
	calendar backend.Calendar
	expires  time.Time
}

// MemoryGate is a TTL-based in-memory CacheGate. Entries expire lazily on
// read; there is no cleanup goroutine.
type MemoryGate struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]gateEntry
}

// NewMemoryGate creates a MemoryGate whose entries go stale after ttl.
func NewMemoryGate(ttl time.Duration) *MemoryGate {
	return &MemoryGate{
		ttl:     ttl,
		entries: make(map[string]gateEntry),
	}
}

// Put caches a calendar under its composite identifier.
func (g *MemoryGate) Put(calendarID string, cal backend.Calendar) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[calendarID] = gateEntry{
		calendar: cal,
		expires:  time.Now().Add(g.ttl),
	}
}

// Invalidate drops the cached entry, if any.
func (g *MemoryGate) Invalidate(calendarID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, calendarID)
}

// Lookup implements the CacheGate interface
func (g *MemoryGate) Lookup(calendarID string) mo.Option[backend.Calendar] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, ok := g.entries[calendarID]
	if !ok {
		return mo.None[backend.Calendar]()
	}
	return mo.Some(entry.calendar)
}

// IsStale implements the CacheGate interface
func (g *MemoryGate) IsStale(calendarID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	entry, ok := g.entries[calendarID]
	return !ok || time.Now().After(entry.expires)
}
