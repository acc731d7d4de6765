package federation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/calfed/federation/backend"
	"github.com/cyp0633/calfed/federation/backend/memory"
)

// database gives the mock backend a distinct canonical name.
type database struct {
	*backend.MockBackend
}

func newDatabase() *database {
	return &database{MockBackend: &backend.MockBackend{}}
}

// tagged is a backend type whose construction argument is observable, so
// tests can tell which descriptor produced the activated instance.
type tagged struct {
	*memory.Store
	arg string
}

func TestRegistry_ActivateDefault(t *testing.T) {
	reg := NewRegistry()

	name, err := reg.Activate(nil)
	require.NoError(t, err)
	assert.Equal(t, "store", name)

	b, ok := reg.Lookup("store")
	assert.True(t, ok)
	assert.NotNil(t, b)
}

func TestRegistry_ActivateOverwrites(t *testing.T) {
	reg := NewRegistry()

	first := newDatabase()
	second := newDatabase()

	name, err := reg.Activate(first)
	require.NoError(t, err)
	assert.Equal(t, "database", name)

	_, err = reg.Activate(second)
	require.NoError(t, err)

	// Same canonical name: exactly one entry, the most recent instance.
	assert.Equal(t, []string{"database"}, reg.ActivatedNames())
	got, ok := reg.Lookup("database")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistry_ActivateInvalid(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Activate("not a backend")
	assert.ErrorIs(t, err, ErrInvalidBackend)

	var nilBackend *database
	_, err = reg.Activate(nilBackend)
	assert.ErrorIs(t, err, ErrInvalidBackend)

	assert.Empty(t, reg.ActivatedNames())
}

func TestRegistry_SetupAll(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("tagged", func(args ...string) (backend.Backend, error) {
		return &tagged{Store: memory.New(), arg: args[0]}, nil
	})

	reg.Register(Descriptor{Name: "first", Factory: "tagged", Args: []string{"one"}})
	reg.Register(Descriptor{Name: "orphan", Factory: "no-such-factory"})
	reg.Register(Descriptor{Name: "second", Factory: "tagged", Args: []string{"two"}})

	skipped := reg.SetupAll()
	assert.Equal(t, []string{"orphan"}, skipped)

	// Both resolvable descriptors collide under one canonical name; the
	// last-registered one wins.
	assert.Equal(t, []string{"tagged"}, reg.ActivatedNames())
	b, ok := reg.Lookup("tagged")
	require.True(t, ok)
	assert.Equal(t, "two", b.(*tagged).arg)
}

func TestRegistry_SetupAllSkipsActivated(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("tagged", func(args ...string) (backend.Backend, error) {
		return &tagged{Store: memory.New(), arg: args[0]}, nil
	})
	reg.Register(Descriptor{Name: "declared", Factory: "tagged", Args: []string{"from-descriptor"}})

	manual := &tagged{Store: memory.New(), arg: "manual"}
	_, err := reg.Activate(manual)
	require.NoError(t, err)

	skipped := reg.SetupAll()
	assert.Empty(t, skipped)

	// Already activated under the same canonical name: kept, not replaced.
	b, ok := reg.Lookup("tagged")
	require.True(t, ok)
	assert.Same(t, manual, b)
}

func TestRegistry_Reset(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("tagged", func(args ...string) (backend.Backend, error) {
		return &tagged{Store: memory.New(), arg: "x"}, nil
	})
	reg.Register(Descriptor{Name: "declared", Factory: "tagged", Args: nil})

	reg.SetupAll()
	require.NotEmpty(t, reg.ActivatedNames())

	reg.Reset()
	assert.Empty(t, reg.ActivatedNames())
	// Descriptors and factories survive a reset.
	assert.Len(t, reg.Descriptors(), 1)
	assert.Empty(t, reg.SetupAll())
	assert.Equal(t, []string{"tagged"}, reg.ActivatedNames())
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "store", canonicalName(memory.New()))
	assert.Equal(t, "database", canonicalName(newDatabase()))
}
