package federation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/cyp0633/calfed/federation/backend"
	"github.com/cyp0633/calfed/federation/backend/memory"
)

// Factory constructs a backend from the arguments stored in a descriptor.
// Factories are registered at program start, one per backend implementation,
// and referenced by name from descriptors.
type Factory func(args ...string) (backend.Backend, error)

// Descriptor declares a backend to be constructed during setup. Descriptors
// are registered at configuration time and immutable once stored; nothing is
// constructed until SetupAll or Activate runs.
type Descriptor struct {
	// Name labels the descriptor; several descriptors may share one.
	Name string
	// Factory names the registered Factory used for construction.
	Factory string
	// Args are passed to the factory in order.
	Args []string
}

// Registry holds backend descriptors and activated backend instances. It is
// built once at startup and passed by reference to whatever serves requests;
// there is no package-level registry.
//
// The registry has a two-phase lifecycle: registration and setup populate
// it, the serving phase only reads it. Activate and Reset during serving
// require external serialization relative to in-flight operations.
type Registry struct {
	mu          sync.Mutex
	factories   map[string]Factory
	descriptors []Descriptor
	active      map[string]backend.Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		active:    make(map[string]backend.Backend),
	}
}

// RegisterFactory registers the factory constructing backends of the given
// kind. Registering the same name twice overwrites.
func (r *Registry) RegisterFactory(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = fn
}

// Register appends a descriptor. Duplicate names are retained; the
// last-registered descriptor wins at setup time, not at registration time.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.descriptors = append(r.descriptors, d)
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Activate inserts a constructed backend into the activated table under its
// canonical name, overwriting any instance already active under that name.
// Passing nil constructs and activates the default in-memory backend. A
// value that does not implement the backend capability surface fails with
// ErrInvalidBackend. Returns the canonical name.
func (r *Registry) Activate(v any) (string, error) {
	var b backend.Backend
	if v == nil {
		b = memory.New()
	} else {
		var ok bool
		b, ok = v.(backend.Backend)
		if !ok || reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil() {
			return "", fmt.Errorf("%w: %T does not implement the backend surface", ErrInvalidBackend, v)
		}
	}

	name := canonicalName(b)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[name] = b
	return name, nil
}

// ActivatedNames returns the canonical names of all activated backends,
// sorted.
func (r *Registry) ActivatedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the activated backend under the given canonical name.
func (r *Registry) Lookup(name string) (backend.Backend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.active[name]
	return b, ok
}

// SetupAll constructs and activates every descriptor whose factory is
// registered and whose canonical name is not yet active. Descriptors are
// scanned newest-first, so for duplicates the last-registered one wins.
// Descriptors referencing an unknown factory, or whose construction fails,
// are skipped and returned, never fatal.
func (r *Registry) SetupAll() (skipped []string) {
	r.mu.Lock()
	descriptors := make([]Descriptor, len(r.descriptors))
	copy(descriptors, r.descriptors)
	r.mu.Unlock()

	for i := len(descriptors) - 1; i >= 0; i-- {
		d := descriptors[i]

		r.mu.Lock()
		fn, ok := r.factories[d.Factory]
		r.mu.Unlock()
		if !ok {
			skipped = append(skipped, d.Name)
			continue
		}

		b, err := fn(d.Args...)
		if err != nil {
			skipped = append(skipped, d.Name)
			continue
		}
		name := canonicalName(b)

		r.mu.Lock()
		if _, exists := r.active[name]; !exists {
			r.active[name] = b
		}
		r.mu.Unlock()
	}
	return skipped
}

// Reset clears the activated-backend table. Descriptors and factories are
// kept, so a subsequent SetupAll rebuilds the table.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = make(map[string]backend.Backend)
}

// canonicalName derives the name a backend is activated under: the last
// component of its concrete type's name, lowercased. Two differently
// configured instances of one backend type collide under the same canonical
// name, so only one can be active at a time.
func canonicalName(b backend.Backend) string {
	t := reflect.TypeOf(b)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
