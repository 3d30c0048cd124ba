package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownBackend is returned by Registry.Get for a name nobody
// registered.
var ErrUnknownBackend = errors.New("render: unknown backend")

// Registry maps backend names ("html", "vtree", "live", "gomponents") to
// the renderer that serves them. A Pipeline owns one; custom backends are
// added next to the built-in ones.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Renderer
}

// NewRegistry returns a registry with no backends.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Renderer)}
}

// Register adds renderer under its Name. Every backend must declare the
// content type of the bytes it renders.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: backend renderer is nil")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return fmt.Errorf("render: backend has no name")
	}
	if renderer.ContentType() == "" {
		return fmt.Errorf("render: backend %q has no content type", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.backends[name]; taken {
		return fmt.Errorf("render: backend %q already registered", name)
	}
	r.backends[name] = renderer
	return nil
}

// MustRegister is Register for built-in backends.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the backend registered as name. The error wraps
// ErrUnknownBackend and lists what is available.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownBackend, name, strings.Join(r.List(), ", "))
	}
	return renderer, nil
}

// MustGet panics when name is unknown.
func (r *Registry) MustGet(name string) Renderer {
	renderer, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return renderer
}

// List returns the backend names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.backends[name]
	return ok
}

// NewDefaultRegistry returns a registry holding the four built-in
// backends, all driven by w.
func NewDefaultRegistry(w *Walker) *Registry {
	r := NewRegistry()
	r.MustRegister(NewHTMLRenderer(w))
	r.MustRegister(NewTreeRenderer(w))
	r.MustRegister(NewLiveRenderer(w))
	r.MustRegister(NewGomponentsRenderer(w))
	return r
}
