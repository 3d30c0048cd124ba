package widgets

import (
	"sync"

	"github.com/goliatone/go-stache/pkg/ast"
)

// Host is an Owner backed by a Registry. It performs the attachView
// rewrite once per template and remembers the result.
type Host struct {
	registry *Registry
	mu       sync.Mutex
	attached map[*ast.Template]*ast.Template
}

var _ Owner = (*Host)(nil)

// NewHost returns a host over registry. A nil registry embeds nothing.
func NewHost(registry *Registry) *Host {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Host{registry: registry, attached: make(map[*ast.Template]*ast.Template)}
}

// Registry returns the host's registry.
func (h *Host) Registry() *Registry {
	return h.registry
}

// Constructor implements Owner.
func (h *Host) Constructor(slot string) (*Constructor, bool) {
	return h.registry.Lookup(slot)
}

// Attach implements Owner.
func (h *Host) Attach(tmpl *ast.Template) *ast.Template {
	if tmpl == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if out, ok := h.attached[tmpl]; ok {
		return out
	}
	out := h.registry.Decorate(tmpl)
	h.attached[tmpl] = out
	return out
}

// Forget drops cached rewrites, for example after registering more slots.
func (h *Host) Forget() {
	h.mu.Lock()
	h.attached = make(map[*ast.Template]*ast.Template)
	h.mu.Unlock()
}
