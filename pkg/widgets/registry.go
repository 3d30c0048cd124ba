package widgets

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-stache/pkg/ast"
)

// Matcher decides whether an element becomes a widget marker.
type Matcher func(el *ast.Element) bool

// ClassMatcher matches elements whose static class list contains class.
func ClassMatcher(class string) Matcher {
	return func(el *ast.Element) bool {
		return slices.Contains(el.Classes(), class)
	}
}

type rule struct {
	ctor     *Constructor
	priority int
	match    Matcher
	order    int
}

// Registry maps elements to widget constructors. Higher priority wins;
// ties fall back to registration order. An empty registry never resolves
// a widget.
type Registry struct {
	mu     sync.RWMutex
	rules  []rule
	byName map[string]*Constructor
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Constructor)}
}

// Register adds a constructor selected by matcher. The constructor name
// must be unique.
func (r *Registry) Register(ctor *Constructor, priority int, matcher Matcher) error {
	if r == nil {
		return fmt.Errorf("widgets: registry is nil")
	}
	if ctor == nil || matcher == nil {
		return fmt.Errorf("widgets: constructor and matcher are required")
	}
	name := strings.TrimSpace(ctor.Name)
	if name == "" {
		return fmt.Errorf("widgets: constructor name is required")
	}
	if ctor.New == nil {
		return fmt.Errorf("widgets: constructor %q has no factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("widgets: constructor %q already registered", name)
	}
	r.byName[name] = ctor
	r.rules = append(r.rules, rule{
		ctor:     ctor,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
	return nil
}

// RegisterSlot registers ctor for elements carrying class.
func (r *Registry) RegisterSlot(class string, ctor *Constructor, priority int) error {
	class = strings.TrimSpace(class)
	if class == "" {
		return fmt.Errorf("widgets: slot class is required")
	}
	return r.Register(ctor, priority, ClassMatcher(class))
}

// MustRegisterSlot panics on registration failure.
func (r *Registry) MustRegisterSlot(class string, ctor *Constructor, priority int) {
	if err := r.RegisterSlot(class, ctor, priority); err != nil {
		panic(err)
	}
}

// Lookup returns a constructor by name.
func (r *Registry) Lookup(name string) (*Constructor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.byName[name]
	return ctor, ok
}

// Resolve returns the constructor for el.
func (r *Registry) Resolve(el *ast.Element) (*Constructor, bool) {
	if r == nil || el == nil {
		return nil, false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return nil, false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(el) {
			return entry.ctor, true
		}
	}
	return nil, false
}

// Names returns the registered constructor names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decorate returns a copy of tmpl in which every element resolved by the
// registry is replaced by a widget marker. The input is not modified and
// is returned as is when nothing matched.
func (r *Registry) Decorate(tmpl *ast.Template) *ast.Template {
	if r == nil || tmpl == nil {
		return tmpl
	}
	root, changed := r.decorateNodes(tmpl.Root)
	if !changed {
		return tmpl
	}
	out := *tmpl
	out.Root = root
	return &out
}

func (r *Registry) decorateNodes(nodes []ast.Node) ([]ast.Node, bool) {
	if len(nodes) == 0 {
		return nodes, false
	}
	out := make([]ast.Node, len(nodes))
	changed := false
	for idx, n := range nodes {
		decorated, ok := r.decorateNode(n)
		out[idx] = decorated
		changed = changed || ok
	}
	if !changed {
		return nodes, false
	}
	return out, true
}

func (r *Registry) decorateNode(n ast.Node) (ast.Node, bool) {
	switch node := n.(type) {
	case *ast.Element:
		if ctor, ok := r.Resolve(node); ok {
			return &ast.Widget{
				Slot:     ctor.Name,
				Bindings: ctor.Bindings,
				Element:  node,
			}, true
		}
		children, changed := r.decorateNodes(node.Children)
		if !changed {
			return node, false
		}
		copied := *node
		copied.Children = children
		return &copied, true
	case *ast.Section:
		children, changed := r.decorateNodes(node.Children)
		if !changed {
			return node, false
		}
		copied := *node
		copied.Children = children
		return &copied, true
	}
	return n, false
}
