// Package widgets embeds externally owned components in rendered output.
// An owner rewrites its templates once so that elements carrying a
// registered slot class become widget markers; the walker turns markers
// into Instances and tree reconciliation drives their lifecycle.
package widgets

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-stache/pkg/ast"
)

var (
	// ErrDestroyed is returned when a destroyed instance is used again.
	ErrDestroyed = errors.New("widgets: instance destroyed")
	// ErrInitialized is returned when an instance is initialised twice.
	ErrInitialized = errors.New("widgets: instance already initialised")
)

// Props are the values captured for a widget from the render scope.
type Props map[string]any

// View is the component capability a widget wraps. Mount returns the
// component's platform node.
type View interface {
	Mount(props Props) (*html.Node, error)
	Update(props Props) error
	Unmount() error
}

// Hydrator is implemented by views that can adopt server-rendered markup
// instead of mounting fresh nodes.
type Hydrator interface {
	Hydrate(node *html.Node, props Props) error
}

// Constructor describes one kind of widget.
type Constructor struct {
	Name     string
	New      func(owner Owner) View
	Bindings []ast.Binding
	// Portal, when set, renders the widget into a detached host and leaves
	// a placeholder at its position.
	Portal *PortalHost
}

// Owner is the component that owns rendered widgets.
type Owner interface {
	// Constructor returns the constructor registered for a widget slot.
	Constructor(slot string) (*Constructor, bool)
	// Attach returns tmpl with widget markers in place. Owners cache the
	// rewrite so it happens once per template.
	Attach(tmpl *ast.Template) *ast.Template
}

// ParseBinding parses "source" or "source:alias". The alias defaults to
// the last segment of source.
func ParseBinding(raw string) (ast.Binding, error) {
	trimmed := strings.TrimSpace(raw)
	source, alias, _ := strings.Cut(trimmed, ":")
	path, err := ast.ParseKeyPath(source)
	if err != nil {
		return ast.Binding{}, fmt.Errorf("widgets: binding %q: %w", raw, err)
	}
	alias = strings.TrimSpace(alias)
	if alias == "" {
		if n := len(path.Segments); n > 0 {
			alias = path.Segments[n-1]
		} else {
			alias = path.Raw
		}
	}
	return ast.Binding{Source: path, Alias: alias}, nil
}

// ParseBindings parses a list of binding declarations.
func ParseBindings(raw ...string) ([]ast.Binding, error) {
	out := make([]ast.Binding, 0, len(raw))
	for _, item := range raw {
		binding, err := ParseBinding(item)
		if err != nil {
			return nil, err
		}
		out = append(out, binding)
	}
	return out, nil
}

// MustBindings panics on a malformed binding list.
func MustBindings(raw ...string) []ast.Binding {
	out, err := ParseBindings(raw...)
	if err != nil {
		panic(err)
	}
	return out
}
