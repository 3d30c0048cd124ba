// Package gomp emits maragu.dev/gomponents nodes so rendered templates can
// be composed with hand-written gomponents views.
package gomp

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	g "maragu.dev/gomponents"

	"github.com/goliatone/go-stache/internal/htmlrules"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/output"
)

// Option configures a Builder.
type Option func(*Builder)

// WithReporter routes balance corrections through reporter.
func WithReporter(reporter *diag.Reporter) Option {
	return func(b *Builder) {
		b.reporter = reporter
	}
}

// Builder produces gomponents nodes.
type Builder struct {
	stack    *output.Stack[g.Node]
	reporter *diag.Reporter
	widgets  []output.Widget
}

var _ output.Backend[[]g.Node] = (*Builder)(nil)

// New returns a gomponents builder.
func New(options ...Option) *Builder {
	b := &Builder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.stack = output.NewStack[g.Node](materializer{}, b.reporter)
	return b
}

// SetReporter changes the reporter used by a pooled builder.
func (b *Builder) SetReporter(reporter *diag.Reporter) {
	b.reporter = reporter
	b.stack.SetReporter(reporter)
}

// OpenElement implements output.Builder.
func (b *Builder) OpenElement(tag string, attrs output.Attrs) (output.Handle, error) {
	return b.stack.Open(tag, attrs), nil
}

// CloseElement implements output.Builder.
func (b *Builder) CloseElement(h output.Handle) error {
	return b.stack.Close(h)
}

// CreateObject implements output.Builder. Markup is kept raw; widgets are
// initialised and their node rendered to markup.
func (b *Builder) CreateObject(value any, opts output.ObjectOptions) error {
	switch opts.Kind {
	case output.ObjectText:
		b.stack.Text(output.TextOf(value))
		return nil
	case output.ObjectMarkup:
		b.stack.Append(g.Raw(output.TextOf(value)))
		return nil
	case output.ObjectFragment:
		fragment, ok := value.(output.Fragment)
		if !ok {
			return fmt.Errorf("gomp: %T is not a fragment", value)
		}
		return fragment.Replay(b)
	case output.ObjectWidget:
		w, ok := value.(output.Widget)
		if !ok {
			return fmt.Errorf("gomp: %T is not a widget", value)
		}
		node, err := w.Init()
		if err != nil {
			return err
		}
		b.widgets = append(b.widgets, w)
		if node == nil {
			return nil
		}
		var sb strings.Builder
		if err := html.Render(&sb, node); err != nil {
			return err
		}
		b.stack.Append(g.Raw(sb.String()))
		return nil
	}
	return output.Misuse("gomp", "create object", opts.Kind.String())
}

// CreateComment implements output.Builder.
func (b *Builder) CreateComment(text string) error {
	b.stack.Append(g.Raw("<!--" + text + "-->"))
	return nil
}

// Widgets returns the widgets initialised while building.
func (b *Builder) Widgets() []output.Widget {
	return b.widgets
}

// Output implements output.Backend.
func (b *Builder) Output() ([]g.Node, error) {
	return b.stack.Output()
}

// Clear implements output.Builder.
func (b *Builder) Clear() {
	b.stack.Clear()
	b.widgets = b.widgets[:0]
}

// Render writes nodes in order.
func Render(w io.Writer, nodes []g.Node) error {
	for _, n := range nodes {
		if err := n.Render(w); err != nil {
			return err
		}
	}
	return nil
}

type materializer struct{}

func (materializer) Element(tag string, attrs output.Attrs, children []g.Node) (g.Node, error) {
	nodes := make([]g.Node, 0, len(attrs)+len(children))
	for _, attr := range attrs {
		if attr.Bare {
			nodes = append(nodes, g.Attr(attr.Name))
			continue
		}
		nodes = append(nodes, g.Attr(attr.Name, attr.Value))
	}
	nodes = append(nodes, children...)
	return g.El(tag, nodes...), nil
}

func (materializer) Text(parent, text string) g.Node {
	if htmlrules.IsRawText(parent) {
		return g.Raw(text)
	}
	return g.Text(text)
}
