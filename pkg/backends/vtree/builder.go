package vtree

import (
	"fmt"

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

// Builder materialises vtree nodes.
type Builder struct {
	stack    *output.Stack[*Node]
	reporter *diag.Reporter
}

var _ output.Backend[Tree] = (*Builder)(nil)

// New returns a tree builder.
func New(options ...Option) *Builder {
	b := &Builder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.stack = output.NewStack[*Node](materializer{}, b.reporter)
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

// CreateObject implements output.Builder.
func (b *Builder) CreateObject(value any, opts output.ObjectOptions) error {
	switch opts.Kind {
	case output.ObjectText:
		b.stack.Text(output.TextOf(value))
		return nil
	case output.ObjectMarkup:
		markup, parent := output.TextOf(value), b.stack.CurrentTag()
		if htmlrules.IsRawText(parent) {
			b.stack.RawText(markup)
			return nil
		}
		return output.ReplayMarkup(b, markup, parent)
	case output.ObjectFragment:
		fragment, ok := value.(output.Fragment)
		if !ok {
			return fmt.Errorf("vtree: %T is not a fragment", value)
		}
		return fragment.Replay(b)
	case output.ObjectWidget:
		w, ok := value.(output.Widget)
		if !ok {
			return fmt.Errorf("vtree: %T is not a widget", value)
		}
		b.stack.Append(WidgetNode(w))
		return nil
	}
	return output.Misuse("vtree", "create object", opts.Kind.String())
}

// CreateComment implements output.Builder.
func (b *Builder) CreateComment(text string) error {
	b.stack.Append(Comment(text))
	return nil
}

// Output implements output.Backend.
func (b *Builder) Output() (Tree, error) {
	nodes, err := b.stack.Output()
	if err != nil {
		return nil, err
	}
	return Tree(nodes), nil
}

// Clear implements output.Builder.
func (b *Builder) Clear() {
	b.stack.Clear()
}

type materializer struct{}

func (materializer) Element(tag string, attrs output.Attrs, children []*Node) (*Node, error) {
	return Element(tag, attrs, children...), nil
}

func (materializer) Text(_ string, text string) *Node {
	return Text(text)
}
