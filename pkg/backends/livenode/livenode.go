// Package livenode materialises golang.org/x/net/html nodes directly,
// mounting widgets as it goes. It is used for first paint where no
// previous tree exists to diff against.
package livenode

import (
	"fmt"

	"golang.org/x/net/html"

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

// Builder produces detached *html.Node forests.
type Builder struct {
	stack    *output.Stack[*html.Node]
	reporter *diag.Reporter
	widgets  []output.Widget
}

var _ output.Backend[[]*html.Node] = (*Builder)(nil)

// New returns a live-node builder.
func New(options ...Option) *Builder {
	b := &Builder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.stack = output.NewStack[*html.Node](materializer{}, b.reporter)
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

// CreateObject implements output.Builder. Widgets are initialised in place.
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
			return fmt.Errorf("livenode: %T is not a fragment", value)
		}
		return fragment.Replay(b)
	case output.ObjectWidget:
		w, ok := value.(output.Widget)
		if !ok {
			return fmt.Errorf("livenode: %T is not a widget", value)
		}
		node, err := w.Init()
		if err != nil {
			return err
		}
		b.widgets = append(b.widgets, w)
		if node == nil {
			node = &html.Node{Type: html.CommentNode, Data: "widget"}
		}
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
		b.stack.Append(node)
		return nil
	}
	return output.Misuse("livenode", "create object", opts.Kind.String())
}

// CreateComment implements output.Builder.
func (b *Builder) CreateComment(text string) error {
	b.stack.Append(&html.Node{Type: html.CommentNode, Data: text})
	return nil
}

// Widgets returns the widgets initialised by this builder, in document
// order.
func (b *Builder) Widgets() []output.Widget {
	return b.widgets
}

// Output implements output.Backend.
func (b *Builder) Output() ([]*html.Node, error) {
	return b.stack.Output()
}

// Clear implements output.Builder.
func (b *Builder) Clear() {
	b.stack.Clear()
	b.widgets = b.widgets[:0]
}

type materializer struct{}

func (materializer) Element(tag string, attrs output.Attrs, children []*html.Node) (*html.Node, error) {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: htmlrules.Lookup(tag),
	}
	if len(attrs) > 0 {
		n.Attr = make([]html.Attribute, len(attrs))
		for i, attr := range attrs {
			n.Attr[i] = html.Attribute{Key: attr.Name, Val: attr.Value}
		}
	}
	for _, child := range children {
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		n.AppendChild(child)
	}
	return n, nil
}

func (materializer) Text(_ string, text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
