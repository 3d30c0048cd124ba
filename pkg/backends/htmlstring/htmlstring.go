// Package htmlstring serializes builder output to markup. The attribute
// variant produced by NewAttr flattens dynamic attribute fragments and
// rejects anything that cannot appear inside a start tag.
package htmlstring

import (
	"strings"

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

// Builder accumulates serialized markup.
type Builder struct {
	stack    *output.Stack[string]
	reporter *diag.Reporter
	attrOnly bool
	widgets  []output.Widget
}

var _ output.Backend[string] = (*Builder)(nil)

// New returns a markup builder.
func New(options ...Option) *Builder {
	return build(false, options...)
}

// NewAttr returns an attribute-text builder. Opening elements, comments,
// widgets and fragments fail with output.ErrMisuse.
func NewAttr(options ...Option) *Builder {
	return build(true, options...)
}

func build(attrOnly bool, options ...Option) *Builder {
	b := &Builder{attrOnly: attrOnly}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	b.stack = output.NewStack[string](serializer{}, b.reporter)
	return b
}

func (b *Builder) name() string {
	if b.attrOnly {
		return "attribute"
	}
	return "html"
}

// SetReporter changes the reporter used by a pooled builder.
func (b *Builder) SetReporter(reporter *diag.Reporter) {
	b.reporter = reporter
	b.stack.SetReporter(reporter)
}

// OpenElement implements output.Builder.
func (b *Builder) OpenElement(tag string, attrs output.Attrs) (output.Handle, error) {
	if b.attrOnly {
		return 0, output.Misuse(b.name(), "open an element", "<"+tag+">")
	}
	return b.stack.Open(tag, attrs), nil
}

// CloseElement implements output.Builder.
func (b *Builder) CloseElement(h output.Handle) error {
	if b.attrOnly {
		return output.Misuse(b.name(), "close an element", "")
	}
	return b.stack.Close(h)
}

// CreateObject implements output.Builder.
func (b *Builder) CreateObject(value any, opts output.ObjectOptions) error {
	switch opts.Kind {
	case output.ObjectText:
		b.stack.Text(output.TextOf(value))
		return nil
	case output.ObjectMarkup:
		b.stack.Append(output.TextOf(value))
		return nil
	case output.ObjectFragment:
		if b.attrOnly {
			return output.Misuse(b.name(), "splice a fragment", "")
		}
		fragment, ok := value.(output.Fragment)
		if !ok {
			return output.Misuse(b.name(), "splice a fragment", "value is not a fragment")
		}
		return fragment.Replay(b)
	case output.ObjectWidget:
		if b.attrOnly {
			return output.Misuse(b.name(), "mount a widget", "")
		}
		w, ok := value.(output.Widget)
		if !ok {
			return output.Misuse(b.name(), "mount a widget", "value is not a widget")
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
		b.stack.Append(sb.String())
		return nil
	default:
		return output.Misuse(b.name(), "create object", opts.Kind.String())
	}
}

// CreateComment implements output.Builder.
func (b *Builder) CreateComment(text string) error {
	if b.attrOnly {
		return output.Misuse(b.name(), "create a comment", "")
	}
	b.stack.Append("<!--" + text + "-->")
	return nil
}

// Widgets returns the widgets mounted while serializing.
func (b *Builder) Widgets() []output.Widget {
	return b.widgets
}

// Output implements output.Backend.
func (b *Builder) Output() (string, error) {
	parts, err := b.stack.Output()
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ""), nil
}

// Clear implements output.Builder.
func (b *Builder) Clear() {
	b.stack.Clear()
	b.widgets = b.widgets[:0]
}

type serializer struct{}

func (serializer) Element(tag string, attrs output.Attrs, children []string) (string, error) {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(tag)
	WriteAttrs(&sb, attrs)
	sb.WriteByte('>')
	if htmlrules.IsVoid(tag) {
		return sb.String(), nil
	}
	for _, child := range children {
		sb.WriteString(child)
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
	return sb.String(), nil
}

func (serializer) Text(parent, text string) string {
	if htmlrules.IsRawText(parent) {
		return text
	}
	return output.Escape(text)
}

// WriteAttrs serializes attrs with a leading space each. Bare attributes
// are written without a value.
func WriteAttrs(sb *strings.Builder, attrs output.Attrs) {
	for _, attr := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		if attr.Bare {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(output.Escape(attr.Value))
		sb.WriteByte('"')
	}
}
