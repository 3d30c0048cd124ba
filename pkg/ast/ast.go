// Package ast defines the compiled template representation: a closed set of
// node kinds produced by the compiler and read, never mutated, by the
// renderer. Rewrites (such as widget embedding) build new trees.
package ast

import "strings"

// Kind discriminates the node union.
type Kind int

const (
	KindElement Kind = iota + 1
	KindText
	KindInterpolator
	KindTriple
	KindSection
	KindPartial
	KindComment
	KindWidget
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindInterpolator:
		return "interpolator"
	case KindTriple:
		return "triple"
	case KindSection:
		return "section"
	case KindPartial:
		return "partial"
	case KindComment:
		return "comment"
	case KindWidget:
		return "widget"
	default:
		return "unknown"
	}
}

// Node is implemented only by the types in this package.
type Node interface {
	Kind() Kind
	node()
}

// Attr is a static attribute. Bare marks attributes written without a value
// (<input disabled>).
type Attr struct {
	Name  string
	Value string
	Bare  bool
}

// Element is a markup element. Dynamic holds the attribute fragments that
// contained logic tags; they are flattened to attribute text at render time
// and parsed again before being merged over Attrs.
type Element struct {
	Tag      string
	Attrs    []Attr
	Dynamic  []Node
	Children []Node
}

func (*Element) Kind() Kind { return KindElement }
func (*Element) node()      {}

// Attr returns the value of a static attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attrs {
		if strings.EqualFold(attr.Name, name) {
			return attr.Value, true
		}
	}
	return "", false
}

// Classes returns the static class list.
func (e *Element) Classes() []string {
	value, ok := e.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(value)
}

// Text is literal character data, already entity-decoded. Raw text comes
// from attribute fragments, comment bodies and raw-text elements and is
// emitted verbatim.
type Text struct {
	Literal string
	Raw     bool
}

func (*Text) Kind() Kind { return KindText }
func (*Text) node()      {}

// Interpolator prints a resolved value. The compiler always sets Escape;
// hosts building trees by hand may clear it to emit raw text.
type Interpolator struct {
	Path   KeyPath
	Escape bool
}

func (*Interpolator) Kind() Kind { return KindInterpolator }
func (*Interpolator) node()      {}

// Triple prints a resolved value as markup ({{{x}}} and {{&x}}).
type Triple struct {
	Path KeyPath
}

func (*Triple) Kind() Kind { return KindTriple }
func (*Triple) node()      {}

// Section is {{#x}}…{{/x}} or, with Negate, {{^x}}…{{/x}}. Source keeps the
// raw body text for lambdas.
type Section struct {
	Path     KeyPath
	Negate   bool
	Children []Node
	Source   string
}

func (*Section) Kind() Kind { return KindSection }
func (*Section) node()      {}

// Partial is {{>name}}.
type Partial struct {
	Name string
}

func (*Partial) Kind() Kind { return KindPartial }
func (*Partial) node()      {}

// Comment is an HTML comment whose body may itself contain logic tags.
type Comment struct {
	Children []Node
}

func (*Comment) Kind() Kind { return KindComment }
func (*Comment) node()      {}

// Widget marks a position where an embedded component is mounted. It only
// appears in trees rewritten for an owner; Element is the markup it replaced.
type Widget struct {
	Slot     string
	Bindings []Binding
	Element  *Element
}

func (*Widget) Kind() Kind { return KindWidget }
func (*Widget) node()      {}

// Binding pulls one field into a widget's props, optionally renamed.
type Binding struct {
	Source KeyPath
	Alias  string
}

func (b Binding) String() string {
	if b.Alias == "" || b.Alias == b.Source.Raw {
		return b.Source.Raw
	}
	return b.Source.Raw + ":" + b.Alias
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the node's descendants.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if n == nil || !fn(n) {
			continue
		}
		switch t := n.(type) {
		case *Element:
			Walk(t.Dynamic, fn)
			Walk(t.Children, fn)
		case *Section:
			Walk(t.Children, fn)
		case *Comment:
			Walk(t.Children, fn)
		case *Widget:
			if t.Element != nil {
				Walk([]Node{t.Element}, fn)
			}
		}
	}
}
