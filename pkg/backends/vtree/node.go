// Package vtree builds immutable virtual trees for diffing. Trees are
// plain data: they compare with cmp, encode to JSON and replay into any
// other builder.
package vtree

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-stache/internal/htmlrules"
	"github.com/goliatone/go-stache/pkg/output"
)

// Kind discriminates tree nodes.
type Kind int

const (
	KindElement Kind = iota + 1
	KindText
	KindComment
	KindWidget
)

var kindNames = map[Kind]string{
	KindElement: "element",
	KindText:    "text",
	KindComment: "comment",
	KindWidget:  "widget",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("vtree: unknown node kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("vtree: unknown node kind %q", text)
}

// Node is one virtual tree node. Widget is only set on KindWidget nodes and
// is not encoded.
type Node struct {
	Kind       Kind          `json:"kind"`
	Tag        string        `json:"tag,omitempty"`
	Properties output.Attrs  `json:"properties,omitempty"`
	Children   []*Node       `json:"children,omitempty"`
	Text       string        `json:"text,omitempty"`
	Widget     output.Widget `json:"-"`
}

// Element returns an element node.
func Element(tag string, props output.Attrs, children ...*Node) *Node {
	if len(children) == 0 {
		children = nil
	}
	return &Node{Kind: KindElement, Tag: tag, Properties: props, Children: children}
}

// Text returns a text node.
func Text(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// Comment returns a comment node.
func Comment(text string) *Node {
	return &Node{Kind: KindComment, Text: text}
}

// WidgetNode returns a widget marker node.
func WidgetNode(w output.Widget) *Node {
	return &Node{Kind: KindWidget, Widget: w}
}

// Prop returns a property value.
func (n *Node) Prop(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.Properties.Get(name)
}

// Replay implements output.Fragment.
func (n *Node) Replay(b output.Builder) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindText:
		return b.CreateObject(n.Text, output.ObjectOptions{Kind: output.ObjectText})
	case KindComment:
		return b.CreateComment(n.Text)
	case KindWidget:
		return b.CreateObject(n.Widget, output.ObjectOptions{Kind: output.ObjectWidget})
	case KindElement:
		h, err := b.OpenElement(n.Tag, append(output.Attrs(nil), n.Properties...))
		if err != nil {
			return err
		}
		raw := htmlrules.IsRawText(n.Tag)
		for _, child := range n.Children {
			if raw && child.Kind == KindText {
				// script and style text is stored as serialized
				if err := b.CreateObject(child.Text, output.ObjectOptions{Kind: output.ObjectMarkup}); err != nil {
					return err
				}
				continue
			}
			if err := child.Replay(b); err != nil {
				return err
			}
		}
		return b.CloseElement(h)
	}
	return fmt.Errorf("vtree: cannot replay node kind %s", n.Kind)
}

// Tree is a rendered forest. It is the vtree backend's output and can be
// passed back into data to be spliced by a later render.
type Tree []*Node

// Replay implements output.Fragment.
func (t Tree) Replay(b output.Builder) error {
	for _, n := range t {
		if err := n.Replay(b); err != nil {
			return err
		}
	}
	return nil
}

// Walk visits every node depth-first in document order.
func (t Tree) Walk(fn func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t, 0)
}

// Widgets returns every widget in the tree in document order.
func (t Tree) Widgets() []output.Widget {
	var out []output.Widget
	t.Walk(func(n *Node, _ int) {
		if n.Kind == KindWidget && n.Widget != nil {
			out = append(out, n.Widget)
		}
	})
	return out
}

// MarshalIndent encodes the tree as indented JSON.
func (t Tree) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent([]*Node(t), "", "  ")
}
