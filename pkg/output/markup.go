package output

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-stache/internal/htmlrules"
)

// ParseMarkup parses markup as the children of an element named
// contextTag ("" parses as body content).
func ParseMarkup(markup, contextTag string) ([]*html.Node, error) {
	if contextTag == "" {
		contextTag = "body"
	}
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     contextTag,
		DataAtom: atom.Lookup([]byte(contextTag)),
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("output: parse markup: %w", err)
	}
	return nodes, nil
}

// ReplayMarkup parses markup and re-emits it into b.
func ReplayMarkup(b Builder, markup, contextTag string) error {
	nodes, err := ParseMarkup(markup, contextTag)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := ReplayNode(b, n); err != nil {
			return err
		}
	}
	return nil
}

// ReplayNode re-emits an x/net/html subtree into b.
func ReplayNode(b Builder, n *html.Node) error {
	switch n.Type {
	case html.TextNode:
		if n.Parent != nil && htmlrules.IsRawText(n.Parent.Data) {
			return b.CreateObject(n.Data, ObjectOptions{Kind: ObjectMarkup})
		}
		return b.CreateObject(n.Data, ObjectOptions{Kind: ObjectText})
	case html.CommentNode:
		return b.CreateComment(n.Data)
	case html.ElementNode:
		var attrs Attrs
		for _, attr := range n.Attr {
			name := attr.Key
			if attr.Namespace != "" {
				name = attr.Namespace + ":" + attr.Key
			}
			attrs = attrs.Set(Attr{Name: name, Value: attr.Val})
		}
		h, err := b.OpenElement(n.Data, attrs)
		if err != nil {
			return err
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := ReplayNode(b, c); err != nil {
				return err
			}
		}
		return b.CloseElement(h)
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := ReplayNode(b, c); err != nil {
				return err
			}
		}
	}
	return nil
}
