package compiler

import (
	"html"
	"strings"

	"github.com/goliatone/go-stache/pkg/ast"
)

// parseAttributes splits a start tag's attribute region into items. Items
// free of logic become static attributes; the rest are compiled as one
// attribute fragment stored on el.Dynamic.
func (p *parser) parseAttributes(el *ast.Element, region string, offset int) error {
	items := splitAttrItems(region)
	var dynamic []span
	for _, item := range items {
		text := region[item.start:item.end]
		if strings.Contains(text, "{{") {
			dynamic = append(dynamic, item)
			continue
		}
		if attr, ok := parseAttr(text); ok {
			el.Attrs = setAttr(el.Attrs, attr)
		}
	}
	for i, item := range dynamic {
		children, err := p.sub(offset+item.start, offset+item.end, modeText).run()
		if err != nil {
			return err
		}
		if i > 0 {
			children = append([]ast.Node{&ast.Text{Literal: " ", Raw: true}}, children...)
		}
		for _, child := range children {
			el.Dynamic = appendMerged(el.Dynamic, child)
		}
	}
	return nil
}

// ParseAttributes parses rendered attribute text such as
// `class="a b" disabled` into attributes. Later duplicates win.
func ParseAttributes(text string) []ast.Attr {
	var attrs []ast.Attr
	for _, item := range splitAttrItems(text) {
		if attr, ok := parseAttr(text[item.start:item.end]); ok {
			attrs = setAttr(attrs, attr)
		}
	}
	return attrs
}

func appendMerged(nodes []ast.Node, n ast.Node) []ast.Node {
	text, ok := n.(*ast.Text)
	if ok && len(nodes) > 0 {
		if prev, isText := nodes[len(nodes)-1].(*ast.Text); isText && prev.Raw == text.Raw {
			prev.Literal += text.Literal
			return nodes
		}
	}
	return append(nodes, n)
}

type span struct {
	start, end int
}

// splitAttrItems splits at top-level whitespace. Whitespace inside quotes,
// logic tags or an open section does not split.
func splitAttrItems(region string) []span {
	var items []span
	depth := 0
	i := 0
	for i < len(region) {
		for i < len(region) && depth == 0 && isSpace(region[i]) {
			i++
		}
		if i >= len(region) {
			break
		}
		start := i
		for i < len(region) {
			if strings.HasPrefix(region[i:], "{{") {
				n := skipLogic(region[i:])
				if n < 0 {
					i = len(region)
					break
				}
				switch sigil(region[i+2 : i+n-2]) {
				case '#', '^':
					depth++
				case '/':
					if depth > 0 {
						depth--
					}
				}
				i += n
				continue
			}
			c := region[i]
			if c == '"' || c == '\'' {
				if q := strings.IndexByte(region[i+1:], c); q >= 0 {
					i += q + 2
					continue
				}
				i = len(region)
				break
			}
			if depth == 0 && isSpace(c) {
				break
			}
			i++
		}
		items = append(items, span{start: start, end: i})
	}
	return items
}

func sigil(inner string) byte {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return 0
	}
	return inner[0]
}

func parseAttr(item string) (ast.Attr, bool) {
	item = strings.TrimSpace(item)
	if item == "" {
		return ast.Attr{}, false
	}
	eq := strings.IndexByte(item, '=')
	if eq < 0 {
		return ast.Attr{Name: strings.ToLower(item), Bare: true}, true
	}
	name := strings.ToLower(strings.TrimSpace(item[:eq]))
	if name == "" {
		return ast.Attr{}, false
	}
	value := strings.TrimSpace(item[eq+1:])
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value = value[1 : n-1]
	}
	return ast.Attr{Name: name, Value: html.UnescapeString(value)}, true
}

func setAttr(attrs []ast.Attr, attr ast.Attr) []ast.Attr {
	for i := range attrs {
		if attrs[i].Name == attr.Name {
			attrs[i] = attr
			return attrs
		}
	}
	return append(attrs, attr)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
