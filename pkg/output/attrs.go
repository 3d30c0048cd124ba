package output

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-stache/pkg/ast"
)

// Attr is one resolved attribute.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Bare  bool   `json:"bare,omitempty"`
}

// Attrs keeps attributes in first-seen order.
type Attrs []Attr

// FromAST copies static attributes.
func FromAST(attrs []ast.Attr) Attrs {
	if len(attrs) == 0 {
		return nil
	}
	out := make(Attrs, len(attrs))
	for i, attr := range attrs {
		out[i] = Attr(attr)
	}
	return out
}

// Get returns the value of name.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if strings.EqualFold(attr.Name, name) {
			return attr.Value, true
		}
	}
	return "", false
}

// Set replaces name in place or appends it.
func (a Attrs) Set(attr Attr) Attrs {
	for i := range a {
		if strings.EqualFold(a[i].Name, attr.Name) {
			a[i] = attr
			return a
		}
	}
	return append(a, attr)
}

// Merge applies overrides over a copy of a.
func (a Attrs) Merge(overrides Attrs) Attrs {
	out := append(Attrs(nil), a...)
	for _, attr := range overrides {
		out = out.Set(attr)
	}
	return out
}

// TextOf converts an object value to text.
func TextOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Map returns the attributes keyed by name.
func (a Attrs) Map() map[string]string {
	if len(a) == 0 {
		return nil
	}
	out := make(map[string]string, len(a))
	for _, attr := range a {
		out[attr.Name] = attr.Value
	}
	return out
}
