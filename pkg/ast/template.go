package ast

// Template is a compiled template. Partials lists every {{>name}} the
// template references, in first-seen order; bodies are looked up through a
// PartialSet when rendering so templates compiled separately (or a template
// referencing itself) link late.
type Template struct {
	Name     string
	Source   string
	Root     []Node
	Partials []string
}

// References returns the head keys read at the template's root scope:
// interpolations outside any pushing section plus the section keys
// themselves. Keys inside sections may resolve against pushed frames and
// are not included.
func (t *Template) References() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(path KeyPath) {
		if path.Ancestor != "" || path.Current || path.Index {
			return
		}
		head := path.Head()
		if head == "" {
			return
		}
		if _, ok := seen[head]; ok {
			return
		}
		seen[head] = struct{}{}
		out = append(out, head)
	}
	Walk(t.Root, func(n Node) bool {
		switch node := n.(type) {
		case *Interpolator:
			add(node.Path)
		case *Triple:
			add(node.Path)
		case *Section:
			add(node.Path)
			return node.Negate
		case *Widget:
			for _, binding := range node.Bindings {
				add(binding.Source)
			}
		}
		return true
	})
	return out
}

// PartialSet resolves partial names to compiled templates.
type PartialSet interface {
	Lookup(name string) (*Template, bool)
}

// Partials is a map-backed PartialSet.
type Partials map[string]*Template

// Lookup implements PartialSet.
func (p Partials) Lookup(name string) (*Template, bool) {
	tmpl, ok := p[name]
	if !ok || tmpl == nil {
		return nil, false
	}
	return tmpl, true
}

// Chain consults each set in order.
type Chain []PartialSet

// Lookup implements PartialSet.
func (c Chain) Lookup(name string) (*Template, bool) {
	for _, set := range c {
		if set == nil {
			continue
		}
		if tmpl, ok := set.Lookup(name); ok {
			return tmpl, true
		}
	}
	return nil, false
}
