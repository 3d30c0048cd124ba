package widgets

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/goliatone/go-stache/pkg/backends/vtree"
	"github.com/goliatone/go-stache/pkg/output"
)

// Reconcile dispatches widget lifecycle hooks for a tree transition.
// Positions are compared by index, never by key: a widget marker present
// at the same position in both trees is updated, one only in prev is
// destroyed and one only in next is initialised. Subtrees whose element
// tag changed are treated as replaced. Lifecycle errors stop reconciliation
// and are returned unchanged.
func Reconcile(prev, next vtree.Tree) error {
	return reconcileLists(prev, next)
}

func reconcileLists(prev, next []*vtree.Node) error {
	n := max(len(prev), len(next))
	for idx := 0; idx < n; idx++ {
		var p, q *vtree.Node
		if idx < len(prev) {
			p = prev[idx]
		}
		if idx < len(next) {
			q = next[idx]
		}
		if err := reconcileNode(p, q); err != nil {
			return err
		}
	}
	return nil
}

func reconcileNode(p, q *vtree.Node) error {
	switch {
	case p == nil && q == nil:
		return nil
	case q == nil:
		return destroyAll(p)
	case p == nil:
		return initAll(q)
	case q.Kind == vtree.KindWidget && p.Kind == vtree.KindWidget:
		if q.Widget == nil {
			return destroyAll(p)
		}
		return q.Widget.Update(p.Widget, nodeOf(p.Widget))
	case p.Kind == vtree.KindElement && q.Kind == vtree.KindElement && p.Tag == q.Tag:
		return reconcileLists(p.Children, q.Children)
	default:
		if err := destroyAll(p); err != nil {
			return err
		}
		return initAll(q)
	}
}

func nodeOf(w output.Widget) *html.Node {
	if inst, ok := w.(*Instance); ok && inst != nil {
		if inst.placeholder != nil {
			return inst.placeholder
		}
		return inst.node
	}
	return nil
}

func destroyAll(n *vtree.Node) error {
	var err error
	vtree.Tree{n}.Walk(func(node *vtree.Node, _ int) {
		if err != nil || node.Kind != vtree.KindWidget || node.Widget == nil {
			return
		}
		err = node.Widget.Destroy()
	})
	return err
}

func initAll(n *vtree.Node) error {
	var err error
	vtree.Tree{n}.Walk(func(node *vtree.Node, _ int) {
		if err != nil || node.Kind != vtree.KindWidget || node.Widget == nil {
			return
		}
		_, err = node.Widget.Init()
	})
	return err
}

// Attacher is implemented by widgets that can adopt existing nodes.
type Attacher interface {
	Attach(node *html.Node) error
}

// Hydrate walks tree alongside server-rendered nodes and attaches every
// widget to the node at its position. Whitespace-only text nodes in nodes
// are skipped where the tree has none.
func Hydrate(tree vtree.Tree, nodes []*html.Node) error {
	return hydrateLists(tree, nodes)
}

func hydrateLists(tree []*vtree.Node, nodes []*html.Node) error {
	nodes = significant(nodes, tree)
	for idx, vn := range tree {
		if idx >= len(nodes) {
			return fmt.Errorf("widgets: hydrate: missing node for %s at index %d", vn.Kind, idx)
		}
		hn := nodes[idx]
		switch vn.Kind {
		case vtree.KindWidget:
			attacher, ok := vn.Widget.(Attacher)
			if !ok {
				continue
			}
			if err := attacher.Attach(hn); err != nil {
				return err
			}
		case vtree.KindElement:
			if hn.Type != html.ElementNode || hn.Data != vn.Tag {
				return fmt.Errorf("widgets: hydrate: expected <%s> at index %d, found %q", vn.Tag, idx, hn.Data)
			}
			var children []*html.Node
			for c := hn.FirstChild; c != nil; c = c.NextSibling {
				children = append(children, c)
			}
			if err := hydrateLists(vn.Children, children); err != nil {
				return err
			}
		}
	}
	return nil
}

// significant drops whitespace-only text nodes when the tree kept fewer
// children than the parsed markup holds.
func significant(nodes []*html.Node, tree []*vtree.Node) []*html.Node {
	if len(nodes) <= len(tree) {
		return nodes
	}
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.TextNode && isBlank(n.Data) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}
