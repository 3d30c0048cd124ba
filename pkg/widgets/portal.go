package widgets

import (
	"strconv"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PortalAttr carries a portal node's id on both the real node and its
// placeholder.
const PortalAttr = "data-portal-id"

// PortalHost holds the real nodes of portal widgets outside the tree that
// renders them.
type PortalHost struct {
	mu    sync.Mutex
	root  *html.Node
	nodes map[string]*html.Node
	seq   int
}

// NewPortalHost returns a host that appends portal nodes to root. A nil
// root creates a detached <div>.
func NewPortalHost(root *html.Node) *PortalHost {
	if root == nil {
		root = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	return &PortalHost{root: root, nodes: make(map[string]*html.Node)}
}

// Root returns the container portal nodes live in.
func (h *PortalHost) Root() *html.Node {
	return h.root
}

// Mount moves node into the host and returns its id and an in-place
// placeholder.
func (h *PortalHost) Mount(node *html.Node) (string, *html.Node) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	id := "portal-" + strconv.Itoa(h.seq)
	if node != nil {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
		if node.Type == html.ElementNode {
			setAttr(node, PortalAttr, id)
		}
		h.root.AppendChild(node)
		h.nodes[id] = node
	}
	placeholder := &html.Node{
		Type:     html.ElementNode,
		Data:     "template",
		DataAtom: atom.Template,
		Attr:     []html.Attribute{{Key: PortalAttr, Val: id}},
	}
	return id, placeholder
}

// Resolve returns the real node for id.
func (h *PortalHost) Resolve(id string) (*html.Node, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	node, ok := h.nodes[id]
	return node, ok
}

// Remove detaches the node for id.
func (h *PortalHost) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	node, ok := h.nodes[id]
	if !ok {
		return
	}
	delete(h.nodes, id)
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

// Len returns the number of mounted portal nodes.
func (h *PortalHost) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nodes)
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
