package widgets

import (
	"errors"
	"testing"

	"golang.org/x/net/html"

	"github.com/goliatone/go-stache/pkg/backends/vtree"
	"github.com/goliatone/go-stache/pkg/scope"
)

type countingView struct {
	mounts, updates, unmounts, hydrates int
	props                               Props
	node                                *html.Node
	failUpdate                          error
}

func (v *countingView) Mount(props Props) (*html.Node, error) {
	v.mounts++
	v.props = props
	v.node = &html.Node{Type: html.ElementNode, Data: "canvas"}
	return v.node, nil
}

func (v *countingView) Update(props Props) error {
	v.updates++
	v.props = props
	return v.failUpdate
}

func (v *countingView) Unmount() error {
	v.unmounts++
	return nil
}

type hydratingView struct{ countingView }

func (v *hydratingView) Hydrate(node *html.Node, props Props) error {
	v.hydrates++
	v.node = node
	v.props = props
	return nil
}

type recordingFactory struct {
	views []*countingView
}

func (f *recordingFactory) constructor(name string) *Constructor {
	return &Constructor{Name: name, New: func(Owner) View {
		v := &countingView{}
		f.views = append(f.views, v)
		return v
	}}
}

func (f *recordingFactory) totals() (mounts, updates, unmounts int) {
	for _, v := range f.views {
		mounts += v.mounts
		updates += v.updates
		unmounts += v.unmounts
	}
	return
}

func widgetTree(w *Instance) vtree.Tree {
	if w == nil {
		return vtree.Tree{vtree.Element("div", nil)}
	}
	return vtree.Tree{vtree.Element("div", nil, vtree.WidgetNode(w))}
}

func TestReconcileSameConstructorUpdatesOnce(t *testing.T) {
	f := &recordingFactory{}
	chart := f.constructor("chart")

	first := NewInstance(chart, nil, Props{"n": 1})
	if err := Reconcile(nil, widgetTree(first)); err != nil {
		t.Fatalf("initial reconcile: %v", err)
	}
	mounts, updates, unmounts := f.totals()
	if mounts != 1 || updates != 0 || unmounts != 0 {
		t.Fatalf("after first pass mounts=%d updates=%d unmounts=%d", mounts, updates, unmounts)
	}

	second := NewInstance(chart, nil, Props{"n": 2})
	if err := Reconcile(widgetTree(first), widgetTree(second)); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	mounts, updates, unmounts = f.totals()
	if mounts != 1 || updates != 1 || unmounts != 0 {
		t.Fatalf("after second pass mounts=%d updates=%d unmounts=%d", mounts, updates, unmounts)
	}
	if second.State() != StateUpdated || first.State() != StateDestroyed {
		t.Fatalf("states: first=%s second=%s", first.State(), second.State())
	}
	if second.View() != f.views[0] || f.views[0].props["n"] != 2 {
		t.Fatalf("view should be handed over with new props")
	}
}

func TestReconcileOmittedWidgetDestroysOnce(t *testing.T) {
	f := &recordingFactory{}
	chart := f.constructor("chart")
	first := NewInstance(chart, nil, nil)
	if err := Reconcile(nil, widgetTree(first)); err != nil {
		t.Fatalf("initial reconcile: %v", err)
	}
	if err := Reconcile(widgetTree(first), widgetTree(nil)); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	_, updates, unmounts := f.totals()
	if updates != 0 || unmounts != 1 {
		t.Fatalf("updates=%d unmounts=%d", updates, unmounts)
	}
	if first.State() != StateDestroyed {
		t.Fatalf("state = %s", first.State())
	}
}

func TestUpdateWithDifferentConstructorReplaces(t *testing.T) {
	f := &recordingFactory{}
	chart := f.constructor("chart")
	table := f.constructor("table")

	parent := &html.Node{Type: html.ElementNode, Data: "div"}
	first := NewInstance(chart, nil, nil)
	node, err := first.Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	parent.AppendChild(node)

	second := NewInstance(table, nil, nil)
	if err := second.Update(first, node); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if f.views[0].unmounts != 1 || f.views[0].updates != 0 {
		t.Fatalf("previous view should be destroyed, got %+v", f.views[0])
	}
	if len(f.views) != 2 || f.views[1].mounts != 1 {
		t.Fatalf("new view should be mounted")
	}
	if parent.FirstChild != second.Node() || parent.FirstChild == node || parent.FirstChild.NextSibling != nil {
		t.Fatalf("node should be replaced in place")
	}
}

func TestInstanceLifecycleErrors(t *testing.T) {
	f := &recordingFactory{}
	inst := NewInstance(f.constructor("chart"), nil, nil)
	if _, err := inst.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := inst.Init(); !errors.Is(err, ErrInitialized) {
		t.Fatalf("expected ErrInitialized, got %v", err)
	}
	if err := inst.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := inst.Destroy(); err != nil {
		t.Fatalf("second Destroy should be a no-op: %v", err)
	}
	if _, err := inst.Init(); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
	if f.views[0].unmounts != 1 {
		t.Fatalf("unmounts = %d", f.views[0].unmounts)
	}
}

func TestUpdateErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	view := &countingView{failUpdate: boom}
	chart := &Constructor{Name: "chart", New: func(Owner) View { return view }}
	first := NewInstance(chart, nil, nil)
	if _, err := first.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	second := NewInstance(chart, nil, nil)
	if err := Reconcile(widgetTree(first), widgetTree(second)); !errors.Is(err, boom) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}
}

func TestPortalWidget(t *testing.T) {
	host := NewPortalHost(nil)
	f := &recordingFactory{}
	modal := f.constructor("modal")
	modal.Portal = host

	first := NewInstance(modal, nil, nil)
	placeholder, err := first.Init()
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if placeholder == first.Node() || placeholder.Data != "template" {
		t.Fatalf("expected a placeholder, got %+v", placeholder)
	}
	if first.Node().Parent != host.Root() || first.PortalID() == "" {
		t.Fatalf("real node should live in the portal host")
	}

	// The placeholder moves; the real node is found through its id.
	moved := &html.Node{Type: html.ElementNode, Data: "template"}
	second := NewInstance(modal, nil, nil)
	if err := second.Update(first, moved); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if second.Node() != f.views[0].node {
		t.Fatalf("update should resolve the real node by id")
	}
	if second.Placeholder() != moved || second.PortalID() != first.PortalID() {
		t.Fatalf("placeholder and id should carry over")
	}

	if err := second.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if host.Len() != 0 {
		t.Fatalf("destroy should remove the portal node")
	}
}

func TestCaptureStopsAtIterationFrame(t *testing.T) {
	root := scope.NewRoot(map[string]any{"title": "Blog", "theme": "dark"}, nil)
	item := root.PushIterator(map[string]any{"title": "Post 1", "tags": []any{"a"}}, "posts", 0)
	inner := item.Push(map[string]any{"title": "shadow"}, "meta")

	props := Capture(inner, MustBindings("title", "theme", "tags:labels", "missing"))
	want := Props{"title": "Post 1", "theme": "dark", "labels": []any{"a"}}
	if len(props) != len(want) || props["title"] != want["title"] || props["theme"] != want["theme"] {
		t.Fatalf("Capture = %#v", props)
	}
	if _, ok := props["missing"]; ok {
		t.Fatalf("missing bindings should be left out")
	}
}

func TestHydrateAttachesWidgets(t *testing.T) {
	view := &hydratingView{}
	chart := &Constructor{Name: "chart", New: func(Owner) View { return view }}
	inst := NewInstance(chart, nil, Props{"n": 1})
	tree := vtree.Tree{vtree.Element("section", nil, vtree.Text("x"), vtree.WidgetNode(inst))}

	section := &html.Node{Type: html.ElementNode, Data: "section"}
	section.AppendChild(&html.Node{Type: html.TextNode, Data: "x"})
	canvas := &html.Node{Type: html.ElementNode, Data: "canvas"}
	section.AppendChild(canvas)

	if err := Hydrate(tree, []*html.Node{section}); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if view.hydrates != 1 || view.mounts != 0 || view.node != canvas || inst.State() != StateAttached {
		t.Fatalf("expected hydration of existing node, view=%+v state=%s", view, inst.State())
	}
}
