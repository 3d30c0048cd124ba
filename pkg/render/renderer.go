package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"
	g "maragu.dev/gomponents"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/backends/gomp"
	"github.com/goliatone/go-stache/pkg/backends/livenode"
	"github.com/goliatone/go-stache/pkg/backends/vtree"
	"github.com/goliatone/go-stache/pkg/output"
)

// Renderer turns a compiled template and its data into bytes.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, tmpl *ast.Template, data any, options RenderOptions) ([]byte, error)
}

// HTML renders tmpl to a string through the HTML string backend. Widgets
// are mounted to produce their markup and destroyed once it is written.
func (w *Walker) HTML(tmpl *ast.Template, data any, options RenderOptions) (out string, err error) {
	b := w.html.Get()
	defer w.html.Put(b)
	defer func() {
		err = errors.Join(err, destroyWidgets(b.Widgets()))
	}()
	b.SetReporter(w.reporter)
	if err := w.RenderTemplate(b, tmpl, options.Frame(data), options.Partials, options.Owner); err != nil {
		return "", err
	}
	return b.Output()
}

// Tree renders tmpl to a virtual tree. Widgets are left uninitialised for
// Reconcile or Hydrate.
func (w *Walker) Tree(tmpl *ast.Template, data any, options RenderOptions) (vtree.Tree, error) {
	b := vtree.New(vtree.WithReporter(w.reporter))
	if err := w.RenderTemplate(b, tmpl, options.Frame(data), options.Partials, options.Owner); err != nil {
		return nil, err
	}
	return b.Output()
}

// Live renders tmpl to detached platform nodes. Widgets are initialised
// in place and returned so the caller can destroy them later.
func (w *Walker) Live(tmpl *ast.Template, data any, options RenderOptions) ([]*html.Node, []output.Widget, error) {
	b := livenode.New(livenode.WithReporter(w.reporter))
	if err := w.RenderTemplate(b, tmpl, options.Frame(data), options.Partials, options.Owner); err != nil {
		return nil, nil, err
	}
	nodes, err := b.Output()
	if err != nil {
		return nil, nil, err
	}
	return nodes, b.Widgets(), nil
}

// Nodes renders tmpl to gomponents nodes. Widget markup is captured as raw
// nodes, so the widgets are destroyed before Nodes returns.
func (w *Walker) Nodes(tmpl *ast.Template, data any, options RenderOptions) (nodes []g.Node, err error) {
	b := gomp.New(gomp.WithReporter(w.reporter))
	defer func() {
		err = errors.Join(err, destroyWidgets(b.Widgets()))
	}()
	if err := w.RenderTemplate(b, tmpl, options.Frame(data), options.Partials, options.Owner); err != nil {
		return nil, err
	}
	return b.Output()
}

// destroyWidgets tears down widgets mounted only to serialize them.
func destroyWidgets(mounted []output.Widget) error {
	var errs []error
	for _, widget := range mounted {
		if err := widget.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type htmlRenderer struct{ w *Walker }

// NewHTMLRenderer renders templates to an HTML document fragment.
func NewHTMLRenderer(w *Walker) Renderer { return htmlRenderer{w: w} }

func (htmlRenderer) Name() string        { return "html" }
func (htmlRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r htmlRenderer) Render(ctx context.Context, tmpl *ast.Template, data any, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.w.HTML(tmpl, data, options)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

type treeRenderer struct{ w *Walker }

// NewTreeRenderer renders templates to the JSON form of a virtual tree.
func NewTreeRenderer(w *Walker) Renderer { return treeRenderer{w: w} }

func (treeRenderer) Name() string        { return "vtree" }
func (treeRenderer) ContentType() string { return "application/json" }

func (r treeRenderer) Render(ctx context.Context, tmpl *ast.Template, data any, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := r.w.Tree(tmpl, data, options)
	if err != nil {
		return nil, err
	}
	return tree.MarshalIndent()
}

type liveRenderer struct{ w *Walker }

// NewLiveRenderer renders templates to platform nodes and serializes them.
func NewLiveRenderer(w *Walker) Renderer { return liveRenderer{w: w} }

func (liveRenderer) Name() string        { return "live" }
func (liveRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r liveRenderer) Render(ctx context.Context, tmpl *ast.Template, data any, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nodes, mounted, err := r.w.Live(tmpl, data, options)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return nil, errors.Join(fmt.Errorf("render: serialize live nodes: %w", err), destroyWidgets(mounted))
		}
	}
	if err := destroyWidgets(mounted); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type gomponentsRenderer struct{ w *Walker }

// NewGomponentsRenderer renders templates through gomponents nodes.
func NewGomponentsRenderer(w *Walker) Renderer { return gomponentsRenderer{w: w} }

func (gomponentsRenderer) Name() string        { return "gomponents" }
func (gomponentsRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r gomponentsRenderer) Render(ctx context.Context, tmpl *ast.Template, data any, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nodes, err := r.w.Nodes(tmpl, data, options)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gomp.Render(&buf, nodes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
