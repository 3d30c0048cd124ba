// Package render interprets compiled templates against a context chain.
// One walker drives every output backend; backend differences live
// entirely behind output.Builder.
package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/backends/htmlstring"
	"github.com/goliatone/go-stache/pkg/compiler"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/output"
	"github.com/goliatone/go-stache/pkg/scope"
	"github.com/goliatone/go-stache/pkg/widgets"
)

// ErrPartialDepth is returned when partial inclusion nests deeper than the
// configured limit.
var ErrPartialDepth = errors.New("render: partial depth exceeded")

// Walker renders AST nodes. It holds no per-render state and is safe for
// concurrent use.
type Walker struct {
	reporter    *diag.Reporter
	maxDepth    int
	sanitizer   Sanitizer
	values      scope.ValueOptions
	missingKeys bool
	attrs       *output.Pool[*htmlstring.Builder]
	html        *output.Pool[*htmlstring.Builder]
}

// New returns a walker.
func New(options ...Option) *Walker {
	w := &Walker{maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	w.attrs = output.NewPool(func() *htmlstring.Builder {
		return htmlstring.NewAttr()
	})
	w.html = output.NewPool(func() *htmlstring.Builder {
		return htmlstring.New()
	})
	return w
}

// Reporter returns the walker's reporter.
func (w *Walker) Reporter() *diag.Reporter {
	return w.reporter
}

// walk is the state threaded through one render call.
type walk struct {
	b        output.Builder
	partials ast.PartialSet
	owner    widgets.Owner
	name     string
	depth    int
}

// Render emits n into b.
func (w *Walker) Render(b output.Builder, n ast.Node, f *scope.Frame, partials ast.PartialSet, owner widgets.Owner) error {
	return w.node(walk{b: b, partials: partials, owner: owner}, n, f)
}

// RenderTemplate emits every root node of tmpl into b. With an owner the
// template is rendered in its attached form.
func (w *Walker) RenderTemplate(b output.Builder, tmpl *ast.Template, f *scope.Frame, partials ast.PartialSet, owner widgets.Owner) error {
	if tmpl == nil {
		return fmt.Errorf("render: template is nil")
	}
	if owner != nil {
		tmpl = owner.Attach(tmpl)
	}
	return w.nodes(walk{b: b, partials: partials, owner: owner, name: tmpl.Name}, tmpl.Root, f)
}

func (w *Walker) nodes(st walk, nodes []ast.Node, f *scope.Frame) error {
	for _, n := range nodes {
		if err := w.node(st, n, f); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) node(st walk, n ast.Node, f *scope.Frame) error {
	switch node := n.(type) {
	case *ast.Text:
		kind := output.ObjectText
		if node.Raw {
			kind = output.ObjectMarkup
		}
		return st.b.CreateObject(node.Literal, output.ObjectOptions{Kind: kind})
	case *ast.Interpolator:
		return w.value(st, node.Path, f, node.Escape)
	case *ast.Triple:
		return w.value(st, node.Path, f, false)
	case *ast.Partial:
		return w.partial(st, node, f)
	case *ast.Section:
		return w.section(st, node, f)
	case *ast.Element:
		return w.element(st, node, f)
	case *ast.Comment:
		text, err := w.flattenMarkup(st, node.Children, f)
		if err != nil {
			return err
		}
		return st.b.CreateComment(text)
	case *ast.Widget:
		return w.widget(st, node, f)
	case nil:
		return nil
	}
	return fmt.Errorf("render: unsupported node %T", n)
}

func (w *Walker) value(st walk, path ast.KeyPath, f *scope.Frame, escape bool) error {
	v, ok := f.Resolve(path)
	if !ok || v == nil {
		if w.missingKeys {
			return w.report(st, diag.CodeMissingKey, "key %q resolved to nothing", path.Raw)
		}
		return nil
	}
	if fragment, ok := v.(output.Fragment); ok {
		return st.b.CreateObject(fragment, output.ObjectOptions{Kind: output.ObjectFragment})
	}
	text := scope.Stringify(v)
	if text == "" {
		return nil
	}
	if escape {
		return st.b.CreateObject(text, output.ObjectOptions{Kind: output.ObjectText})
	}
	return st.b.CreateObject(w.sanitize(text), output.ObjectOptions{Kind: output.ObjectMarkup})
}

func (w *Walker) sanitize(markup string) string {
	if w.sanitizer == nil {
		return markup
	}
	return w.sanitizer.Sanitize(markup)
}

func (w *Walker) partial(st walk, node *ast.Partial, f *scope.Frame) error {
	var (
		tmpl *ast.Template
		ok   bool
	)
	if st.partials != nil {
		tmpl, ok = st.partials.Lookup(node.Name)
	}
	if !ok {
		return w.report(st, diag.CodeMissingPartial, "partial %q not found", node.Name)
	}
	if st.depth >= w.maxDepth {
		return fmt.Errorf("%w: %q nested %d levels deep", ErrPartialDepth, node.Name, st.depth)
	}
	if st.owner != nil {
		tmpl = st.owner.Attach(tmpl)
	}
	st.depth++
	st.name = tmpl.Name
	return w.nodes(st, tmpl.Root, f)
}

func (w *Walker) section(st walk, node *ast.Section, f *scope.Frame) error {
	v, ok := f.Resolve(node.Path)
	if ok && !node.Negate {
		if lambda, isLambda := AsLambda(v); isLambda {
			return w.lambda(st, node, f, lambda)
		}
	}

	value := scope.ParseValue(v, w.values)
	if node.Negate {
		if value.Truthy {
			return nil
		}
		return w.nodes(st, node.Children, f)
	}
	if !value.Truthy {
		return nil
	}

	switch {
	case value.Array:
		for idx, item := range value.Items {
			if err := w.nodes(st, node.Children, f.PushIterator(item, node.Path.Raw, idx)); err != nil {
				return err
			}
		}
		return nil
	case isBool(v):
		return w.nodes(st, node.Children, f)
	default:
		return w.nodes(st, node.Children, f.Push(v, node.Path.Raw))
	}
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (w *Walker) element(st walk, node *ast.Element, f *scope.Frame) error {
	attrs := output.FromAST(node.Attrs)
	if len(node.Dynamic) > 0 {
		text, err := w.flatten(st, node.Dynamic, f)
		if err != nil {
			return err
		}
		attrs = attrs.Merge(output.FromAST(compiler.ParseAttributes(text)))
	}
	h, err := st.b.OpenElement(node.Tag, attrs)
	if err != nil {
		return err
	}
	if err := w.nodes(st, node.Children, f); err != nil {
		return err
	}
	return st.b.CloseElement(h)
}

// flatten renders nodes through the attribute backend and returns the
// text.
func (w *Walker) flatten(st walk, nodes []ast.Node, f *scope.Frame) (string, error) {
	ab := w.attrs.Get()
	defer w.attrs.Put(ab)
	ab.SetReporter(w.reporter)

	st.b = ab
	if err := w.nodes(st, nodes, f); err != nil {
		return "", err
	}
	return ab.Output()
}

// flattenMarkup renders nodes to serialized markup. Comment bodies use
// it since partials included there may hold elements.
func (w *Walker) flattenMarkup(st walk, nodes []ast.Node, f *scope.Frame) (out string, err error) {
	hb := w.html.Get()
	defer w.html.Put(hb)
	defer func() {
		err = errors.Join(err, destroyWidgets(hb.Widgets()))
	}()
	hb.SetReporter(w.reporter)

	st.b = hb
	if err := w.nodes(st, nodes, f); err != nil {
		return "", err
	}
	return hb.Output()
}

func (w *Walker) widget(st walk, node *ast.Widget, f *scope.Frame) error {
	var (
		ctor *widgets.Constructor
		ok   bool
	)
	if st.owner != nil {
		ctor, ok = st.owner.Constructor(node.Slot)
	}
	if !ok {
		if err := w.report(st, diag.CodeUnknownWidget, "no widget constructor for slot %q", node.Slot); err != nil {
			return err
		}
		if node.Element == nil {
			return nil
		}
		return w.element(st, node.Element, f)
	}
	props := widgets.Capture(f, node.Bindings)
	inst := widgets.NewInstance(ctor, st.owner, props)
	return st.b.CreateObject(inst, output.ObjectOptions{Kind: output.ObjectWidget})
}

func (w *Walker) report(st walk, code diag.Code, format string, args ...any) error {
	return w.reporter.Report(diag.Diagnostic{
		Severity: diag.SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Template: st.name,
	})
}
