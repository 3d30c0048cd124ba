package render

import (
	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/backends/htmlstring"
	"github.com/goliatone/go-stache/pkg/compiler"
	"github.com/goliatone/go-stache/pkg/output"
	"github.com/goliatone/go-stache/pkg/scope"
)

// Lambda is a section value that takes over rendering. It receives the
// section's raw source and a helper rendering any template text against
// the current scope. A string result is spliced as markup, a Fragment is
// spliced as is and any other value is printed as text.
type Lambda func(source string, render func(string) (string, error)) (any, error)

// AsLambda recognises the function shapes accepted as lambdas.
func AsLambda(v any) (Lambda, bool) {
	switch fn := v.(type) {
	case Lambda:
		return fn, fn != nil
	case func(string, func(string) (string, error)) (any, error):
		return fn, fn != nil
	case func(string) string:
		if fn == nil {
			return nil, false
		}
		return func(source string, _ func(string) (string, error)) (any, error) {
			return fn(source), nil
		}, true
	}
	return nil, false
}

func (w *Walker) lambda(st walk, node *ast.Section, f *scope.Frame, fn Lambda) error {
	helper := func(src string) (string, error) {
		tmpl, err := compiler.Compile(st.name+"#"+node.Path.Raw, src, compiler.WithReporter(w.reporter))
		if err != nil {
			return "", err
		}
		hb := htmlstring.New(htmlstring.WithReporter(w.reporter))
		sub := st
		sub.b = hb
		if err := w.nodes(sub, tmpl.Root, f); err != nil {
			return "", err
		}
		return hb.Output()
	}

	result, err := fn(node.Source, helper)
	if err != nil {
		return err
	}
	switch v := result.(type) {
	case nil:
		return nil
	case output.Fragment:
		return st.b.CreateObject(v, output.ObjectOptions{Kind: output.ObjectFragment})
	case string:
		if v == "" {
			return nil
		}
		return st.b.CreateObject(w.sanitize(v), output.ObjectOptions{Kind: output.ObjectMarkup})
	default:
		return st.b.CreateObject(scope.Stringify(v), output.ObjectOptions{Kind: output.ObjectText})
	}
}
