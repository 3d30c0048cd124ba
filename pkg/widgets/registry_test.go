package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/compiler"
)

func ctor(name string) *Constructor {
	return &Constructor{Name: name, New: func(Owner) View { return &countingView{} }}
}

func TestRegistryResolvePriority(t *testing.T) {
	reg := NewRegistry()
	low := ctor("low")
	high := ctor("high")
	first := ctor("first")
	second := ctor("second")
	reg.MustRegisterSlot("chart", low, 10)
	reg.MustRegisterSlot("chart", high, 50)
	reg.MustRegisterSlot("tabs", first, 10)
	reg.MustRegisterSlot("tabs", second, 10)

	cases := []struct {
		name   string
		class  string
		expect *Constructor
	}{
		{name: "priority wins", class: "chart", expect: high},
		{name: "ties use registration order", class: "tabs", expect: first},
		{name: "class among others", class: "card tabs wide", expect: first},
		{name: "no match", class: "plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			el := &ast.Element{Tag: "div", Attrs: []ast.Attr{{Name: "class", Value: tc.class}}}
			got, ok := reg.Resolve(el)
			if ok != (tc.expect != nil) || got != tc.expect {
				t.Fatalf("Resolve(%q) = %v, %v", tc.class, got, ok)
			}
		})
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterSlot("a", ctor("x"), 0); err != nil {
		t.Fatalf("RegisterSlot: %v", err)
	}
	if err := reg.RegisterSlot("b", ctor("x"), 0); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if err := reg.RegisterSlot("", ctor("y"), 0); err == nil {
		t.Fatalf("expected empty slot error")
	}
	if err := reg.Register(&Constructor{Name: "z"}, 0, ClassMatcher("z")); err == nil {
		t.Fatalf("expected missing factory error")
	}
	if diff := cmp.Diff([]string{"x"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestHostAttachRewritesOnce(t *testing.T) {
	reg := NewRegistry()
	chart := ctor("chart")
	chart.Bindings = MustBindings("series", "title:heading")
	reg.MustRegisterSlot("chart", chart, 0)
	host := NewHost(reg)

	tmpl := compiler.MustCompile("page", `<main><h1>{{title}}</h1>{{#posts}}<div class="chart">x</div>{{/posts}}</main>`)
	attached := host.Attach(tmpl)
	if attached == tmpl {
		t.Fatalf("expected a rewritten copy")
	}
	if again := host.Attach(tmpl); again != attached {
		t.Fatalf("expected cached rewrite")
	}

	var widgets []*ast.Widget
	ast.Walk(attached.Root, func(n ast.Node) bool {
		if w, ok := n.(*ast.Widget); ok {
			widgets = append(widgets, w)
		}
		return true
	})
	if len(widgets) != 1 || widgets[0].Slot != "chart" || widgets[0].Element.Tag != "div" {
		t.Fatalf("unexpected widgets %+v", widgets)
	}

	ast.Walk(tmpl.Root, func(n ast.Node) bool {
		if _, ok := n.(*ast.Widget); ok {
			t.Fatalf("original template was modified")
		}
		return true
	})

	plain := compiler.MustCompile("plain", `<p>nothing</p>`)
	if host.Attach(plain) != plain {
		t.Fatalf("templates without slots should be returned as is")
	}
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		raw   string
		alias string
		path  string
	}{
		{raw: "title", alias: "title", path: "title"},
		{raw: "user.name", alias: "name", path: "user.name"},
		{raw: "user.name:author", alias: "author", path: "user.name"},
		{raw: ".:item", alias: "item", path: "."},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseBinding(tc.raw)
			if err != nil {
				t.Fatalf("ParseBinding: %v", err)
			}
			if got.Alias != tc.alias || got.Source.Raw != tc.path {
				t.Fatalf("ParseBinding(%q) = %+v", tc.raw, got)
			}
		})
	}
	if _, err := ParseBinding(""); err == nil {
		t.Fatalf("expected error for empty binding")
	}
}
