package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/compiler"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/render"
	"github.com/goliatone/go-stache/pkg/widgets"
)

func TestLoadFileYAML(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "stache.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	want := Config{
		Source:             filepath.Join("testdata", "stache.yaml"),
		ZeroTruthy:         true,
		MaxPartialDepth:    16,
		MissingKeyWarnings: true,
		Severity: map[diag.Code]diag.Severity{
			diag.CodeIllegalNesting: diag.SeverityException,
			diag.CodeMissingPartial: diag.SeverityWarning,
		},
		Partials: Partials{Dir: "partials", Extension: ".html"},
		Sanitize: Sanitize{Triple: true, Elements: []string{"mark"}},
		Slots: []Slot{
			{
				Class:    "chart",
				Widget:   "line-chart",
				Bindings: widgets.MustBindings("title", "series:data"),
				Priority: 10,
			},
			{Class: "map", Widget: "map", Bindings: []ast.Binding{}},
		},
		Layout: Layout{Dir: "layouts", Name: "page"},
		Theme:  Theme{Name: "default", Variant: "dark"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFSJSONDefaults(t *testing.T) {
	files := fstest.MapFS{"cfg/minimal.json": {Data: []byte(`{"strict": true, "partials": {"dir": "views"}}`)}}
	cfg, err := LoadFS(files, "cfg/minimal.json")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if !cfg.Strict || cfg.Partials.Dir != "views" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Partials.Extension != DefaultPartialExtension || cfg.MaxPartialDepth != render.DefaultMaxDepth {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Sanitizer() != nil {
		t.Fatal("sanitizer should be off by default")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "empty", doc: "  ", want: "is empty"},
		{name: "garbage", doc: "{not: [valid", want: "invalid JSON or YAML"},
		{name: "bad code", doc: "severity:\n  nope: warning\n", want: `unknown diagnostic code "nope"`},
		{name: "bad severity", doc: "severity:\n  auto-close: loud\n", want: `unknown severity "loud"`},
		{name: "negative depth", doc: "maxPartialDepth: -1\n", want: "must not be negative"},
		{name: "slot without class", doc: "slots:\n  - widget: x\n", want: "class is required"},
		{name: "duplicate widget", doc: "slots:\n  - class: a\n    widget: w\n  - class: b\n    widget: w\n", want: `duplicate widget "w"`},
		{name: "bad binding", doc: "slots:\n  - class: a\n    bindings: [\"a..b\"]\n", want: "binding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "test.yaml")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestReporterOptionsApplyPolicy(t *testing.T) {
	cfg, err := Parse([]byte("severity:\n  illegal-nesting: exception\n"), "inline")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reporter := diag.NewReporter(append(cfg.ReporterOptions(), diag.WithHook(diag.Discard))...)
	_, err = compiler.Compile("t", "<div><tr></tr></div>", compiler.WithReporter(reporter))
	var d *diag.Diagnostic
	if !errors.As(err, &d) || d.Code != diag.CodeIllegalNesting {
		t.Fatalf("err = %v, want illegal-nesting exception", err)
	}
}

func TestRenderOptionsAndSanitizer(t *testing.T) {
	cfg, err := Parse([]byte("zeroTruthy: true\nsanitize:\n  triple: true\n"), "inline")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	w := render.New(cfg.RenderOptions()...)
	tmpl, err := compiler.Compile("t", `{{#n}}zero{{/n}}{{{html}}}`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := w.HTML(tmpl, map[string]any{"n": 0, "html": `<b>x</b><script>y</script>`}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if got != "zero<b>x</b>" {
		t.Fatalf("got %q", got)
	}
}

func TestRegisterSlots(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "stache.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	registry := widgets.NewRegistry()
	factory := func(widgets.Owner) widgets.View { return nil }

	err = cfg.Register(registry, map[string]func(widgets.Owner) widgets.View{"line-chart": factory})
	if err == nil || !strings.Contains(err.Error(), `unknown widget "map"`) {
		t.Fatalf("err = %v, want unknown widget map", err)
	}

	registry = widgets.NewRegistry()
	err = cfg.Register(registry, map[string]func(widgets.Owner) widgets.View{"line-chart": factory, "map": factory})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if diff := cmp.Diff([]string{"line-chart", "map"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
