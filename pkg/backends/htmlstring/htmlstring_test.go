package htmlstring

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-stache/pkg/output"
)

func text(s string) (any, output.ObjectOptions) {
	return s, output.ObjectOptions{Kind: output.ObjectText}
}

func TestBuilderSerializes(t *testing.T) {
	b := New()
	div, _ := b.OpenElement("div", output.Attrs{{Name: "class", Value: `a"b`}, {Name: "hidden", Bare: true}})
	if err := b.CreateObject(text(`1 < 2 & "q"`)); err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	br, _ := b.OpenElement("br", nil)
	if err := b.CloseElement(br); err != nil {
		t.Fatalf("close br: %v", err)
	}
	if err := b.CreateObject("<em>raw</em>", output.ObjectOptions{Kind: output.ObjectMarkup}); err != nil {
		t.Fatalf("markup: %v", err)
	}
	if err := b.CreateComment(" note "); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := b.CloseElement(div); err != nil {
		t.Fatalf("close div: %v", err)
	}

	got, err := b.Output()
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	want := `<div class="a&quot;b" hidden>1 &lt; 2 &amp; &quot;q&quot;<br><em>raw</em><!-- note --></div>`
	if got != want {
		t.Fatalf("Output() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuilderRawTextElements(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		kind output.ObjectKind
		body string
		want string
	}{
		{
			name: "literal script body kept raw",
			tag:  "script",
			kind: output.ObjectMarkup,
			body: "if (a < b) {}",
			want: "<script>if (a < b) {}</script>",
		},
		{
			name: "text inside script escaped",
			tag:  "script",
			kind: output.ObjectText,
			body: `</script><script>alert("x")</script>`,
			want: "<script>&lt;/script&gt;&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;</script>",
		},
		{
			name: "text inside style escaped",
			tag:  "style",
			kind: output.ObjectText,
			body: "</style><b>",
			want: "<style>&lt;/style&gt;&lt;b&gt;</style>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			h, _ := b.OpenElement(tt.tag, nil)
			if err := b.CreateObject(tt.body, output.ObjectOptions{Kind: tt.kind}); err != nil {
				t.Fatalf("CreateObject: %v", err)
			}
			_ = b.CloseElement(h)
			got, err := b.Output()
			if err != nil {
				t.Fatalf("Output: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("raw-text output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuilderDropsTableWhitespace(t *testing.T) {
	b := New()
	table, _ := b.OpenElement("table", nil)
	_ = b.CreateObject(text("\n  "))
	tr, _ := b.OpenElement("tr", nil)
	_ = b.CloseElement(tr)
	_ = b.CloseElement(table)
	got, _ := b.Output()
	if got != "<table><tr></tr></table>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestAttrBuilderRejectsMarkup(t *testing.T) {
	tests := []struct {
		name string
		call func(b *Builder) error
	}{
		{name: "open element", call: func(b *Builder) error { _, err := b.OpenElement("div", nil); return err }},
		{name: "comment", call: func(b *Builder) error { return b.CreateComment("x") }},
		{name: "widget", call: func(b *Builder) error {
			return b.CreateObject(nil, output.ObjectOptions{Kind: output.ObjectWidget})
		}},
		{name: "fragment", call: func(b *Builder) error {
			return b.CreateObject(nil, output.ObjectOptions{Kind: output.ObjectFragment})
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call(NewAttr())
			if !errors.Is(err, output.ErrMisuse) {
				t.Fatalf("expected ErrMisuse, got %v", err)
			}
		})
	}
}

func TestAttrBuilderFlattens(t *testing.T) {
	b := NewAttr()
	_ = b.CreateObject(`class="btn `, output.ObjectOptions{Kind: output.ObjectMarkup})
	_ = b.CreateObject(`x"y`, output.ObjectOptions{Kind: output.ObjectText})
	_ = b.CreateObject(`"`, output.ObjectOptions{Kind: output.ObjectMarkup})
	got, err := b.Output()
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if got != `class="btn x&quot;y"` {
		t.Fatalf("unexpected attribute text %q", got)
	}
}

type stubWidget struct{ inits int }

func (w *stubWidget) Init() (*html.Node, error) {
	w.inits++
	n := &html.Node{Type: html.ElementNode, Data: "canvas"}
	n.Attr = []html.Attribute{{Key: "id", Val: "chart"}}
	return n, nil
}

func (w *stubWidget) Update(output.Widget, *html.Node) error { return nil }
func (w *stubWidget) Destroy() error                         { return nil }

func TestBuilderRendersWidgets(t *testing.T) {
	b := New()
	w := &stubWidget{}
	if err := b.CreateObject(w, output.ObjectOptions{Kind: output.ObjectWidget}); err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	got, _ := b.Output()
	if got != `<canvas id="chart"></canvas>` || w.inits != 1 || len(b.Widgets()) != 1 {
		t.Fatalf("unexpected widget output %q (inits %d)", got, w.inits)
	}
	b.Clear()
	if len(b.Widgets()) != 0 {
		t.Fatalf("Clear must drop widgets")
	}
}
