package output

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stache/pkg/diag"
)

type sexpr struct{}

func (sexpr) Element(tag string, attrs Attrs, children []string) (string, error) {
	var b strings.Builder
	b.WriteString("(" + tag)
	for _, attr := range attrs {
		fmt.Fprintf(&b, " @%s=%s", attr.Name, attr.Value)
	}
	for _, child := range children {
		b.WriteString(" " + child)
	}
	b.WriteString(")")
	return b.String(), nil
}

func (sexpr) Text(_ string, text string) string { return fmt.Sprintf("%q", text) }

func newTestStack() (*Stack[string], *diag.Recorder) {
	rec := &diag.Recorder{}
	return NewStack[string](sexpr{}, diag.NewReporter(diag.WithHook(rec.Hook()))), rec
}

func TestStackBalanced(t *testing.T) {
	s, rec := newTestStack()
	ul := s.Open("ul", Attrs{{Name: "class", Value: "list"}})
	li := s.Open("li", nil)
	s.Text("a")
	s.Text("b")
	if err := s.Close(li); err != nil {
		t.Fatalf("close li: %v", err)
	}
	if err := s.Close(ul); err != nil {
		t.Fatalf("close ul: %v", err)
	}
	got, err := s.Output()
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	want := []string{`(ul @class=list (li "ab"))`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if n := len(rec.Diagnostics()); n != 0 {
		t.Fatalf("unexpected diagnostics: %v", rec.Diagnostics())
	}
}

func TestStackEscapesTextInRawTextParents(t *testing.T) {
	s, _ := newTestStack()
	script := s.Open("script", nil)
	s.RawText(`var a = "`)
	s.Text(`</script>`)
	s.RawText(`";`)
	if err := s.Close(script); err != nil {
		t.Fatalf("close script: %v", err)
	}
	s.Text("<b>")
	got, err := s.Output()
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	want := []string{`(script "var a = \"&lt;/script&gt;\";")`, `"<b>"`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestStackAutoCorrects(t *testing.T) {
	t.Run("close skips inner", func(t *testing.T) {
		s, rec := newTestStack()
		div := s.Open("div", nil)
		s.Open("span", nil)
		s.Text("x")
		if err := s.Close(div); err != nil {
			t.Fatalf("close: %v", err)
		}
		got, _ := s.Output()
		if diff := cmp.Diff([]string{`(div (span "x"))`}, got); diff != "" {
			t.Fatalf("output mismatch (-want +got):\n%s", diff)
		}
		if rec.Count(diag.CodeUnbalancedOutput) != 1 {
			t.Fatalf("expected one unbalanced-output diagnostic, got %v", rec.Diagnostics())
		}
	})

	t.Run("unknown handle", func(t *testing.T) {
		s, rec := newTestStack()
		if err := s.Close(Handle(99)); err != nil {
			t.Fatalf("close: %v", err)
		}
		if rec.Count(diag.CodeUnbalancedOutput) != 1 {
			t.Fatalf("expected diagnostic")
		}
	})

	t.Run("output closes leftovers", func(t *testing.T) {
		s, rec := newTestStack()
		s.Open("p", nil)
		s.Text("open")
		got, err := s.Output()
		if err != nil {
			t.Fatalf("Output: %v", err)
		}
		if diff := cmp.Diff([]string{`(p "open")`}, got); diff != "" {
			t.Fatalf("output mismatch (-want +got):\n%s", diff)
		}
		if rec.Count(diag.CodeUnbalancedOutput) != 1 {
			t.Fatalf("expected diagnostic")
		}
		if s.Depth() != 0 {
			t.Fatalf("stack not empty")
		}
	})

	t.Run("strict fails", func(t *testing.T) {
		s := NewStack[string](sexpr{}, diag.NewReporter(diag.WithStrict(true), diag.WithHook(diag.Discard)))
		s.Open("p", nil)
		if _, err := s.Output(); err == nil {
			t.Fatalf("expected strict error")
		}
	})
}

func TestShape(t *testing.T) {
	text := func(s string) Piece[string] { return Piece[string]{Text: s, IsText: true} }
	node := func(s string) Piece[string] { return Piece[string]{Node: s} }

	tests := []struct {
		name   string
		parent string
		in     []Piece[string]
		want   []Piece[string]
	}{
		{name: "merge text", parent: "div", in: []Piece[string]{text("a"), text("b"), node("x"), text("c")}, want: []Piece[string]{text("ab"), node("x"), text("c")}},
		{name: "keep whitespace in div", parent: "div", in: []Piece[string]{text(" "), node("x")}, want: []Piece[string]{text(" "), node("x")}},
		{name: "drop whitespace in table", parent: "tr", in: []Piece[string]{text("\n  "), node("td"), text(" ")}, want: []Piece[string]{node("td")}},
		{name: "collapse sole empty", parent: "span", in: []Piece[string]{text("")}, want: nil},
		{name: "empty", parent: "div", in: nil, want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Shape(tc.parent, tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type recordingBuilder struct {
	events []string
	next   Handle
}

func (r *recordingBuilder) OpenElement(tag string, attrs Attrs) (Handle, error) {
	r.next++
	r.events = append(r.events, fmt.Sprintf("open %s %v", tag, attrs.Map()))
	return r.next, nil
}

func (r *recordingBuilder) CloseElement(Handle) error {
	r.events = append(r.events, "close")
	return nil
}

func (r *recordingBuilder) CreateObject(value any, opts ObjectOptions) error {
	r.events = append(r.events, fmt.Sprintf("%s %v", opts.Kind, value))
	return nil
}

func (r *recordingBuilder) CreateComment(text string) error {
	r.events = append(r.events, "comment "+text)
	return nil
}

func (r *recordingBuilder) Clear() { r.events = nil }

func TestReplayMarkup(t *testing.T) {
	b := &recordingBuilder{}
	if err := ReplayMarkup(b, `<b class="x">hi</b> &amp; <!--c-->`, "div"); err != nil {
		t.Fatalf("ReplayMarkup: %v", err)
	}
	want := []string{
		"open b map[class:x]",
		"text hi",
		"close",
		"text  & ",
		"comment c",
	}
	if diff := cmp.Diff(want, b.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}

	b.Clear()
	if err := ReplayMarkup(b, `<script>if (a < b) {}</script>`, "div"); err != nil {
		t.Fatalf("ReplayMarkup: %v", err)
	}
	want = []string{
		"open script map[]",
		"markup if (a < b) {}",
		"close",
	}
	if diff := cmp.Diff(want, b.events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAttrs(t *testing.T) {
	attrs := Attrs{{Name: "id", Value: "a"}, {Name: "class", Value: "x"}}
	merged := attrs.Merge(Attrs{{Name: "CLASS", Value: "y"}, {Name: "hidden", Bare: true}})
	want := Attrs{{Name: "id", Value: "a"}, {Name: "CLASS", Value: "y"}, {Name: "hidden", Bare: true}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	if v, _ := attrs.Get("class"); v != "x" {
		t.Fatalf("merge mutated receiver: %q", v)
	}
}

func TestMisuseError(t *testing.T) {
	err := Misuse("attribute", "open an element", "<div>")
	if !errors.Is(err, ErrMisuse) {
		t.Fatalf("expected ErrMisuse, got %v", err)
	}
	if !strings.Contains(err.Error(), "attribute backend cannot open an element") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

type counter struct{ cleared int }

func (c *counter) Clear() { c.cleared++ }

func TestPoolClears(t *testing.T) {
	p := NewPool(func() *counter { return &counter{} })
	c := p.Get()
	if c.cleared == 0 {
		t.Fatalf("Get must clear")
	}
	before := c.cleared
	p.Put(c)
	if c.cleared != before+1 {
		t.Fatalf("Put must clear")
	}
}
