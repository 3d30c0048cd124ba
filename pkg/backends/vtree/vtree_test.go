package vtree

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stache/pkg/backends/htmlstring"
	"github.com/goliatone/go-stache/pkg/output"
)

func TestBuilderTree(t *testing.T) {
	b := New()
	ul, _ := b.OpenElement("ul", output.Attrs{{Name: "class", Value: "list"}})
	_ = b.CreateObject("\n", output.ObjectOptions{Kind: output.ObjectText})
	li, _ := b.OpenElement("li", nil)
	_ = b.CreateObject("a", output.ObjectOptions{Kind: output.ObjectText})
	_ = b.CreateObject("b", output.ObjectOptions{Kind: output.ObjectText})
	_ = b.CloseElement(li)
	_ = b.CreateObject(`<li><b>c</b></li>`, output.ObjectOptions{Kind: output.ObjectMarkup})
	_ = b.CloseElement(ul)

	got, err := b.Output()
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	want := Tree{
		Element("ul", output.Attrs{{Name: "class", Value: "list"}},
			Text("\n"),
			Element("li", nil, Text("ab")),
			Element("li", nil, Element("b", nil, Text("c"))),
		),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeReplay(t *testing.T) {
	tree := Tree{
		Element("p", output.Attrs{{Name: "id", Value: "x"}}, Text("a < b"), Comment("c")),
	}
	b := htmlstring.New()
	if err := tree.Replay(b); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	got, _ := b.Output()
	if got != `<p id="x">a &lt; b<!--c--></p>` {
		t.Fatalf("unexpected markup %q", got)
	}
}

func TestBuilderSplicesFragments(t *testing.T) {
	inner := Tree{Element("em", nil, Text("nested"))}
	b := New()
	div, _ := b.OpenElement("div", nil)
	if err := b.CreateObject(inner, output.ObjectOptions{Kind: output.ObjectFragment}); err != nil {
		t.Fatalf("CreateObject: %v", err)
	}
	_ = b.CloseElement(div)
	got, _ := b.Output()
	want := Tree{Element("div", nil, Element("em", nil, Text("nested")))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeJSON(t *testing.T) {
	tree := Tree{Element("a", output.Attrs{{Name: "href", Value: "/"}}, Text("home"))}
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"kind":"element","tag":"a","properties":[{"name":"href","value":"/"}],"children":[{"kind":"text","text":"home"}]}]`
	if string(data) != want {
		t.Fatalf("json =\n%s\nwant\n%s", data, want)
	}

	var decoded Tree
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(tree, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
