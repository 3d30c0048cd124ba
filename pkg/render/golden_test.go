package render

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/backends/htmlstring"
	"github.com/goliatone/go-stache/pkg/testsupport"
)

func TestProfileGolden(t *testing.T) {
	tmpl := testsupport.MustCompileFile(t, filepath.Join("testdata", "profile.mustache"))
	data := testsupport.MustLoadData(t, filepath.Join("testdata", "profile.yaml"))
	options := RenderOptions{
		Partials: ast.Partials{"footer": testsupport.MustCompile(t, "footer", `<footer>{{site}}</footer>`)},
	}
	golden := filepath.Join("testdata", "profile.golden")

	w := New(WithReporter(testsupport.Quiet()))
	got, err := w.HTML(tmpl, data, options)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	testsupport.AssertGolden(t, golden, []byte(got))
	want := testsupport.MustReadGoldenString(t, golden)

	tree, err := w.Tree(tmpl, data, options)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	b := htmlstring.New()
	if err := tree.Replay(b); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	replayed, err := b.Output()
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if diff := testsupport.CompareGolden(want, replayed); diff != "" {
		t.Fatalf("replayed tree mismatch (-want +got):\n%s", diff)
	}

	out, err := NewDefaultRegistry(w).MustGet("gomponents").Render(testsupport.Context(), tmpl, data, options)
	if err != nil {
		t.Fatalf("gomponents: %v", err)
	}
	if diff := testsupport.CompareGolden(want, string(out)); diff != "" {
		t.Fatalf("gomponents mismatch (-want +got):\n%s", diff)
	}
}
