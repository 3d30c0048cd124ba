package scope

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-stache/pkg/ast"
)

type author struct {
	Name     string
	Handle   string `json:"handle_name"`
	internal string
}

func (a author) Greeting() string { return "hi " + a.Name }

func (a author) Failing() (string, error) { return "", errors.New("boom") }

type getter map[string]any

func (g getter) Get(name string) (any, bool) {
	v, ok := g[name]
	return v, ok
}

type list []string

func (l list) Items() []any {
	out := make([]any, len(l))
	for i, s := range l {
		out[i] = s
	}
	return out
}

func resolve(t *testing.T, f *Frame, raw string) (any, bool) {
	t.Helper()
	return f.Resolve(ast.MustParseKeyPath(raw))
}

func TestReflectAdapterLookup(t *testing.T) {
	a := NewReflectAdapter()
	tests := []struct {
		name   string
		value  any
		key    string
		want   any
		wantOK bool
	}{
		{name: "map", value: map[string]any{"x": 1}, key: "x", want: 1, wantOK: true},
		{name: "typed map", value: map[string]int{"x": 2}, key: "x", want: 2, wantOK: true},
		{name: "map miss", value: map[string]any{}, key: "x"},
		{name: "struct field", value: author{Name: "Ada"}, key: "Name", want: "Ada", wantOK: true},
		{name: "struct field folded", value: author{Name: "Ada"}, key: "name", want: "Ada", wantOK: true},
		{name: "json tag", value: author{Handle: "ada"}, key: "handle_name", want: "ada", wantOK: true},
		{name: "unexported", value: author{internal: "x"}, key: "internal"},
		{name: "pointer", value: &author{Name: "Ada"}, key: "name", want: "Ada", wantOK: true},
		{name: "method", value: author{Name: "Ada"}, key: "greeting", want: "hi Ada", wantOK: true},
		{name: "method error is miss", value: author{}, key: "failing"},
		{name: "getter", value: getter{"k": "v"}, key: "k", want: "v", wantOK: true},
		{name: "computed func", value: map[string]any{"now": func() string { return "t" }}, key: "now", want: "t", wantOK: true},
		{name: "slice index", value: []string{"a", "b"}, key: "1", want: "b", wantOK: true},
		{name: "slice out of range", value: []string{"a"}, key: "3"},
		{name: "nil", value: nil, key: "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := a.LookupValue(tc.value, tc.key)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFrameResolve(t *testing.T) {
	root := NewRoot(map[string]any{
		"title": "Blog",
		"user":  map[string]any{"name": "Ada", "profile": map[string]any{"city": "London"}},
		"posts": []any{
			map[string]any{"title": "First"},
			map[string]any{"title": "Second"},
		},
	}, nil)

	posts, _ := resolve(t, root, "posts")
	second := posts.([]any)[1]
	item := root.PushIterator(second, "posts", 1)
	inner := item.Push(map[string]any{"label": "x"}, "meta")

	tests := []struct {
		name   string
		frame  *Frame
		path   string
		want   any
		wantOK bool
	}{
		{name: "head", frame: root, path: "title", want: "Blog", wantOK: true},
		{name: "nested", frame: root, path: "user.profile.city", want: "London", wantOK: true},
		{name: "descend has no fallback", frame: inner, path: "user.title"},
		{name: "shadowing", frame: item, path: "title", want: "Second", wantOK: true},
		{name: "chain fallback", frame: inner, path: "user.name", want: "Ada", wantOK: true},
		{name: "current", frame: inner, path: ".", want: map[string]any{"label": "x"}, wantOK: true},
		{name: "back reference", frame: inner, path: "posts:title", want: "Second", wantOK: true},
		{name: "back reference current", frame: inner, path: "posts:.", want: second, wantOK: true},
		{name: "unknown back reference", frame: inner, path: "tags:title"},
		{name: "index", frame: inner, path: "@index", want: 1, wantOK: true},
		{name: "index outside loop", frame: root, path: "@index"},
		{name: "miss", frame: inner, path: "nope"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := resolve(t, tc.frame, tc.path)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v (value %v)", ok, tc.wantOK, got)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type wrapAdapter struct{ inner *ReflectAdapter }

func (wrapAdapter) Initialize(value any, _ *Frame) any {
	if s, ok := value.(string); ok {
		return map[string]any{"text": s}
	}
	return value
}

func (w wrapAdapter) LookupValue(value any, name string) (any, bool) {
	return w.inner.LookupValue(value, name)
}

func TestCustomAdapter(t *testing.T) {
	root := NewRoot(map[string]any{"items": []any{"a"}}, wrapAdapter{inner: NewReflectAdapter()})
	item := root.PushIterator("a", "items", 0)
	got, ok := item.Resolve(ast.MustParseKeyPath("text"))
	if !ok || got != "a" {
		t.Fatalf("expected Initialize to wrap string, got %v %v", got, ok)
	}
}

func TestParseValue(t *testing.T) {
	var nilPtr *author
	tests := []struct {
		name       string
		in         any
		zeroTruthy bool
		truthy     bool
		array      bool
		items      int
	}{
		{name: "nil", in: nil},
		{name: "false", in: false},
		{name: "true", in: true, truthy: true},
		{name: "empty string", in: ""},
		{name: "string", in: "x", truthy: true},
		{name: "zero", in: 0},
		{name: "zero truthy", in: 0, zeroTruthy: true, truthy: true},
		{name: "float zero", in: 0.0},
		{name: "number", in: 3, truthy: true},
		{name: "empty slice", in: []any{}, array: true},
		{name: "typed slice", in: []string{"a", "b"}, truthy: true, array: true, items: 2},
		{name: "collection", in: list{"a"}, truthy: true, array: true, items: 1},
		{name: "map", in: map[string]any{}, truthy: true},
		{name: "struct", in: author{}, truthy: true},
		{name: "nil pointer", in: nilPtr},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseValue(tc.in, ValueOptions{ZeroTruthy: tc.zeroTruthy})
			if got.Truthy != tc.truthy || got.Array != tc.array || len(got.Items) != tc.items {
				t.Fatalf("ParseValue(%#v) = %+v", tc.in, got)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "s", want: "s"},
		{in: 42, want: "42"},
		{in: 1.5, want: "1.5"},
		{in: true, want: "true"},
		{in: []int{1, 2}, want: "[1 2]"},
		{in: func(string) string { return "x" }, want: ""},
		{in: func(a, b int) int { return a + b }, want: ""},
	}
	for _, tc := range tests {
		if got := Stringify(tc.in); got != tc.want {
			t.Fatalf("Stringify(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
