package htmlrules

import "testing"

func TestIsVoid(t *testing.T) {
	for _, tag := range []string{"br", "IMG", "input", "hr", "wbr"} {
		if !IsVoid(tag) {
			t.Fatalf("expected %q to be void", tag)
		}
	}
	for _, tag := range []string{"div", "li", "my-widget", ""} {
		if IsVoid(tag) {
			t.Fatalf("expected %q to be non-void", tag)
		}
	}
}

func TestImplicitlyCloses(t *testing.T) {
	cases := []struct {
		next, open string
		want       bool
	}{
		{"li", "li", true},
		{"dd", "dt", true},
		{"td", "th", true},
		{"td", "thead", true},
		{"div", "p", true},
		{"span", "p", false},
		{"li", "ul", false},
		{"x-card", "x-card", false},
	}
	for _, tc := range cases {
		if got := ImplicitlyCloses(tc.next, tc.open); got != tc.want {
			t.Fatalf("ImplicitlyCloses(%q, %q) = %v, want %v", tc.next, tc.open, got, tc.want)
		}
	}
}

func TestCheckParent(t *testing.T) {
	cases := []struct {
		name     string
		tag      string
		parent   string
		siblings []string
		wantErr  bool
	}{
		{name: "root always legal", tag: "li", parent: ""},
		{name: "li in ul", tag: "li", parent: "ul"},
		{name: "li in div", tag: "li", parent: "div", wantErr: true},
		{name: "caption first", tag: "caption", parent: "table"},
		{name: "caption after rows", tag: "caption", parent: "table", siblings: []string{"tbody"}, wantErr: true},
		{name: "colgroup before body", tag: "colgroup", parent: "table", siblings: []string{"caption"}},
		{name: "colgroup after body", tag: "colgroup", parent: "table", siblings: []string{"thead"}, wantErr: true},
		{name: "custom element anywhere", tag: "x-card", parent: "tr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := CheckParent(tc.tag, tc.parent, tc.siblings)
			if tc.wantErr && msg == "" {
				t.Fatalf("expected a nesting message")
			}
			if !tc.wantErr && msg != "" {
				t.Fatalf("unexpected nesting message %q", msg)
			}
		})
	}
}

func TestDropsWhitespace(t *testing.T) {
	if !DropsWhitespace("tbody") || !DropsWhitespace("TABLE") {
		t.Fatalf("expected table containers to drop whitespace")
	}
	if DropsWhitespace("div") || DropsWhitespace("ul") {
		t.Fatalf("expected flow containers to keep whitespace")
	}
}
