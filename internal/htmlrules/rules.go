// Package htmlrules holds the HTML nesting tables shared by the compiler and
// the output backends: void elements, implicit closes, allowed parents and
// the containers whose whitespace-only text a browser parser would drop.
package htmlrules

import (
	"strings"

	a "golang.org/x/net/html/atom"
)

// Lookup returns the atom for a tag name, or 0 for custom elements.
func Lookup(tag string) a.Atom {
	return a.Lookup([]byte(strings.ToLower(tag)))
}

var voidTags = map[a.Atom]struct{}{
	a.Area: {}, a.Base: {}, a.Br: {}, a.Col: {}, a.Embed: {}, a.Hr: {}, a.Img: {},
	a.Input: {}, a.Keygen: {}, a.Link: {}, a.Meta: {}, a.Param: {}, a.Source: {},
	a.Track: {}, a.Wbr: {},
}

// IsVoid reports whether tag never has children or a close tag.
func IsVoid(tag string) bool {
	_, ok := voidTags[Lookup(tag)]
	return ok
}

var paragraphClosers = []a.Atom{
	a.Address, a.Article, a.Aside, a.Blockquote, a.Details, a.Div, a.Dl, a.Fieldset,
	a.Figcaption, a.Figure, a.Footer, a.Form, a.H1, a.H2, a.H3, a.H4, a.H5, a.H6,
	a.Header, a.Hgroup, a.Hr, a.Main, a.Menu, a.Nav, a.Ol, a.P, a.Pre, a.Section,
	a.Table, a.Ul,
}

// implicitCloses maps an opening tag to the open elements it closes when
// they sit on top of the stack.
var implicitCloses = map[a.Atom][]a.Atom{
	a.Li:       {a.Li},
	a.Dt:       {a.Dt, a.Dd},
	a.Dd:       {a.Dt, a.Dd},
	a.Option:   {a.Option},
	a.Optgroup: {a.Option, a.Optgroup},
	a.Tr:       {a.Tr, a.Td, a.Th},
	a.Td:       {a.Td, a.Th, a.Thead},
	a.Th:       {a.Td, a.Th, a.Thead},
	a.Tbody:    {a.Thead, a.Tbody, a.Tfoot, a.Tr, a.Td, a.Th},
	a.Tfoot:    {a.Thead, a.Tbody, a.Tr, a.Td, a.Th},
}

func init() {
	for _, tag := range paragraphClosers {
		implicitCloses[tag] = append(implicitCloses[tag], a.P)
	}
}

// ImplicitlyCloses reports whether opening next closes an open element.
func ImplicitlyCloses(next, open string) bool {
	closes, ok := implicitCloses[Lookup(next)]
	if !ok {
		return false
	}
	target := Lookup(open)
	if target == 0 {
		return false
	}
	for _, tag := range closes {
		if tag == target {
			return true
		}
	}
	return false
}

var allowedParents = map[a.Atom][]a.Atom{
	a.Li:         {a.Ul, a.Ol, a.Menu},
	a.Dt:         {a.Dl, a.Div},
	a.Dd:         {a.Dl, a.Div},
	a.Tr:         {a.Table, a.Thead, a.Tbody, a.Tfoot},
	a.Td:         {a.Tr},
	a.Th:         {a.Tr},
	a.Thead:      {a.Table},
	a.Tbody:      {a.Table},
	a.Tfoot:      {a.Table},
	a.Caption:    {a.Table},
	a.Colgroup:   {a.Table},
	a.Col:        {a.Colgroup, a.Table},
	a.Option:     {a.Select, a.Optgroup, a.Datalist},
	a.Optgroup:   {a.Select},
	a.Legend:     {a.Fieldset},
	a.Figcaption: {a.Figure},
	a.Summary:    {a.Details},
	a.Source:     {a.Audio, a.Video, a.Picture},
	a.Track:      {a.Audio, a.Video},
	a.Param:      {a.Object},
	a.Area:       {a.Map},
}

// predicate inspects the tags of the element children the parent already
// has and returns a message when the new child may not be placed there.
type predicate func(siblings []string) string

var structuralPredicates = map[a.Atom]predicate{
	a.Caption: func(siblings []string) string {
		if len(siblings) > 0 {
			return "<caption> must be the first child of its <table>"
		}
		return ""
	},
	a.Colgroup: func(siblings []string) string {
		for _, sibling := range siblings {
			switch Lookup(sibling) {
			case a.Thead, a.Tbody, a.Tfoot:
				return "<colgroup> must precede <" + sibling + "> in its <table>"
			}
		}
		return ""
	},
}

// CheckParent validates placing tag under parent. siblings lists the
// element children parent already holds. An empty parent (template root)
// is always accepted. The returned message is empty when placement is legal.
func CheckParent(tag, parent string, siblings []string) string {
	if parent == "" {
		return ""
	}
	atom := Lookup(tag)
	if parents, ok := allowedParents[atom]; ok {
		parentAtom := Lookup(parent)
		allowed := false
		for _, candidate := range parents {
			if candidate == parentAtom {
				allowed = true
				break
			}
		}
		if !allowed {
			return "<" + strings.ToLower(tag) + "> is not allowed inside <" + strings.ToLower(parent) + ">"
		}
	}
	if check, ok := structuralPredicates[atom]; ok {
		return check(siblings)
	}
	return ""
}

var whitespaceDroppers = map[a.Atom]struct{}{
	a.Table: {}, a.Thead: {}, a.Tbody: {}, a.Tfoot: {}, a.Tr: {}, a.Colgroup: {},
	a.Select: {}, a.Optgroup: {}, a.Datalist: {}, a.Html: {}, a.Head: {},
}

// DropsWhitespace reports whether a browser's parser would discard
// whitespace-only text directly inside tag.
func DropsWhitespace(tag string) bool {
	_, ok := whitespaceDroppers[Lookup(tag)]
	return ok
}

// IsRawText reports whether tag's content is emitted without escaping.
func IsRawText(tag string) bool {
	switch Lookup(tag) {
	case a.Script, a.Style:
		return true
	}
	return false
}
