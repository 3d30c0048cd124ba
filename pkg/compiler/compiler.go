// Package compiler turns template source into an ast.Template. Markup is
// validated against HTML nesting rules while it is parsed; structural
// problems that can be repaired are reported as warnings, the rest abort
// compilation.
package compiler

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/diag"
)

// Compile parses src into a template named name.
func Compile(name, src string, options ...Option) (*ast.Template, error) {
	cfg := newConfig(options...)
	p := &parser{
		name:     name,
		src:      src,
		end:      len(src),
		mode:     modeMarkup,
		reporter: cfg.reporter,
		refs:     &references{seen: make(map[string]struct{})},
	}
	root, err := p.run()
	if err != nil {
		return nil, err
	}
	return &ast.Template{
		Name:     name,
		Source:   src,
		Root:     root,
		Partials: p.refs.partials,
	}, nil
}

// MustCompile panics when src does not compile.
func MustCompile(name, src string, options ...Option) *ast.Template {
	tmpl, err := Compile(name, src, options...)
	if err != nil {
		panic(err)
	}
	return tmpl
}

type mode int

const (
	// modeMarkup recognises elements, comments and logic tags.
	modeMarkup mode = iota
	// modeText only recognises logic tags; literal runs stay raw.
	modeText
)

type containerKind int

const (
	containerRoot containerKind = iota
	containerElement
	containerSection
)

type container struct {
	kind     containerKind
	element  *ast.Element
	section  *ast.Section
	children []ast.Node
	open     int
	body     int
}

type references struct {
	partials []string
	seen     map[string]struct{}
}

func (r *references) addPartial(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.partials = append(r.partials, name)
}

type parser struct {
	name     string
	src      string
	pos      int
	end      int
	mode     mode
	reporter *diag.Reporter
	refs     *references
	stack    []*container
}

// sub returns a parser over src[start:end] sharing positions and partial
// references with p.
func (p *parser) sub(start, end int, m mode) *parser {
	return &parser{
		name:     p.name,
		src:      p.src,
		pos:      start,
		end:      end,
		mode:     m,
		reporter: p.reporter,
		refs:     p.refs,
	}
}

func (p *parser) run() ([]ast.Node, error) {
	p.stack = []*container{{kind: containerRoot}}
	for p.pos < p.end {
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.stack[0].children, nil
}

func (p *parser) step() error {
	rest := p.src[p.pos:p.end]
	next := nextSpecial(rest, p.mode)
	if next < 0 {
		p.appendText(rest)
		p.pos = p.end
		return nil
	}
	if next > 0 {
		p.appendText(rest[:next])
		p.pos += next
		rest = rest[next:]
	}

	switch {
	case strings.HasPrefix(rest, "{{"):
		return p.parseLogic()
	case strings.HasPrefix(rest, "<!--"):
		return p.parseComment()
	case strings.HasPrefix(rest, "<!"), strings.HasPrefix(rest, "<?"):
		return p.parseDeclaration()
	case strings.HasPrefix(rest, "</"):
		return p.parseCloseTag()
	case len(rest) > 1 && isTagStart(rest[1]):
		return p.parseOpenTag()
	default:
		p.appendText(rest[:1])
		p.pos++
		return nil
	}
}

func nextSpecial(s string, m mode) int {
	logic := strings.Index(s, "{{")
	if m == modeText {
		return logic
	}
	for i := 0; i < len(s); i++ {
		if i == logic {
			return i
		}
		if s[i] == '<' {
			return i
		}
	}
	return -1
}

func isTagStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *parser) top() *container {
	return p.stack[len(p.stack)-1]
}

func (p *parser) appendNode(n ast.Node) {
	c := p.top()
	c.children = append(c.children, n)
}

func (p *parser) appendText(raw string) {
	if raw == "" {
		return
	}
	literal := raw
	isRaw := p.mode == modeText
	if !isRaw {
		literal = html.UnescapeString(raw)
	}
	c := p.top()
	if n := len(c.children); n > 0 {
		if prev, ok := c.children[n-1].(*ast.Text); ok && prev.Raw == isRaw {
			prev.Literal += literal
			return
		}
	}
	c.children = append(c.children, &ast.Text{Literal: literal, Raw: isRaw})
}

func (p *parser) position(offset int) diag.Position {
	if offset > len(p.src) {
		offset = len(p.src)
	}
	before := p.src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return diag.Position{Line: line, Column: col}
}

func (p *parser) report(code diag.Code, severity diag.Severity, offset int, format string, args ...any) error {
	return p.reporter.Report(diag.Diagnostic{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Template: p.name,
		Pos:      p.position(offset),
	})
}

func (p *parser) warn(code diag.Code, offset int, format string, args ...any) error {
	return p.report(code, diag.SeverityWarning, offset, format, args...)
}

func (p *parser) fail(code diag.Code, offset int, format string, args ...any) error {
	return p.report(code, diag.SeverityException, offset, format, args...)
}

// pop closes the top container and appends its node to the new top.
func (p *parser) pop(closeAt int) {
	c := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	switch c.kind {
	case containerElement:
		c.element.Children = c.children
		p.appendNode(c.element)
	case containerSection:
		c.section.Children = c.children
		c.section.Source = p.src[c.body:closeAt]
		p.appendNode(c.section)
	}
}

func (p *parser) finish() error {
	for len(p.stack) > 1 {
		c := p.top()
		switch c.kind {
		case containerElement:
			if err := p.warn(diag.CodeAutoClose, c.open, "unclosed <%s> closed at end of template", c.element.Tag); err != nil {
				return err
			}
		case containerSection:
			return p.fail(diag.CodeUnterminated, c.open, "unclosed section {{#%s}}", c.section.Path.Raw)
		}
		p.pop(p.end)
	}
	return nil
}
