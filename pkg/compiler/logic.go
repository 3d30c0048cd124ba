package compiler

import (
	"strings"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/diag"
)

// parseLogic consumes one {{…}} or {{{…}}} tag starting at p.pos.
func (p *parser) parseLogic() error {
	start := p.pos
	rest := p.src[start:p.end]

	if strings.HasPrefix(rest, "{{{") {
		closeAt := strings.Index(rest[3:], "}}}")
		if closeAt < 0 {
			return p.fail(diag.CodeUnterminated, start, "unterminated tag %s", clip(rest))
		}
		inner := rest[3 : 3+closeAt]
		p.pos = start + 3 + closeAt + 3
		path, err := p.keyPath(inner, start)
		if err != nil || path == nil {
			return err
		}
		p.appendNode(&ast.Triple{Path: *path})
		return nil
	}

	closeAt := strings.Index(rest[2:], "}}")
	if closeAt < 0 {
		return p.fail(diag.CodeUnterminated, start, "unterminated tag %s", clip(rest))
	}
	inner := strings.TrimSpace(rest[2 : 2+closeAt])
	p.pos = start + 2 + closeAt + 2
	if inner == "" {
		return p.warn(diag.CodeMalformedTag, start, "empty tag {{}}")
	}

	sigil, body := inner[0], strings.TrimSpace(inner[1:])
	switch sigil {
	case '!':
		return nil
	case '#', '^':
		return p.openSection(body, sigil == '^', start)
	case '/':
		return p.closeSection(body, start)
	case '>':
		if body == "" {
			return p.warn(diag.CodeMalformedTag, start, "partial tag without a name")
		}
		p.refs.addPartial(body)
		p.appendNode(&ast.Partial{Name: body})
		return nil
	case '&':
		path, err := p.keyPath(body, start)
		if err != nil || path == nil {
			return err
		}
		p.appendNode(&ast.Triple{Path: *path})
		return nil
	case '=':
		return p.warn(diag.CodeMalformedTag, start, "delimiter changes are not supported: {{%s}}", inner)
	}

	path, err := p.keyPath(inner, start)
	if err != nil || path == nil {
		return err
	}
	p.appendNode(&ast.Interpolator{Path: *path, Escape: true})
	return nil
}

// keyPath parses raw, reporting a malformed-tag diagnostic on failure. A nil
// path with a nil error means the tag was dropped after a warning.
func (p *parser) keyPath(raw string, offset int) (*ast.KeyPath, error) {
	path, err := ast.ParseKeyPath(raw)
	if err != nil {
		return nil, p.warn(diag.CodeMalformedTag, offset, "%v", err)
	}
	return &path, nil
}

func (p *parser) openSection(raw string, negate bool, offset int) error {
	path, err := p.keyPath(raw, offset)
	if err != nil {
		return err
	}
	if path == nil {
		return p.fail(diag.CodeMalformedTag, offset, "section tag without a valid key")
	}
	p.stack = append(p.stack, &container{
		kind:    containerSection,
		section: &ast.Section{Path: *path, Negate: negate},
		open:    offset,
		body:    p.pos,
	})
	return nil
}

func (p *parser) closeSection(raw string, offset int) error {
	idx := -1
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].kind == containerSection {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p.fail(diag.CodeMismatchedSection, offset, "{{/%s}} closes no open section", raw)
	}
	open := p.stack[idx].section
	if open.Path.Raw != raw {
		return p.fail(diag.CodeMismatchedSection, offset, "{{/%s}} does not close {{#%s}}", raw, open.Path.Raw)
	}
	for len(p.stack)-1 > idx {
		el := p.top().element
		if err := p.warn(diag.CodeAutoClose, offset, "<%s> closed implicitly by {{/%s}}", el.Tag, raw); err != nil {
			return err
		}
		p.pop(offset)
	}
	p.pop(offset)
	return nil
}

// parseComment consumes <!-- … -->. The body is scanned for logic tags.
func (p *parser) parseComment() error {
	start := p.pos
	bodyStart := start + len("<!--")
	closeAt := strings.Index(p.src[bodyStart:p.end], "-->")
	if closeAt < 0 {
		return p.fail(diag.CodeUnterminated, start, "unterminated comment")
	}
	bodyEnd := bodyStart + closeAt
	children, err := p.sub(bodyStart, bodyEnd, modeText).run()
	if err != nil {
		return err
	}
	p.pos = bodyEnd + len("-->")
	p.appendNode(&ast.Comment{Children: children})
	return nil
}

// parseDeclaration consumes <!DOCTYPE …>, <![CDATA[…]]> or <?…?> and keeps
// it as raw text.
func (p *parser) parseDeclaration() error {
	start := p.pos
	rest := p.src[start:p.end]
	terminator := ">"
	if strings.HasPrefix(rest, "<![CDATA[") {
		terminator = "]]>"
	}
	closeAt := strings.Index(rest, terminator)
	if closeAt < 0 {
		return p.fail(diag.CodeUnterminated, start, "unterminated declaration %s", clip(rest))
	}
	p.pos = start + closeAt + len(terminator)
	p.appendNode(&ast.Text{Literal: p.src[start:p.pos], Raw: true})
	return nil
}

func clip(s string) string {
	const limit = 24
	if i := strings.IndexByte(s, '\n'); i >= 0 && i < limit {
		return s[:i]
	}
	if len(s) > limit {
		return s[:limit] + "…"
	}
	return s
}
