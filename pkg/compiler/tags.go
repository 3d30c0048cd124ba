package compiler

import (
	"strings"

	"github.com/goliatone/go-stache/internal/htmlrules"
	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/diag"
)

// rawTextElements hold character data that is never parsed as markup.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}

func (p *parser) parseOpenTag() error {
	start := p.pos
	i := start + 1
	for i < p.end && isNameByte(p.src[i]) {
		i++
	}
	tag := strings.ToLower(p.src[start+1 : i])

	region, selfClosing, closeAt, ok := scanTagBody(p.src, i, p.end)
	if !ok {
		return p.fail(diag.CodeUnterminated, start, "unterminated <%s", tag)
	}
	p.pos = closeAt + 1

	el := &ast.Element{Tag: tag}
	if err := p.parseAttributes(el, region, i); err != nil {
		return err
	}

	for {
		c := p.top()
		if c.kind != containerElement || !htmlrules.ImplicitlyCloses(tag, c.element.Tag) {
			break
		}
		if err := p.warn(diag.CodeImplicitClose, start, "<%s> implicitly closed by <%s>", c.element.Tag, tag); err != nil {
			return err
		}
		p.pop(start)
	}

	parent, siblings := p.parentElement()
	if msg := htmlrules.CheckParent(tag, parent, siblings); msg != "" {
		if err := p.warn(diag.CodeIllegalNesting, start, "%s", msg); err != nil {
			return err
		}
	}

	if htmlrules.IsVoid(tag) || selfClosing {
		p.appendNode(el)
		return nil
	}

	if rawTextElements[tag] {
		return p.parseRawText(el, start)
	}

	p.stack = append(p.stack, &container{
		kind:    containerElement,
		element: el,
		open:    start,
	})
	return nil
}

// parentElement returns the nearest open element's tag (sections are
// transparent) and the element tags already placed inside it.
func (p *parser) parentElement() (string, []string) {
	var siblings []string
	for i := len(p.stack) - 1; i >= 0; i-- {
		c := p.stack[i]
		if c.kind == containerSection {
			continue
		}
		for _, child := range c.children {
			if el, ok := child.(*ast.Element); ok {
				siblings = append(siblings, el.Tag)
			}
		}
		if c.kind == containerRoot {
			return "", siblings
		}
		return c.element.Tag, siblings
	}
	return "", siblings
}

func (p *parser) parseRawText(el *ast.Element, start int) error {
	closing := "</" + el.Tag
	bodyStart := p.pos
	idx := indexFold(p.src[bodyStart:p.end], closing)
	if idx < 0 {
		return p.fail(diag.CodeUnterminated, start, "unterminated <%s>", el.Tag)
	}
	bodyEnd := bodyStart + idx
	children, err := p.sub(bodyStart, bodyEnd, modeText).run()
	if err != nil {
		return err
	}
	gt := strings.IndexByte(p.src[bodyEnd:p.end], '>')
	if gt < 0 {
		return p.fail(diag.CodeUnterminated, bodyEnd, "unterminated </%s", el.Tag)
	}
	p.pos = bodyEnd + gt + 1
	el.Children = children
	p.appendNode(el)
	return nil
}

func (p *parser) parseCloseTag() error {
	start := p.pos
	gt := strings.IndexByte(p.src[start:p.end], '>')
	if gt < 0 {
		return p.fail(diag.CodeUnterminated, start, "unterminated close tag")
	}
	tag := strings.ToLower(strings.TrimSpace(p.src[start+2 : start+gt]))
	p.pos = start + gt + 1

	if htmlrules.IsVoid(tag) {
		return p.warn(diag.CodeUnexpectedClose, start, "</%s> closes a void element", tag)
	}

	match := -1
	for i := len(p.stack) - 1; i > 0; i-- {
		c := p.stack[i]
		if c.kind != containerElement {
			break
		}
		if c.element.Tag == tag {
			match = i
			break
		}
	}

	if match < 0 {
		var err error
		if top := p.top(); top.kind == containerElement {
			err = p.fail(diag.CodeMismatchedClose, start, "closing tag </%s> does not match open <%s>", tag, top.element.Tag)
		} else {
			err = p.fail(diag.CodeMismatchedClose, start, "closing tag </%s> has no open element", tag)
		}
		return err
	}

	for len(p.stack)-1 > match {
		if err := p.warn(diag.CodeAutoClose, start, "<%s> closed implicitly by </%s>", p.top().element.Tag, tag); err != nil {
			return err
		}
		p.pop(start)
	}
	p.pop(start)
	return nil
}

func isNameByte(c byte) bool {
	return isTagStart(c) || (c >= '0' && c <= '9') || c == '-' || c == ':' || c == '_' || c == '.'
}

// scanTagBody finds the '>' ending a start tag, skipping quoted values and
// logic tags. It returns the attribute region and whether the tag ended in
// "/>".
func scanTagBody(src string, from, end int) (region string, selfClosing bool, closeAt int, ok bool) {
	i := from
	for i < end {
		switch c := src[i]; {
		case strings.HasPrefix(src[i:end], "{{"):
			next := skipLogic(src[i:end])
			if next < 0 {
				return "", false, 0, false
			}
			i += next
			continue
		case c == '"' || c == '\'':
			q := strings.IndexByte(src[i+1:end], c)
			if q < 0 {
				return "", false, 0, false
			}
			i += q + 2
			continue
		case c == '>':
			region = src[from:i]
			trimmed := strings.TrimRight(region, " \t\r\n")
			if strings.HasSuffix(trimmed, "/") {
				selfClosing = true
				region = strings.TrimSuffix(trimmed, "/")
			}
			return region, selfClosing, i, true
		}
		i++
	}
	return "", false, 0, false
}

// skipLogic returns the length of the logic tag at the start of s, or -1.
func skipLogic(s string) int {
	if strings.HasPrefix(s, "{{{") {
		if idx := strings.Index(s[3:], "}}}"); idx >= 0 {
			return idx + 6
		}
		return -1
	}
	if idx := strings.Index(s[2:], "}}"); idx >= 0 {
		return idx + 4
	}
	return -1
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
