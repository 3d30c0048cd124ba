// Package diag routes compile-time and render-time diagnostics through a
// single pluggable hook. Every diagnostic carries one of two severities; a
// reporter may escalate warnings (strict mode) or override the severity of a
// specific code before the hook sees it.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityWarning is reported and rendering/compilation continues.
	SeverityWarning Severity = iota
	// SeverityException is reported and returned to the caller as an error.
	SeverityException
)

func (s Severity) String() string {
	switch s {
	case SeverityException:
		return "exception"
	default:
		return "warning"
	}
}

// ParseSeverity maps "warning"/"exception" (case-insensitive, "error" is an
// alias for exception) onto a Severity.
func ParseSeverity(raw string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "warning", "warn":
		return SeverityWarning, true
	case "exception", "error":
		return SeverityException, true
	default:
		return SeverityWarning, false
	}
}

// Code identifies the condition that produced a diagnostic.
type Code int

const (
	CodeUnknown Code = iota
	// CodeImplicitClose reports an element closed by opening a sibling that
	// cannot nest inside it (a second <li>, a <td> after <th>).
	CodeImplicitClose
	// CodeIllegalNesting reports an element opened under a parent it is not
	// allowed in.
	CodeIllegalNesting
	// CodeAutoClose reports elements popped while recovering from a
	// mismatched close tag or at end of input.
	CodeAutoClose
	// CodeUnexpectedClose reports a close tag with nothing to close.
	CodeUnexpectedClose
	// CodeMismatchedClose reports a close tag that matches no open element.
	CodeMismatchedClose
	// CodeMismatchedSection reports a {{/x}} that does not close the open section.
	CodeMismatchedSection
	// CodeUnterminated reports a logic tag, comment or section left open at
	// end of input.
	CodeUnterminated
	// CodeMalformedTag reports a logic tag or key path that cannot be parsed.
	CodeMalformedTag
	// CodeMissingPartial reports a {{>name}} with no registered partial.
	CodeMissingPartial
	// CodeMissingKey reports an interpolation whose key path resolved to nothing.
	CodeMissingKey
	// CodeUnbalancedOutput reports an output stack that had to be corrected.
	CodeUnbalancedOutput
	// CodeUnknownWidget reports a widget marker whose slot has no constructor.
	CodeUnknownWidget
)

var codeNames = map[Code]string{
	CodeUnknown:           "unknown",
	CodeImplicitClose:     "implicit-close",
	CodeIllegalNesting:    "illegal-nesting",
	CodeAutoClose:         "auto-close",
	CodeUnexpectedClose:   "unexpected-close",
	CodeMismatchedClose:   "mismatched-close",
	CodeMismatchedSection: "mismatched-section",
	CodeUnterminated:      "unterminated",
	CodeMalformedTag:      "malformed-tag",
	CodeMissingPartial:    "missing-partial",
	CodeMissingKey:        "missing-key",
	CodeUnbalancedOutput:  "unbalanced-output",
	CodeUnknownWidget:     "unknown-widget",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[CodeUnknown]
}

// ParseCode resolves the kebab-case name of a code.
func ParseCode(raw string) (Code, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for code, name := range codeNames {
		if name == trimmed && code != CodeUnknown {
			return code, true
		}
	}
	return CodeUnknown, false
}

// Position locates a diagnostic inside template source. Lines and columns
// are 1-based; the zero value means "no position".
type Position struct {
	Line   int
	Column int
}

// IsZero reports whether the position is unset.
func (p Position) IsZero() bool {
	return p.Line == 0
}

func (p Position) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is a single compile or render finding. It implements error so
// exceptions can be returned directly and inspected with errors.As.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Template string
	Pos      Position
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Template != "" {
		b.WriteString(d.Template)
		b.WriteByte(':')
	}
	if !d.Pos.IsZero() {
		b.WriteString(d.Pos.String())
		b.WriteByte(':')
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(d.Message)
	b.WriteString(" [")
	b.WriteString(d.Code.String())
	b.WriteByte(']')
	return b.String()
}

// Hook receives every reported diagnostic after severity resolution.
type Hook func(d Diagnostic)

// Discard is a Hook that drops diagnostics.
func Discard(Diagnostic) {}
