package render

import (
	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/scope"
	"github.com/goliatone/go-stache/pkg/widgets"
)

// DefaultMaxDepth bounds partial recursion.
const DefaultMaxDepth = 64

// Sanitizer filters unescaped markup before it is emitted.
type Sanitizer interface {
	Sanitize(markup string) string
}

// SanitizerFunc adapts a function to Sanitizer.
type SanitizerFunc func(string) string

// Sanitize implements Sanitizer.
func (f SanitizerFunc) Sanitize(markup string) string { return f(markup) }

// Option configures a Walker.
type Option func(*Walker)

// WithReporter routes render diagnostics through reporter.
func WithReporter(reporter *diag.Reporter) Option {
	return func(w *Walker) {
		w.reporter = reporter
	}
}

// WithMaxDepth bounds partial recursion. Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		if depth > 0 {
			w.maxDepth = depth
		}
	}
}

// WithSanitizer filters triple and lambda markup.
func WithSanitizer(s Sanitizer) Option {
	return func(w *Walker) {
		w.sanitizer = s
	}
}

// WithZeroTruthy renders sections whose value is numeric zero.
func WithZeroTruthy() Option {
	return func(w *Walker) {
		w.values.ZeroTruthy = true
	}
}

// WithMissingKeyWarnings reports interpolations that resolve to nothing.
func WithMissingKeyWarnings() Option {
	return func(w *Walker) {
		w.missingKeys = true
	}
}

// RenderOptions describe per-call inputs that are not part of the data.
type RenderOptions struct {
	// Owner embeds widgets; nil renders slot elements as plain markup.
	Owner widgets.Owner
	// Globals sit in a frame below the data and are found when the data
	// does not define a key.
	Globals map[string]any
	// Partials resolves {{>name}}.
	Partials ast.PartialSet
	// Adapter replaces the reflect adapter for field access.
	Adapter scope.Adapter
}

// Frame builds the context chain for data.
func (o RenderOptions) Frame(data any) *scope.Frame {
	if len(o.Globals) == 0 {
		return scope.NewRoot(data, o.Adapter)
	}
	return scope.NewRoot(o.Globals, o.Adapter).PushRoot(data)
}
