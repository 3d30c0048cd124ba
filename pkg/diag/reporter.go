package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithHook replaces the default slog hook.
func WithHook(hook Hook) Option {
	return func(r *Reporter) {
		if hook != nil {
			r.hook = hook
		}
	}
}

// WithStrict escalates every warning to an exception.
func WithStrict(strict bool) Option {
	return func(r *Reporter) {
		r.strict = strict
	}
}

// WithSeverity pins the severity of one diagnostic code. Strict mode still
// escalates an overridden warning.
func WithSeverity(code Code, severity Severity) Option {
	return func(r *Reporter) {
		if r.overrides == nil {
			r.overrides = make(map[Code]Severity)
		}
		r.overrides[code] = severity
	}
}

// Reporter applies severity policy and forwards diagnostics to its hook.
// A nil *Reporter behaves like NewReporter().
type Reporter struct {
	hook      Hook
	strict    bool
	overrides map[Code]Severity
}

// NewReporter builds a reporter that logs through slog.Default unless a
// hook is supplied.
func NewReporter(options ...Option) *Reporter {
	r := &Reporter{hook: SlogHook(nil)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

var (
	defaultOnce     sync.Once
	defaultReporter *Reporter
)

func fallback() *Reporter {
	defaultOnce.Do(func() {
		defaultReporter = NewReporter()
	})
	return defaultReporter
}

// Strict reports whether warnings are escalated.
func (r *Reporter) Strict() bool {
	if r == nil {
		return false
	}
	return r.strict
}

// Report resolves the final severity of d, hands it to the hook and returns
// it as an error when it is an exception.
func (r *Reporter) Report(d Diagnostic) error {
	if r == nil {
		r = fallback()
	}
	if severity, ok := r.overrides[d.Code]; ok {
		d.Severity = severity
	}
	if r.strict {
		d.Severity = SeverityException
	}
	if r.hook != nil {
		r.hook(d)
	}
	if d.Severity == SeverityException {
		return &d
	}
	return nil
}

// Warn reports a warning-level diagnostic without a source position.
func (r *Reporter) Warn(code Code, format string, args ...any) error {
	return r.Report(Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// SlogHook writes diagnostics as structured slog records. Warnings log at
// Warn level, exceptions at Error level. A nil logger uses slog.Default at
// call time.
func SlogHook(logger *slog.Logger) Hook {
	return func(d Diagnostic) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		level := slog.LevelWarn
		if d.Severity == SeverityException {
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("code", d.Code.String()),
			slog.String("severity", d.Severity.String()),
		}
		if d.Template != "" {
			attrs = append(attrs, slog.String("template", d.Template))
		}
		if !d.Pos.IsZero() {
			attrs = append(attrs, slog.Int("line", d.Pos.Line), slog.Int("column", d.Pos.Column))
		}
		l.LogAttrs(context.Background(), level, d.Message, attrs...)
	}
}

// Recorder collects diagnostics in memory. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Hook returns a Hook that appends to the recorder.
func (r *Recorder) Hook() Hook {
	return func(d Diagnostic) {
		r.mu.Lock()
		r.items = append(r.items, d)
		r.mu.Unlock()
	}
}

// Diagnostics returns a copy of everything recorded so far.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.items...)
}

// Count returns how many diagnostics with the given code were recorded.
func (r *Recorder) Count(code Code) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Reset drops recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
