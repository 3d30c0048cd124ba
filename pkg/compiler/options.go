package compiler

import "github.com/goliatone/go-stache/pkg/diag"

// Option configures a compilation.
type Option func(*config)

type config struct {
	reporter *diag.Reporter
	strict   bool
}

// WithReporter routes diagnostics through an existing reporter. The
// reporter's own strict setting applies.
func WithReporter(reporter *diag.Reporter) Option {
	return func(cfg *config) {
		cfg.reporter = reporter
	}
}

// WithStrict escalates every warning to an exception when no reporter was
// supplied.
func WithStrict(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = strict
	}
}

func newConfig(options ...Option) config {
	var cfg config
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.reporter == nil {
		cfg.reporter = diag.NewReporter(diag.WithStrict(cfg.strict))
	}
	return cfg
}
