package stache

import (
	"strings"

	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/layout"
	"github.com/goliatone/go-stache/pkg/render"
	"github.com/goliatone/go-stache/pkg/scope"
	"github.com/goliatone/go-stache/pkg/widgets"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter shares reporter between compilation and rendering. It
// takes precedence over WithDiagnostics.
func WithReporter(reporter *diag.Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

// WithDiagnostics configures the reporter the pipeline builds.
func WithDiagnostics(options ...diag.Option) Option {
	return func(p *Pipeline) {
		p.diagOpts = append(p.diagOpts, options...)
	}
}

// WithStrict escalates every warning to an error.
func WithStrict() Option {
	return WithDiagnostics(diag.WithStrict(true))
}

// WithRenderOptions passes options to the walker.
func WithRenderOptions(options ...render.Option) Option {
	return func(p *Pipeline) {
		p.renderOpts = append(p.renderOpts, options...)
	}
}

// WithWidgets embeds widgets resolved by registry in every render.
func WithWidgets(registry *widgets.Registry) Option {
	return func(p *Pipeline) {
		if registry == nil {
			p.host = nil
			return
		}
		p.host = widgets.NewHost(registry)
	}
}

// WithAdapter replaces the reflect adapter for data access.
func WithAdapter(adapter scope.Adapter) Option {
	return func(p *Pipeline) {
		p.adapter = adapter
	}
}

// WithGlobals seeds values visible to every render below the data.
func WithGlobals(globals map[string]any) Option {
	return func(p *Pipeline) {
		for key, value := range globals {
			p.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithLayout configures the page layout engine used by RenderPage.
func WithLayout(options ...layout.Option) Option {
	return func(p *Pipeline) {
		p.layoutOpts = append(p.layoutOpts, options...)
	}
}

// WithDefaultLayout names the layout RenderPage uses when none is given.
func WithDefaultLayout(name string) Option {
	return func(p *Pipeline) {
		p.layoutName = strings.TrimSpace(name)
	}
}

// WithPartialExtension sets the extension LoadPartialsFS looks for.
func WithPartialExtension(ext string) Option {
	return func(p *Pipeline) {
		if ext = strings.TrimSpace(ext); ext != "" {
			p.partialsExt = ext
		}
	}
}

// WithConfig applies a loaded configuration document. Slots and partial
// directories need IO and are handled by FromConfig.
func WithConfig(cfg config.Config) Option {
	return func(p *Pipeline) {
		p.diagOpts = append(p.diagOpts, cfg.ReporterOptions()...)
		p.renderOpts = append(p.renderOpts, cfg.RenderOptions()...)
		if cfg.Partials.Extension != "" {
			p.partialsExt = cfg.Partials.Extension
		}
		if cfg.Layout.Dir != "" {
			p.layoutOpts = append(p.layoutOpts, layout.WithBaseDir(cfg.Layout.Dir))
		}
		if cfg.Layout.Name != "" {
			p.layoutName = cfg.Layout.Name
		}
	}
}
