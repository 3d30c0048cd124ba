// Package stache compiles hybrid markup and logic templates and renders
// them into HTML strings, virtual trees, live nodes or gomponents.
package stache

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"
	g "maragu.dev/gomponents"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/backends/vtree"
	"github.com/goliatone/go-stache/pkg/compiler"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/layout"
	"github.com/goliatone/go-stache/pkg/output"
	"github.com/goliatone/go-stache/pkg/render"
	"github.com/goliatone/go-stache/pkg/scope"
	"github.com/goliatone/go-stache/pkg/widgets"
)

// DefaultBackend is used when Render is called without a backend name.
const DefaultBackend = "html"

// Pipeline owns a set of named templates, the walker that renders them and
// the backend registry. Templates double as partials: {{>name}} resolves
// against every template compiled or registered on the pipeline. A
// Pipeline is safe for concurrent use once configured.
type Pipeline struct {
	mu        sync.RWMutex
	templates map[string]*ast.Template

	reporter    *diag.Reporter
	diagOpts    []diag.Option
	renderOpts  []render.Option
	walker      *render.Walker
	renderers   *render.Registry
	host        *widgets.Host
	adapter     scope.Adapter
	globals     map[string]any
	layoutOpts  []layout.Option
	layoutName  string
	layoutOnce  sync.Once
	layout      *layout.Engine
	layoutErr   error
	partialsExt string
}

// New builds a pipeline.
func New(options ...Option) *Pipeline {
	p := &Pipeline{
		templates:   make(map[string]*ast.Template),
		globals:     make(map[string]any),
		partialsExt: ".mustache",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = diag.NewReporter(p.diagOpts...)
	}
	p.walker = render.New(append([]render.Option{render.WithReporter(p.reporter)}, p.renderOpts...)...)
	p.renderers = render.NewDefaultRegistry(p.walker)
	return p
}

// Reporter returns the reporter shared by compilation and rendering.
func (p *Pipeline) Reporter() *diag.Reporter {
	return p.reporter
}

// Walker returns the walker used by every backend.
func (p *Pipeline) Walker() *render.Walker {
	return p.walker
}

// Widgets returns the widget registry, or nil when none was configured.
func (p *Pipeline) Widgets() *widgets.Registry {
	if p.host == nil {
		return nil
	}
	return p.host.Registry()
}

// Backends lists the registered backend names.
func (p *Pipeline) Backends() []string {
	return p.renderers.List()
}

// Backend returns the renderer registered as name.
func (p *Pipeline) Backend(name string) (render.Renderer, error) {
	if name == "" {
		name = DefaultBackend
	}
	r, err := p.renderers.Get(name)
	if err != nil {
		return nil, fmt.Errorf("stache: %w", err)
	}
	return r, nil
}

// RegisterBackend adds a custom renderer.
func (p *Pipeline) RegisterBackend(r render.Renderer) error {
	return p.renderers.Register(r)
}

// Compile compiles src, stores it under name and returns it. A template
// with the same name is replaced.
func (p *Pipeline) Compile(name, src string) (*ast.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("stache: template name is required")
	}
	tmpl, err := compiler.Compile(name, src, compiler.WithReporter(p.reporter))
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.templates[name] = tmpl
	p.mu.Unlock()
	if p.host != nil {
		p.host.Forget()
	}
	return tmpl, nil
}

// MustCompile panics when Compile fails.
func (p *Pipeline) MustCompile(name, src string) *ast.Template {
	tmpl, err := p.Compile(name, src)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// RegisterPartial compiles src as a partial named name.
func (p *Pipeline) RegisterPartial(name, src string) error {
	_, err := p.Compile(name, src)
	return err
}

// LoadPartialsFS compiles every file in fsys ending in ext (the pipeline
// default when empty). Partial names are slash separated paths without
// the extension, so "cards/user.mustache" becomes "cards/user".
func (p *Pipeline) LoadPartialsFS(fsys fs.FS, ext string) error {
	if fsys == nil {
		return nil
	}
	if ext == "" {
		ext = p.partialsExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fs.WalkDir(fsys, ".", func(file string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || path.Ext(file) != ext {
			return nil
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("stache: read %s: %w", file, err)
		}
		if _, err := p.Compile(strings.TrimSuffix(file, ext), string(data)); err != nil {
			return fmt.Errorf("stache: partial %s: %w", file, err)
		}
		return nil
	})
}

// Lookup implements ast.PartialSet.
func (p *Pipeline) Lookup(name string) (*ast.Template, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tmpl, ok := p.templates[name]
	return tmpl, ok && tmpl != nil
}

// Template returns the template compiled under name.
func (p *Pipeline) Template(name string) (*ast.Template, bool) {
	return p.Lookup(name)
}

// Names returns the compiled template names, sorted.
func (p *Pipeline) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.templates))
	for name := range p.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// References returns the top-level keys template name reads, following
// partials.
func (p *Pipeline) References(name string) ([]string, error) {
	tmpl, ok := p.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("stache: template %q not found", name)
	}
	seen := map[string]bool{}
	visited := map[string]bool{}
	var out []string
	var collect func(t *ast.Template)
	collect = func(t *ast.Template) {
		if visited[t.Name] {
			return
		}
		visited[t.Name] = true
		for _, key := range t.References() {
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
		for _, partial := range t.Partials {
			if sub, ok := p.Lookup(partial); ok {
				collect(sub)
			}
		}
	}
	collect(tmpl)
	return out, nil
}

// RenderOption adjusts one render call.
type RenderOption func(*render.RenderOptions)

// WithOwner embeds widgets through owner for one render.
func WithOwner(owner widgets.Owner) RenderOption {
	return func(o *render.RenderOptions) {
		o.Owner = owner
	}
}

// WithRenderGlobals adds globals for one render. They shadow pipeline
// globals with the same key.
func WithRenderGlobals(globals map[string]any) RenderOption {
	return func(o *render.RenderOptions) {
		if len(globals) == 0 {
			return
		}
		merged := make(map[string]any, len(o.Globals)+len(globals))
		for k, v := range o.Globals {
			merged[k] = v
		}
		for k, v := range globals {
			merged[k] = v
		}
		o.Globals = merged
	}
}

func (p *Pipeline) renderOptions(options []RenderOption) render.RenderOptions {
	p.mu.RLock()
	globals := make(map[string]any, len(p.globals))
	for k, v := range p.globals {
		globals[k] = v
	}
	p.mu.RUnlock()

	out := render.RenderOptions{
		Globals:  globals,
		Partials: p,
		Adapter:  p.adapter,
	}
	if p.host != nil {
		out.Owner = p.host
	}
	for _, opt := range options {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

func (p *Pipeline) template(name string) (*ast.Template, error) {
	tmpl, ok := p.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("stache: template %q not found", name)
	}
	return tmpl, nil
}

// Render renders template name with the backend called backend and
// returns its encoded output.
func (p *Pipeline) Render(ctx context.Context, name string, data any, backend string, options ...RenderOption) ([]byte, error) {
	renderer, err := p.Backend(backend)
	if err != nil {
		return nil, err
	}
	tmpl, err := p.template(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, tmpl, data, p.renderOptions(options))
}

// RenderHTML renders template name to an HTML string.
func (p *Pipeline) RenderHTML(name string, data any, options ...RenderOption) (string, error) {
	tmpl, err := p.template(name)
	if err != nil {
		return "", err
	}
	return p.walker.HTML(tmpl, data, p.renderOptions(options))
}

// RenderTree renders template name to a virtual tree.
func (p *Pipeline) RenderTree(name string, data any, options ...RenderOption) (vtree.Tree, error) {
	tmpl, err := p.template(name)
	if err != nil {
		return nil, err
	}
	return p.walker.Tree(tmpl, data, p.renderOptions(options))
}

// RenderLive renders template name to detached platform nodes and the
// widgets initialised while building them.
func (p *Pipeline) RenderLive(name string, data any, options ...RenderOption) ([]*html.Node, []output.Widget, error) {
	tmpl, err := p.template(name)
	if err != nil {
		return nil, nil, err
	}
	return p.walker.Live(tmpl, data, p.renderOptions(options))
}

// RenderNodes renders template name to gomponents nodes.
func (p *Pipeline) RenderNodes(name string, data any, options ...RenderOption) ([]g.Node, error) {
	tmpl, err := p.template(name)
	if err != nil {
		return nil, err
	}
	return p.walker.Nodes(tmpl, data, p.renderOptions(options))
}

// RenderPage renders template name to HTML and wraps it in a page layout.
// An empty layoutName uses the pipeline default.
func (p *Pipeline) RenderPage(name string, data any, page layout.Page, layoutName string, options ...RenderOption) (string, error) {
	body, err := p.RenderHTML(name, data, options...)
	if err != nil {
		return "", err
	}
	engine, err := p.layoutEngine()
	if err != nil {
		return "", err
	}
	if layoutName == "" {
		layoutName = p.layoutName
	}
	page.Body = body
	if page.Data == nil {
		page.Data = p.pageData()
	}
	return engine.RenderPage(layoutName, page)
}

func (p *Pipeline) layoutEngine() (*layout.Engine, error) {
	p.layoutOnce.Do(func() {
		p.layout, p.layoutErr = layout.New(p.layoutOpts...)
	})
	if p.layoutErr != nil {
		return nil, fmt.Errorf("stache: %w", p.layoutErr)
	}
	return p.layout, nil
}

func (p *Pipeline) pageData() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if t, ok := p.globals[ThemeKey]; ok {
		return map[string]any{ThemeKey: t}
	}
	return nil
}

// SetGlobal sets a value visible to every render.
func (p *Pipeline) SetGlobal(key string, value any) {
	p.mu.Lock()
	p.globals[key] = value
	p.mu.Unlock()
}
