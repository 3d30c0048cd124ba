package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	stache "github.com/goliatone/go-stache"
	"github.com/goliatone/go-stache/internal/prompt"
	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/layout"
)

// pageBackend wraps html output in a layout document.
const pageBackend = "page"

type options struct {
	template    string
	data        string
	config      string
	partials    string
	backend     string
	layout      string
	title       string
	theme       string
	themeName   string
	variant     string
	strict      bool
	interactive bool
	output      string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("invalid arguments: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var driver prompt.Driver
	if opts.interactive {
		driver = prompt.NewSurveyDriver(os.Stderr)
	}

	out, err := run(context.Background(), opts, driver)
	if err != nil {
		log.Fatalf("Failed to render template: %v", err)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", opts.output)
		return
	}
	fmt.Println(string(out))
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("stache", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&opts.template, "template", "", "template file to render")
	fs.StringVar(&opts.data, "data", "", "JSON or YAML data file")
	fs.StringVar(&opts.config, "config", "", "pipeline config file (JSON or YAML)")
	fs.StringVar(&opts.partials, "partials", "", "directory of partial templates")
	fs.StringVar(&opts.backend, "backend", stache.DefaultBackend, "output backend (html, vtree, live, gomponents, page)")
	fs.StringVar(&opts.layout, "layout", "", "layout name used by the page backend")
	fs.StringVar(&opts.title, "title", "", "page title used by the page backend")
	fs.StringVar(&opts.theme, "theme", "", "theme manifest file")
	fs.StringVar(&opts.themeName, "theme-name", "", "theme name override")
	fs.StringVar(&opts.variant, "variant", "", "theme variant")
	fs.BoolVar(&opts.strict, "strict", false, "treat warnings as errors")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for missing data keys")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.template == "" && fs.NArg() > 0 {
		opts.template = fs.Arg(0)
	}
	if strings.TrimSpace(opts.template) == "" {
		return opts, errors.New("a template file is required")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, driver prompt.Driver) ([]byte, error) {
	cfg := config.Default()
	if opts.config != "" {
		loaded, err := config.LoadFile(opts.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.partials != "" {
		cfg.Partials.Dir = opts.partials
	}
	if opts.strict {
		cfg.Strict = true
	}
	if opts.themeName == "" {
		opts.themeName = cfg.Theme.Name
	}
	if opts.variant == "" {
		opts.variant = cfg.Theme.Variant
	}

	pipelineOpts := []stache.Option{
		stache.WithDiagnostics(diag.WithHook(diag.SlogHook(nil))),
	}

	pipeline, err := stache.FromConfig(cfg, nil, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	if opts.theme != "" {
		manifest, err := stache.LoadManifest(os.DirFS(filepath.Dir(opts.theme)), filepath.Base(opts.theme))
		if err != nil {
			return nil, err
		}
		name := opts.themeName
		if name == "" {
			name = manifest.Name
		}
		if err := pipeline.UseTheme(stache.ManifestSelector(manifest), name, opts.variant, os.DirFS(filepath.Dir(opts.theme))); err != nil {
			return nil, err
		}
	}

	src, err := os.ReadFile(opts.template)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	name := templateName(opts.template)
	if _, err := pipeline.Compile(name, string(src)); err != nil {
		return nil, err
	}

	data := map[string]any{}
	if opts.data != "" {
		if data, err = loadData(opts.data); err != nil {
			return nil, err
		}
	}

	backend := opts.backend
	if driver != nil {
		keys, err := pipeline.References(name)
		if err != nil {
			return nil, err
		}
		if data, err = prompt.Fill(ctx, driver, keys, data); err != nil {
			return nil, err
		}
		choices := append(pipeline.Backends(), pageBackend)
		if backend, err = prompt.Choose(ctx, driver, "Output backend", choices, backend); err != nil {
			return nil, err
		}
	}

	if backend == pageBackend {
		page := layout.Page{Title: opts.title}
		if page.Title == "" {
			page.Title = name
		}
		out, err := pipeline.RenderPage(name, data, page, opts.layout)
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}
	return pipeline.Render(ctx, name, data, backend)
}

func templateName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadData decodes a JSON or YAML document. YAML is a superset of JSON so
// one decoder covers both.
func loadData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode data %s: %w", path, err)
	}
	return out, nil
}
