// Package config loads pipeline settings from JSON or YAML documents.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/diag"
	"github.com/goliatone/go-stache/pkg/render"
	"github.com/goliatone/go-stache/pkg/sanitize"
	"github.com/goliatone/go-stache/pkg/widgets"
)

// DefaultPartialExtension is the file extension partial loaders look for.
const DefaultPartialExtension = ".mustache"

// Config is a normalised pipeline configuration.
type Config struct {
	// Source names the document the config was read from.
	Source             string
	Strict             bool
	ZeroTruthy         bool
	MaxPartialDepth    int
	MissingKeyWarnings bool
	Severity           map[diag.Code]diag.Severity
	Partials           Partials
	Sanitize           Sanitize
	Slots              []Slot
	Layout             Layout
	Theme              Theme
}

// Partials locates partial templates on disk.
type Partials struct {
	Dir       string
	Extension string
}

// Sanitize controls filtering of unescaped output.
type Sanitize struct {
	Triple   bool
	Elements []string
	SVG      bool
}

// Slot maps a class to a widget constructor name.
type Slot struct {
	Class    string
	Widget   string
	Bindings []ast.Binding
	Priority int
}

// Layout selects the page shell.
type Layout struct {
	Dir  string
	Name string
}

// Theme selects a go-theme theme and variant.
type Theme struct {
	Name    string
	Variant string
}

type documentFile struct {
	Strict             bool              `json:"strict" yaml:"strict"`
	ZeroTruthy         bool              `json:"zeroTruthy" yaml:"zeroTruthy"`
	MaxPartialDepth    int               `json:"maxPartialDepth" yaml:"maxPartialDepth"`
	MissingKeyWarnings bool              `json:"missingKeyWarnings" yaml:"missingKeyWarnings"`
	Severity           map[string]string `json:"severity" yaml:"severity"`
	Partials           struct {
		Dir       string `json:"dir" yaml:"dir"`
		Extension string `json:"extension" yaml:"extension"`
	} `json:"partials" yaml:"partials"`
	Sanitize struct {
		Triple   bool     `json:"triple" yaml:"triple"`
		Elements []string `json:"elements" yaml:"elements"`
		SVG      bool     `json:"svg" yaml:"svg"`
	} `json:"sanitize" yaml:"sanitize"`
	Slots  []slotFile `json:"slots" yaml:"slots"`
	Layout struct {
		Dir  string `json:"dir" yaml:"dir"`
		Name string `json:"name" yaml:"name"`
	} `json:"layout" yaml:"layout"`
	Theme struct {
		Name    string `json:"name" yaml:"name"`
		Variant string `json:"variant" yaml:"variant"`
	} `json:"theme" yaml:"theme"`
}

type slotFile struct {
	Class    string   `json:"class" yaml:"class"`
	Widget   string   `json:"widget" yaml:"widget"`
	Bindings []string `json:"bindings" yaml:"bindings"`
	Priority int      `json:"priority" yaml:"priority"`
}

// Default returns the configuration used when no document is given.
func Default() Config {
	return Config{
		MaxPartialDepth: render.DefaultMaxDepth,
		Partials:        Partials{Extension: DefaultPartialExtension},
	}
}

// LoadFile reads a config document from disk.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads a config document from fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	if fsys == nil {
		return Config{}, fmt.Errorf("config: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a JSON or YAML document and normalises it.
func Parse(data []byte, source string) (Config, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return Config{}, err
	}
	return normalise(doc, source)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("config: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
}

func normalise(doc documentFile, source string) (Config, error) {
	cfg := Default()
	cfg.Source = source
	cfg.Strict = doc.Strict
	cfg.ZeroTruthy = doc.ZeroTruthy
	cfg.MissingKeyWarnings = doc.MissingKeyWarnings

	switch {
	case doc.MaxPartialDepth < 0:
		return Config{}, fmt.Errorf("config: %s: maxPartialDepth must not be negative", source)
	case doc.MaxPartialDepth > 0:
		cfg.MaxPartialDepth = doc.MaxPartialDepth
	}

	if len(doc.Severity) > 0 {
		cfg.Severity = make(map[diag.Code]diag.Severity, len(doc.Severity))
		for rawCode, rawSeverity := range doc.Severity {
			code, ok := diag.ParseCode(rawCode)
			if !ok {
				return Config{}, fmt.Errorf("config: %s: unknown diagnostic code %q", source, rawCode)
			}
			severity, ok := diag.ParseSeverity(rawSeverity)
			if !ok {
				return Config{}, fmt.Errorf("config: %s: code %q has unknown severity %q", source, rawCode, rawSeverity)
			}
			cfg.Severity[code] = severity
		}
	}

	cfg.Partials.Dir = strings.TrimSpace(doc.Partials.Dir)
	if ext := strings.TrimSpace(doc.Partials.Extension); ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Partials.Extension = ext
	}

	cfg.Sanitize = Sanitize{
		Triple:   doc.Sanitize.Triple || len(doc.Sanitize.Elements) > 0 || doc.Sanitize.SVG,
		Elements: trimAll(doc.Sanitize.Elements),
		SVG:      doc.Sanitize.SVG,
	}

	seen := make(map[string]struct{}, len(doc.Slots))
	for idx, raw := range doc.Slots {
		slot, err := normaliseSlot(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: slot %d: %w", source, idx, err)
		}
		if _, dup := seen[slot.Widget]; dup {
			return Config{}, fmt.Errorf("config: %s: duplicate widget %q", source, slot.Widget)
		}
		seen[slot.Widget] = struct{}{}
		cfg.Slots = append(cfg.Slots, slot)
	}

	cfg.Layout = Layout{Dir: strings.TrimSpace(doc.Layout.Dir), Name: strings.TrimSpace(doc.Layout.Name)}
	cfg.Theme = Theme{Name: strings.TrimSpace(doc.Theme.Name), Variant: strings.TrimSpace(doc.Theme.Variant)}
	return cfg, nil
}

func normaliseSlot(raw slotFile) (Slot, error) {
	class := strings.TrimSpace(raw.Class)
	if class == "" {
		return Slot{}, fmt.Errorf("class is required")
	}
	name := strings.TrimSpace(raw.Widget)
	if name == "" {
		name = class
	}
	bindings, err := widgets.ParseBindings(raw.Bindings...)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Class: class, Widget: name, Bindings: bindings, Priority: raw.Priority}, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ReporterOptions returns the diagnostic policy described by the config.
func (c Config) ReporterOptions() []diag.Option {
	options := []diag.Option{diag.WithStrict(c.Strict)}
	codes := make([]diag.Code, 0, len(c.Severity))
	for code := range c.Severity {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		options = append(options, diag.WithSeverity(code, c.Severity[code]))
	}
	return options
}

// RenderOptions returns walker options. The reporter is left to the
// caller.
func (c Config) RenderOptions() []render.Option {
	options := []render.Option{render.WithMaxDepth(c.MaxPartialDepth)}
	if c.ZeroTruthy {
		options = append(options, render.WithZeroTruthy())
	}
	if c.MissingKeyWarnings {
		options = append(options, render.WithMissingKeyWarnings())
	}
	if s := c.Sanitizer(); s != nil {
		options = append(options, render.WithSanitizer(s))
	}
	return options
}

// Sanitizer returns the filter for unescaped output, or nil when triples
// are trusted.
func (c Config) Sanitizer() *sanitize.Sanitizer {
	if !c.Sanitize.Triple {
		return nil
	}
	var options []sanitize.Option
	if len(c.Sanitize.Elements) > 0 {
		options = append(options, sanitize.WithElements(c.Sanitize.Elements...))
	}
	if c.Sanitize.SVG {
		options = append(options, sanitize.WithSVG())
	}
	return sanitize.New(options...)
}

// Register adds the configured slots to registry, looking up each
// constructor factory by widget name in factories.
func (c Config) Register(registry *widgets.Registry, factories map[string]func(widgets.Owner) widgets.View) error {
	for _, slot := range c.Slots {
		factory, ok := factories[slot.Widget]
		if !ok {
			return fmt.Errorf("config: slot %q names unknown widget %q", slot.Class, slot.Widget)
		}
		ctor := &widgets.Constructor{Name: slot.Widget, New: factory, Bindings: slot.Bindings}
		if err := registry.RegisterSlot(slot.Class, ctor, slot.Priority); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}
