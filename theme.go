package stache

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ThemeKey is the global under which the active theme is exposed:
// {{theme.tokens.brand}}, {{theme.assets.stylesheet}}, {{{theme.cssVarsStyle}}}.
const ThemeKey = "theme"

// UseTheme selects a theme through selector and wires it into the
// pipeline. Manifest templates (base then variant) are read from files and
// registered as partials under their manifest keys; tokens, CSS variables
// and asset URLs become the "theme" global.
func (p *Pipeline) UseTheme(selector theme.ThemeSelector, name, variant string, files fs.FS) error {
	if selector == nil {
		return fmt.Errorf("stache: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return fmt.Errorf("stache: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return fmt.Errorf("stache: theme %q has no manifest", name)
	}
	resolved := resolveTheme(selection)

	keys := make([]string, 0, len(resolved.templates))
	for key := range resolved.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if files == nil {
			return fmt.Errorf("stache: theme %q declares templates but no files were given", selection.Theme)
		}
		file := strings.TrimPrefix(resolved.templates[key], "/")
		data, err := fs.ReadFile(files, file)
		if err != nil {
			return fmt.Errorf("stache: theme template %s: %w", key, err)
		}
		if err := p.RegisterPartial(key, string(data)); err != nil {
			return fmt.Errorf("stache: theme template %s: %w", key, err)
		}
	}

	p.SetGlobal(ThemeKey, resolved.globals())
	return nil
}

// ManifestSelector serves a single manifest, applying the requested
// variant when the manifest declares it.
func ManifestSelector(manifest *theme.Manifest) theme.ThemeSelector {
	return manifestSelector{manifest: manifest}
}

// LoadManifest decodes a YAML or JSON theme manifest.
func LoadManifest(fsys fs.FS, file string) (*theme.Manifest, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("stache: read manifest %s: %w", file, err)
	}
	manifest := &theme.Manifest{}
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("stache: parse manifest %s: %w", file, err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, fmt.Errorf("stache: manifest %s has no name", file)
	}
	return manifest, nil
}

type manifestSelector struct {
	manifest *theme.Manifest
}

func (s manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s.manifest == nil {
		return nil, fmt.Errorf("stache: no manifest")
	}
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("stache: theme %q not found", name)
	}
	if variant != "" {
		if _, ok := s.manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("stache: theme %q has no variant %q", s.manifest.Name, variant)
		}
	}
	return &theme.Selection{Theme: s.manifest.Name, Variant: variant, Manifest: s.manifest}, nil
}

type resolvedTheme struct {
	name      string
	variant   string
	templates map[string]string
	tokens    map[string]string
	assets    map[string]string
}

func resolveTheme(selection *theme.Selection) resolvedTheme {
	manifest := selection.Manifest
	out := resolvedTheme{
		name:      selection.Theme,
		variant:   selection.Variant,
		templates: merge(manifest.Templates, nil),
		tokens:    merge(manifest.Tokens, nil),
		assets:    make(map[string]string),
	}
	if out.name == "" {
		out.name = manifest.Name
	}

	prefix := manifest.Assets.Prefix
	for key, file := range manifest.Assets.Files {
		out.assets[key] = assetURL(prefix, file)
	}
	if v, ok := manifest.Variants[selection.Variant]; ok {
		out.templates = merge(out.templates, v.Templates)
		out.tokens = merge(out.tokens, v.Tokens)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
		for key, file := range v.Assets.Files {
			out.assets[key] = assetURL(prefix, file)
		}
	}
	return out
}

func (r resolvedTheme) globals() map[string]any {
	vars := make(map[string]string, len(r.tokens))
	for key, value := range r.tokens {
		vars["--"+key] = value
	}
	return map[string]any{
		"name":         r.name,
		"variant":      r.variant,
		"tokens":       r.tokens,
		"cssVars":      vars,
		"cssVarsStyle": cssVarsStyle(vars),
		"assets":       r.assets,
	}
}

func merge(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func assetURL(prefix, file string) string {
	if prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
		return file
	}
	return path.Join(prefix, file)
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
