package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-stache/pkg/ast"
	"github.com/goliatone/go-stache/pkg/compiler"
	"github.com/goliatone/go-stache/pkg/diag"
)

// MustCompile compiles src and fails the test on a fatal diagnostic.
// Warnings are discarded; use Recorder to inspect them.
func MustCompile(t *testing.T, name, src string) *ast.Template {
	t.Helper()

	tmpl, err := compiler.Compile(name, src, compiler.WithReporter(Quiet()))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return tmpl
}

// MustCompileFile compiles the template stored at path. The template is
// named after the file without its extension.
func MustCompileFile(t *testing.T, path string) *ast.Template {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return MustCompile(t, name, string(data))
}

// Quiet returns a reporter that drops every warning.
func Quiet() *diag.Reporter {
	return diag.NewReporter(diag.WithHook(diag.Discard))
}

// Recorder returns a reporter whose diagnostics are collected in the
// returned recorder.
func Recorder(options ...diag.Option) (*diag.Recorder, *diag.Reporter) {
	rec := &diag.Recorder{}
	options = append([]diag.Option{diag.WithHook(rec.Hook())}, options...)
	return rec, diag.NewReporter(options...)
}

// LoadData reads a JSON or YAML data fixture, chosen by extension.
func LoadData(path string) (map[string]any, error) {
	if path == "" {
		return nil, errors.New("testsupport: data path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read data: %w", err)
	}
	out := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &out)
	default:
		err = json.Unmarshal(raw, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("testsupport: decode data %s: %w", path, err)
	}
	return out, nil
}

// MustLoadData is LoadData for tests.
func MustLoadData(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := LoadData(path)
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

// AssertGolden compares got with the golden file at path, refreshing it
// first when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGoldenString(t, path)
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("golden mismatch %s (-want +got):\n%s", path, diff)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
