package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-stache/pkg/compiler"
	"github.com/goliatone/go-stache/pkg/diag"
)

const defaultExtension = ".mustache"

type violation struct {
	file     string
	pos      diag.Position
	severity diag.Severity
	message  string
}

func main() {
	ext := flag.String("ext", defaultExtension, "template file extension when walking directories")
	strict := flag.Bool("strict", false, "fail on warnings as well as exceptions")
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [paths...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint templates for nesting and tag problems.\n"); err != nil {
			panic(err)
		}
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := collect(paths, *ext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint: %v\n", err)
		os.Exit(1)
	}

	var violations []violation
	for _, file := range files {
		linted, err := lintFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", file, err)
			os.Exit(1)
		}
		violations = append(violations, linted...)
	}

	if failed := report(os.Stderr, violations, *strict); failed {
		os.Exit(1)
	}
}

// collect expands directories into the template files below them.
func collect(paths []string, ext string) ([]string, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(file string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !entry.IsDir() && filepath.Ext(file) == ext {
				files = append(files, file)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// lintFile compiles one template and returns every diagnostic it raised.
// The compile error itself is the last exception and is not repeated.
func lintFile(path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var recorder diag.Recorder
	reporter := diag.NewReporter(diag.WithHook(recorder.Hook()))
	_, compileErr := compiler.Compile(path, string(raw), compiler.WithReporter(reporter))

	var result []violation
	for _, d := range recorder.Diagnostics() {
		result = append(result, violation{
			file:     path,
			pos:      d.Pos,
			severity: d.Severity,
			message:  fmt.Sprintf("%s [%s]", d.Message, d.Code),
		})
	}

	var exception *diag.Diagnostic
	if compileErr != nil && !errors.As(compileErr, &exception) {
		return nil, compileErr
	}
	return result, nil
}

// report prints violations sorted by file and location and reports whether
// any of them fails the run.
func report(w io.Writer, violations []violation, strict bool) bool {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.file != b.file {
			return a.file < b.file
		}
		if a.pos.Line != b.pos.Line {
			return a.pos.Line < b.pos.Line
		}
		return a.pos.Column < b.pos.Column
	})
	failed := false
	for _, v := range violations {
		fmt.Fprintf(w, "%s:%s: %s: %s\n", v.file, formatLocation(v.pos), v.severity, v.message)
		if strict || v.severity == diag.SeverityException {
			failed = true
		}
	}
	return failed
}

func formatLocation(pos diag.Position) string {
	if pos.IsZero() {
		return "-"
	}
	return pos.String()
}
