package ast

import (
	"fmt"
	"strings"
	"unicode"
)

// IndexKey reads the position of the nearest iteration frame.
const IndexKey = "@index"

// KeyPath is a parsed lookup expression:
//
//	name           head lookup, searched up the context chain
//	a.b.c          head lookup followed by plain descents
//	. / this       the current frame value
//	posts:title    resolve from the iteration frame pushed by section "posts"
//	@index         index of the nearest iteration frame
type KeyPath struct {
	Raw      string
	Ancestor string
	Segments []string
	Current  bool
	Index    bool
}

// ParseKeyPath parses raw into a KeyPath.
func ParseKeyPath(raw string) (KeyPath, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return KeyPath{}, fmt.Errorf("ast: empty key path")
	}
	path := KeyPath{Raw: trimmed}

	rest := trimmed
	if idx := strings.IndexByte(trimmed, ':'); idx >= 0 {
		ancestor := strings.TrimSpace(trimmed[:idx])
		if !isIdent(ancestor) {
			return KeyPath{}, fmt.Errorf("ast: invalid back-reference %q in %q", ancestor, trimmed)
		}
		path.Ancestor = ancestor
		rest = strings.TrimSpace(trimmed[idx+1:])
		if rest == "" {
			return KeyPath{}, fmt.Errorf("ast: back-reference %q has no field", trimmed)
		}
	}

	switch rest {
	case ".", "this":
		path.Current = true
		return path, nil
	case IndexKey:
		path.Index = true
		return path, nil
	}

	rest = strings.TrimPrefix(rest, "this.")
	segments := strings.Split(rest, ".")
	for _, segment := range segments {
		if segment == "" || strings.ContainsFunc(segment, unicode.IsSpace) {
			return KeyPath{}, fmt.Errorf("ast: invalid key path %q", trimmed)
		}
	}
	path.Segments = segments
	return path, nil
}

// MustParseKeyPath panics when raw is not a valid key path.
func MustParseKeyPath(raw string) KeyPath {
	path, err := ParseKeyPath(raw)
	if err != nil {
		panic(err)
	}
	return path
}

// Head returns the first segment, or "" for current/index paths.
func (k KeyPath) Head() string {
	if len(k.Segments) == 0 {
		return ""
	}
	return k.Segments[0]
}

func (k KeyPath) String() string {
	return k.Raw
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
