package output

import "strings"

var escaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Escape replaces the characters that are significant in markup text and
// double-quoted attribute values.
func Escape(s string) string {
	return escaper.Replace(s)
}
