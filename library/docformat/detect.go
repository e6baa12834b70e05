// Package docformat converts fetched documentation pages into paginated markdown text.
package docformat

import (
	"strings"
	"unicode/utf8"
)

// sniffChars is how many leading characters of the body are inspected for markup.
const sniffChars = 100

// IsHTML reports whether a page should go through HTML extraction.
//
// A missing content type is treated as HTML, documentation hosts always send one
// for plain text.
func IsHTML(pageRaw, contentType string) bool {
	if strings.Contains(leadingChars(pageRaw, sniffChars), "<html") {
		return true
	}
	if strings.Contains(contentType, "text/html") {
		return true
	}
	return contentType == ""
}

// leadingChars returns at most n runes from the start of s.
func leadingChars(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
