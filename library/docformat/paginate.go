package docformat

import (
	"fmt"
	"strings"
)

// MsgNoMoreContent is shown when start_index points past the end of the page.
const MsgNoMoreContent = "<e>No more content available.</e>"

// Window describes which part of a page a formatted result covers.
type Window struct {
	// Total is the page length in characters.
	Total int
	// Start is the first character returned.
	Start int
	// End is one past the last character returned.
	End int
}

// Truncated reports whether characters remain after the window.
func (w Window) Truncated() bool {
	return w.End < w.Total
}

// Header is the fixed prefix of every documentation result.
func Header(url string) string {
	return fmt.Sprintf("AWS Documentation from %s:\n\n", url)
}

// FormatResult returns the slice content[startIndex:startIndex+maxLength] under
// the source header. Positions count characters, not bytes. When more content
// follows, a notice names the start_index for the next call.
func FormatResult(url, content string, startIndex, maxLength int) string {
	out, _ := Paginate(url, content, startIndex, maxLength)
	return out
}

// Paginate is FormatResult that also reports the window it produced.
func Paginate(url, content string, startIndex, maxLength int) (string, Window) {
	runes := []rune(content)
	w := Window{Total: len(runes)}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= w.Total || maxLength <= 0 {
		w.Start, w.End = startIndex, startIndex
		return Header(url) + MsgNoMoreContent, w
	}

	w.Start = startIndex
	w.End = w.Total
	if maxLength < w.Total-startIndex {
		w.End = startIndex + maxLength
	}

	var sb strings.Builder
	sb.WriteString(Header(url))
	sb.WriteString(string(runes[w.Start:w.End]))
	if w.Truncated() {
		fmt.Fprintf(&sb,
			"\n\n<e>Content truncated. Call the read_documentation tool with start_index=%d to get more content.</e>",
			w.End)
	}

	return sb.String(), w
}

// FormatUnbounded formats the whole content without pagination.
func FormatUnbounded(url, content string) string {
	if content == "" {
		return Header(url) + MsgNoMoreContent
	}
	return Header(url) + content
}
