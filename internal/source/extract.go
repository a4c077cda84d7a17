package source

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	emailRegex   = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
)

// extractText converts an HTML or HTML-encoded string to plain text: it
// unescapes entities, strips tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// extractEmail returns the first address-shaped token in text, or "" if none.
// No validation beyond syntactic shape.
func extractEmail(text string) string {
	if text == "" {
		return ""
	}
	return emailRegex.FindString(text)
}
