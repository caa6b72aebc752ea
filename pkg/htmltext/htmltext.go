// Package htmltext extracts visible text from HTML fragments and
// normalizes page text for comparison. It backs the outcome reader's
// fallback path when an element reports no inner text but does carry
// markup.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Normalize collapses all runs of whitespace (including newlines and
// tabs) to single spaces and trims the result. The outcome invariant is
// that a returned message is non-empty after this normalization.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Visible parses an HTML fragment and returns its visible text content,
// normalized. Script, style, noscript, and template elements are
// skipped, as are comments. Parse failures yield the normalized input
// so callers always get a best-effort string.
func Visible(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return Normalize(fragment)
	}

	var builder strings.Builder
	collectText(doc, &builder)
	return Normalize(builder.String())
}

// collectText walks the node tree appending text nodes, skipping
// non-rendered subtrees.
func collectText(n *html.Node, builder *strings.Builder) {
	if n.Type == html.CommentNode {
		return
	}
	if n.Type == html.ElementNode && isHiddenElement(strings.ToLower(n.Data)) {
		return
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			builder.WriteString(text)
			builder.WriteString(" ")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, builder)
	}
}

// isHiddenElement returns true for elements whose content is never rendered.
func isHiddenElement(tagName string) bool {
	hidden := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"template": true,
		"head":     true,
	}
	return hidden[tagName]
}
