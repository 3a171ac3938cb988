// Package htmltext converts HTML fragments into plain text suitable for
// single-line display and text matching.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// skipTags marks elements whose text content is never readable copy.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"iframe":   true,
}

// Clean strips markup from an HTML fragment, decodes character entities
// and collapses whitespace runs into single spaces. Feed descriptions
// arrive as HTML more often than not; the cleaned string is what search
// and classification operate on.
func Clean(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		// Tolerant parser almost never fails; decode entities at least.
		return collapse(html.UnescapeString(fragment))
	}

	var sb strings.Builder
	appendText(doc, &sb)
	return collapse(sb.String())
}

func appendText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && skipTags[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb)
	}
}

// collapse reduces every whitespace run to one space and trims the edges.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
