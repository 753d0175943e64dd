package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parseTree builds an independent goquery document over its own node tree.
// Each pass owns the tree it parses, so rewrites in one pass never leak into
// the other.
func parseTree(rawHTML string) *goquery.Document {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		// html.Parse only fails on reader errors; an empty tree keeps every
		// downstream selector returning empty selections.
		root = &html.Node{Type: html.DocumentNode}
	}
	return goquery.NewDocumentFromNode(root)
}

// blockElements force a line break around their content when rendering text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// skippedElements never contribute visible text.
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "iframe": true, "head": true,
}

// visibleText renders the text under n with a newline at every block
// boundary, so sentences from different blocks never run together.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				b.WriteByte('\n')
				defer b.WriteByte('\n')
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// selectionText is visibleText over every node of a selection.
func selectionText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		b.WriteString(visibleText(n))
	}
	return b.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// truncateWords keeps at most n whitespace-separated tokens.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
