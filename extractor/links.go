package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// wikiDomains are the reference-grade hosts counted as wiki links.
var wikiDomains = []string{"wikipedia.org", "wikidata.org", "dbpedia.org"}

// normalizeHost lowercases a hostname and strips a leading "www.".
func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func isWikiHost(host string) bool {
	for _, d := range wikiDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

type linkStats struct {
	outbound int
	wiki     int
}

// resolveLink resolves href against base and reports whether it is a
// followable http(s) link. Malformed hrefs resolve to nil.
func resolveLink(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return nil
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return nil
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	return resolved
}

// countLinks tallies outbound and wiki-family anchors without touching the
// tree. Hosts are compared with "www." stripped.
func countLinks(doc *goquery.Document, base *url.URL) linkStats {
	var stats linkStats
	if base == nil {
		return stats
	}
	pageHost := normalizeHost(base.Hostname())

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveLink(base, href)
		if resolved == nil {
			return
		}
		host := normalizeHost(resolved.Hostname())
		if host != pageHost {
			stats.outbound++
		}
		if isWikiHost(host) {
			stats.wiki++
		}
	})
	return stats
}

// inlineLinks replaces each resolvable anchor with "text (absolute-url)" so
// link targets survive text rendering. Anchors that cannot be resolved are
// left alone and render as their text. The selection's tree is mutated; it
// must be owned by the caller.
func inlineLinks(sel *goquery.Selection, base *url.URL) {
	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveLink(base, href)
		if resolved == nil {
			return
		}

		abs := resolved.String()
		text := normalizeSpace(selectionText(s))
		var replacement string
		switch {
		case text == "":
			replacement = "(" + abs + ")"
		case text == abs:
			replacement = text
		default:
			replacement = text + " (" + abs + ")"
		}

		node := s.Get(0)
		if node.Parent == nil {
			return
		}
		node.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: replacement}, node)
		node.Parent.RemoveChild(node)
	})
}
