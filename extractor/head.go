package extractor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/aeoaudit/models"
)

// headMetaKeys are the meta names/properties rendered in the head block, in
// output order, with their labels.
var headMetaKeys = []struct {
	key   string
	label string
}{
	{"description", "description"},
	{"robots", "robots"},
}

var headOGKeys = []string{
	"og:title",
	"og:description",
	"og:type",
	"og:url",
	"og:image",
	"article:published_time",
	"article:modified_time",
}

// headSignals is everything pass 1 reads from <head>-level markup.
type headSignals struct {
	title      string
	meta       map[string]string
	canonicals []string
	hreflangs  []hreflang
	htmlLang   string
}

type hreflang struct {
	lang string
	href string
}

// readHead collects meta tags (first occurrence wins, keys lowercased),
// canonical and hreflang links and the root lang attribute.
func readHead(doc *goquery.Document) headSignals {
	h := headSignals{meta: make(map[string]string)}

	title := doc.Find("head title").First()
	if title.Length() == 0 {
		title = doc.Find("title").First()
	}
	h.title = normalizeSpace(title.Text())

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, ok := s.Attr("property")
		if !ok || strings.TrimSpace(key) == "" {
			key, _ = s.Attr("name")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		content, _ := s.Attr("content")
		content = normalizeSpace(content)
		if key == "" || content == "" {
			return
		}
		if _, seen := h.meta[key]; !seen {
			h.meta[key] = content
		}
	})

	doc.Find("link[rel]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		for _, token := range strings.Fields(strings.ToLower(rel)) {
			switch token {
			case "canonical":
				h.canonicals = append(h.canonicals, href)
			case "alternate":
				if lang, ok := s.Attr("hreflang"); ok && strings.TrimSpace(lang) != "" {
					h.hreflangs = append(h.hreflangs, hreflang{lang: strings.TrimSpace(lang), href: href})
				}
			}
		}
	})

	if lang, ok := doc.Find("html").First().Attr("lang"); ok {
		h.htmlLang = strings.TrimSpace(lang)
	}
	return h
}

// render produces the head block: one "label: value" line per present
// signal in a fixed order.
func (h headSignals) render() string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("title", h.title)
	for _, k := range headMetaKeys {
		add(k.label, h.meta[k.key])
	}
	if len(h.canonicals) > 0 {
		add("canonical", h.canonicals[0])
	}
	for _, k := range headOGKeys {
		add(k, h.meta[k])
	}
	for _, alt := range h.hreflangs {
		add("hreflang", fmt.Sprintf("%s %s", alt.lang, alt.href))
	}
	return strings.Join(lines, "\n")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// freshness reads publication and modification times. og:updated_time
// stands in for a missing article:modified_time. Timestamps in the future
// count as zero days old.
func (h headSignals) freshness(now time.Time) models.FreshnessMetrics {
	m := models.FreshnessMetrics{
		PublishedTime: h.meta["article:published_time"],
		ModifiedTime:  h.meta["article:modified_time"],
	}
	if m.ModifiedTime == "" {
		m.ModifiedTime = h.meta["og:updated_time"]
	}

	if t, ok := parseTimestamp(m.ModifiedTime); ok {
		days := int(math.Floor(now.Sub(t).Hours() / 24))
		if days < 0 {
			days = 0
		}
		m.DaysSinceModified = &days
	}
	return m
}
