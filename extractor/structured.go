package extractor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/aeoaudit/models"
)

// truncationMarker is appended to JSON-LD blocks cut at the schema cap.
const truncationMarker = " …[truncated]"

// structuredData is what the JSON-LD scan yields.
type structuredData struct {
	display        []string
	metrics        models.StructuredDataMetrics
	speakableCount int
	author         string
	hasAuthor      bool
}

// scanJSONLD reads every application/ld+json script. Each non-empty block is
// whitespace-collapsed and kept for display, truncated to schemaCap runes.
// Type extraction always parses the full collapsed text, so truncation
// never hides a type.
func scanJSONLD(doc *goquery.Document, schemaCap int) structuredData {
	var sd structuredData
	types := make(map[string]struct{})

	doc.Find("script[type]").Each(func(_ int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		if strings.ToLower(strings.TrimSpace(typ)) != "application/ld+json" {
			return
		}
		block := normalizeSpace(s.Text())
		if block == "" {
			return
		}
		sd.metrics.JSONLDBlocks++

		shown, cut := truncateRunes(block, schemaCap)
		if cut {
			shown += truncationMarker
		}
		sd.display = append(sd.display, shown)

		var v any
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			return
		}
		sd.metrics.ValidBlocks++
		sd.walk(v, types)
	})

	sd.metrics.SchemaTypes = make([]string, 0, len(types))
	for t := range types {
		sd.metrics.SchemaTypes = append(sd.metrics.SchemaTypes, t)
	}
	sort.Strings(sd.metrics.SchemaTypes)

	for _, t := range sd.metrics.SchemaTypes {
		switch t {
		case "FAQPage":
			sd.metrics.HasFAQ = true
		case "HowTo":
			sd.metrics.HasHowTo = true
		case "Article", "NewsArticle", "BlogPosting", "TechArticle", "ScholarlyArticle":
			sd.metrics.HasArticle = true
		}
	}
	return sd
}

// walk visits every object in a decoded JSON-LD value, including @graph
// members and nested entities.
func (sd *structuredData) walk(v any, types map[string]struct{}) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			sd.walk(item, types)
		}
	case map[string]any:
		nodeTypes := jsonLDTypes(node["@type"])
		for _, t := range nodeTypes {
			types[t] = struct{}{}
			if t == "SpeakableSpecification" {
				sd.speakableCount++
			}
			if t == "Person" && !sd.hasAuthor {
				if name, ok := node["name"].(string); ok && strings.TrimSpace(name) != "" {
					sd.hasAuthor = true
					sd.author = strings.TrimSpace(name)
				}
			}
		}
		if author, ok := node["author"]; ok && !sd.hasAuthor {
			if name, present := authorName(author); present {
				sd.hasAuthor = true
				sd.author = name
			}
		}

		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "@type" {
				continue
			}
			sd.walk(node[k], types)
		}
	}
}

// jsonLDTypes accepts @type as a string or an array of strings.
func jsonLDTypes(v any) []string {
	switch t := v.(type) {
	case string:
		if t = strings.TrimSpace(t); t != "" {
			return []string{t}
		}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// authorName reports whether an author value is present and, when it
// carries one, the first name found.
func authorName(v any) (string, bool) {
	switch a := v.(type) {
	case string:
		a = strings.TrimSpace(a)
		return a, a != ""
	case map[string]any:
		if name, ok := a["name"].(string); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name), true
		}
		return "", len(a) > 0
	case []any:
		for _, item := range a {
			if name, ok := authorName(item); ok {
				return name, true
			}
		}
	}
	return "", false
}
