package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/aeoaudit/models"
)

const (
	// minGoodAltWords is the fewest alt-text tokens that count as descriptive.
	minGoodAltWords  = 4
	maxBadAltSamples = 5
	maxSampleSrcLen  = 120
)

// scanMedia counts images (including lazy-loaded ones) with weak alt text
// and videos without a captions track.
func scanMedia(doc *goquery.Document) models.MediaMetrics {
	m := models.MediaMetrics{BadAltSamples: []string{}}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := firstAttr(s, "src", "data-src", "data-lazy-src")
		if src == "" {
			return
		}
		m.ImagesTotal++

		alt, _ := s.Attr("alt")
		alt = normalizeSpace(alt)
		if wordCount(alt) >= minGoodAltWords {
			return
		}
		m.ImagesMissingGoodAlt++
		if len(m.BadAltSamples) < maxBadAltSamples {
			short, cut := truncateRunes(src, maxSampleSrcLen)
			if cut {
				short += "…"
			}
			m.BadAltSamples = append(m.BadAltSamples, fmt.Sprintf("%q %s", alt, short))
		}
	})

	doc.Find("video").Each(func(_ int, s *goquery.Selection) {
		m.VideosTotal++
		hasCaptions := false
		s.Find("track").EachWithBreak(func(_ int, t *goquery.Selection) bool {
			kind, _ := t.Attr("kind")
			kind = strings.ToLower(strings.TrimSpace(kind))
			if kind == "captions" {
				hasCaptions = true
				return false
			}
			return true
		})
		if !hasCaptions {
			m.VideosMissingCaptions++
		}
	})
	return m
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
