package prompt

import (
	"fmt"
	"strings"

	"github.com/use-agent/aeoaudit/models"
)

// ScoringExamples returns one worked scoring hint per rubric category, tied
// to the metric values observed on this page.
func ScoringExamples(m models.Metrics) []string {
	return []string{
		structuredDataExample(m.StructuredData),
		answerUpfrontExample(m.AnswerUpfront),
		freshnessExample(m.FreshnessMeta),
		eeatExample(m.EEATSignals),
		speakableExample(m.SpeakableReady),
		concisenessExample(m.SnippetConciseness),
		crawlerExample(m.CrawlerAccess),
		mediaExample(m.MediaAltCaption),
		i18nExample(m.HreflangLangMeta),
	}
}

func hint(c models.Category, observed, guidance string) string {
	return fmt.Sprintf("- %s: %s → %s", c, observed, guidance)
}

func structuredDataExample(sd models.StructuredDataMetrics) string {
	c := models.CategoryStructuredData
	switch {
	case sd.JSONLDBlocks == 0:
		return hint(c, "0 structured-data blocks", "~15 points")
	case sd.ValidBlocks == 0:
		return hint(c, fmt.Sprintf("%d blocks, none valid JSON", sd.JSONLDBlocks), "20-35 points")
	case sd.HasFAQ || sd.HasHowTo:
		return hint(c, fmt.Sprintf("%d valid blocks including FAQPage/HowTo", sd.ValidBlocks), "80-95 points")
	default:
		types := noneLabel
		if len(sd.SchemaTypes) > 0 {
			types = strings.Join(sd.SchemaTypes, ", ")
		}
		return hint(c, fmt.Sprintf("%d valid blocks (types: %s)", sd.ValidBlocks, types), "60-80 points")
	}
}

func answerUpfrontExample(a models.AnswerUpfrontMetrics) string {
	c := models.CategoryAnswerUpfront
	switch {
	case a.Source == models.AnswerSourceNone:
		return hint(c, "no answer paragraph found", "10-20 points")
	case a.Source == models.AnswerSourceSelector && a.WordCount >= 40 && a.WordCount <= 60:
		return hint(c, fmt.Sprintf("summary block %s with %d words", a.Selector, a.WordCount), "85-100 points")
	case a.Source == models.AnswerSourceSelector:
		return hint(c, fmt.Sprintf("summary block %s with %d words", a.Selector, a.WordCount), "65-80 points")
	case a.WordCount > 120:
		return hint(c, fmt.Sprintf("first paragraph (%s) runs %d words", a.Source, a.WordCount), "25-45 points")
	default:
		return hint(c, fmt.Sprintf("first paragraph (%s) has %d words", a.Source, a.WordCount), "45-70 points depending on directness")
	}
}

func freshnessExample(f models.FreshnessMetrics) string {
	c := models.CategoryFreshnessMeta
	if f.DaysSinceModified == nil {
		if f.PublishedTime != "" {
			return hint(c, "published date only, no modified date", "30-45 points")
		}
		return hint(c, "no machine-readable dates", "~10 points")
	}
	days := *f.DaysSinceModified
	switch {
	case days <= 30:
		return hint(c, fmt.Sprintf("modified %d days ago", days), "85-100 points")
	case days <= 365:
		return hint(c, fmt.Sprintf("modified %d days ago", days), "55-75 points")
	default:
		return hint(c, fmt.Sprintf("modified %d days ago", days), "20-40 points")
	}
}

func eeatExample(e models.EEATMetrics) string {
	c := models.CategoryEEATSignals
	observed := fmt.Sprintf("author=%t, https=%t, %d outbound links, %d wiki links",
		e.HasAuthor, e.HTTPS, e.OutboundLinks, e.WikiLinks)
	switch {
	case e.HasAuthor && e.HTTPS && e.WikiLinks > 0:
		return hint(c, observed, "75-90 points")
	case e.HasAuthor && e.HTTPS:
		return hint(c, observed, "55-75 points")
	case e.HTTPS:
		return hint(c, observed, "25-45 points")
	default:
		return hint(c, observed, "0-20 points")
	}
}

func speakableExample(s models.SpeakableMetrics) string {
	c := models.CategorySpeakableReady
	if !s.HasSpeakable {
		return hint(c, "0 speakable markers", "0-15 points")
	}
	return hint(c, fmt.Sprintf("%d speakable markers", s.SpeakableCount), "70-90 points")
}

func concisenessExample(s models.ConcisenessMetrics) string {
	c := models.CategorySnippetConciseness
	observed := fmt.Sprintf("average sentence %.2f words, first paragraph %d words, %d of %d headings long",
		s.AvgSentenceLength, s.FirstParagraphWords, s.LongHeadings, s.HeadingsTotal)
	switch {
	case s.SentenceCount == 0:
		return hint(c, "no body sentences extracted", "0-15 points")
	case s.AvgSentenceLength < 20 && s.LongHeadings == 0:
		return hint(c, observed, "80-95 points")
	case s.AvgSentenceLength <= 25:
		return hint(c, observed, "55-75 points")
	default:
		return hint(c, observed, "25-45 points")
	}
}

func crawlerExample(ca models.CrawlerAccess) string {
	c := models.CategoryCrawlerAccess
	blocked := ca.Blocked()
	partial := 0
	for _, b := range ca.Bots {
		if b.Status == models.AccessPartial {
			partial++
		}
	}
	switch {
	case len(blocked) > 0:
		return hint(c, "blocked: "+strings.Join(blocked, ", "), fmt.Sprintf("about %d points", max(0, 60-10*len(blocked))))
	case !ca.RobotsFound:
		return hint(c, "no robots.txt rules, every crawler allowed", "~85 points")
	case partial > 0:
		return hint(c, fmt.Sprintf("%d crawlers with path restrictions", partial), "70-85 points")
	case len(ca.Sitemaps) > 0:
		return hint(c, "all crawlers allowed and sitemap declared", "95-100 points")
	default:
		return hint(c, "all crawlers allowed", "85-95 points")
	}
}

func mediaExample(m models.MediaMetrics) string {
	c := models.CategoryMediaAltCaption
	if m.ImagesTotal == 0 && m.VideosTotal == 0 {
		return hint(c, "no images or videos", "~70 points, nothing to describe")
	}
	observed := fmt.Sprintf("%d of %d images lack good alt, %d of %d videos lack captions",
		m.ImagesMissingGoodAlt, m.ImagesTotal, m.VideosMissingCaptions, m.VideosTotal)
	missing := m.ImagesMissingGoodAlt + m.VideosMissingCaptions
	total := m.ImagesTotal + m.VideosTotal
	switch {
	case missing == 0:
		return hint(c, observed, "90-100 points")
	case missing*2 <= total:
		return hint(c, observed, "55-75 points")
	default:
		return hint(c, observed, "15-40 points")
	}
}

func i18nExample(i models.I18nMetrics) string {
	c := models.CategoryHreflangLangMeta
	lang := i.HTMLLang
	if lang == "" {
		lang = "missing"
	}
	observed := fmt.Sprintf("lang=%s, %d canonical, %d hreflang", lang, i.CanonicalCount, i.HreflangCount)
	if i.LangMatchesContent != nil && !*i.LangMatchesContent {
		observed += fmt.Sprintf(", content detected as %s", i.DetectedLanguage)
		return hint(c, observed, "20-40 points")
	}
	switch {
	case i.HTMLLang == "" && i.CanonicalCount == 0:
		return hint(c, observed, "0-20 points")
	case i.HTMLLang == "" || i.CanonicalCount != 1:
		return hint(c, observed, "30-50 points")
	case i.HreflangCount > 0:
		return hint(c, observed, "85-100 points")
	default:
		return hint(c, observed, "65-80 points")
	}
}
