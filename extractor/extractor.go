// Package extractor turns one HTML page into a bounded FeatureDocument.
//
// Two independent parse trees are built. The first covers the whole
// document and yields head, schema, link, media and heading signals. The
// second holds only the isolated main content and yields the word-bounded
// body text and its sentence statistics. Neither pass mutates the other's
// tree, and no input makes Extract fail: every sub-extraction degrades to
// its zero value.
package extractor

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/aeoaudit/models"
	"github.com/use-agent/aeoaudit/robots"
)

const (
	DefaultMaxWords  = 1200
	DefaultSchemaCap = 1024

	// longHeadingWords is the token count above which a heading is long.
	longHeadingWords = 12
)

// Options bounds and parameterises one extraction.
type Options struct {
	// MaxWords caps the body text. Zero means DefaultMaxWords.
	MaxWords int
	// SchemaCap caps each displayed JSON-LD block, in runes. Zero means
	// DefaultSchemaCap.
	SchemaCap int
	// Now is the reference time for freshness. Zero means time.Now().
	Now time.Time
	// SkipLanguageDetection disables the content language detector.
	SkipLanguageDetection bool
}

func (o Options) withDefaults() Options {
	if o.MaxWords <= 0 {
		o.MaxWords = DefaultMaxWords
	}
	if o.SchemaCap <= 0 {
		o.SchemaCap = DefaultSchemaCap
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Extract builds the feature document for rawHTML fetched from pageURL.
// robotsTxt is the site's robots.txt body, possibly empty.
func Extract(rawHTML, pageURL, robotsTxt string, opts Options) models.FeatureDocument {
	opts = opts.withDefaults()

	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Host == "" {
		base = nil
	}

	// ── 1. Full document ────────────────────────────────────────────
	full := parseTree(rawHTML)

	head := readHead(full)
	sd := scanJSONLD(full, opts.SchemaCap)
	headings, longHeadings := collectHeadings(full)
	links := countLinks(full, base)
	answer := detectAnswer(full)

	author, hasAuthor := detectAuthor(full, head)
	if !hasAuthor && sd.hasAuthor {
		author, hasAuthor = sd.author, true
	}

	speakable := sd.speakableCount + full.Find("speakable").Length()

	// ── 2. Main content ─────────────────────────────────────────────
	contentHTML, method := isolateMainContent(rawHTML, pageURL)
	content := parseTree(contentHTML)
	inlineLinks(content.Selection, base)
	body := boundText(selectionText(content.Selection), opts.MaxWords)

	firstParagraph, ok := firstNonEmpty(content, anyParagraph)
	if !ok {
		firstParagraph, _ = firstNonEmpty(full, anyParagraph)
	}

	slog.Debug("extractor: features extracted",
		"url", pageURL,
		"content_method", method,
		"text_words", body.words,
		"jsonld_blocks", sd.metrics.JSONLDBlocks,
	)

	// ── 3. Assemble ─────────────────────────────────────────────────
	crawler := robots.Summarize(robotsTxt)

	i18n := models.I18nMetrics{
		CanonicalCount: len(head.canonicals),
		HreflangCount:  len(head.hreflangs),
		HTMLLang:       head.htmlLang,
	}
	if !opts.SkipLanguageDetection {
		i18n.DetectedLanguage = detectLanguage(body.text)
		i18n.LangMatchesContent = langMatches(i18n.HTMLLang, i18n.DetectedLanguage)
	}

	return models.FeatureDocument{
		Head:     head.render(),
		Schema:   strings.Join(sd.display, "\n"),
		Headings: strings.Join(headings, "\n"),
		Text:     body.text,
		Metrics: models.Metrics{
			StructuredData: sd.metrics,
			AnswerUpfront:  answer,
			FreshnessMeta:  head.freshness(opts.Now),
			EEATSignals: models.EEATMetrics{
				HasAuthor:     hasAuthor,
				Author:        author,
				HTTPS:         base != nil && base.Scheme == "https",
				OutboundLinks: links.outbound,
				WikiLinks:     links.wiki,
			},
			SnippetConciseness: models.ConcisenessMetrics{
				FirstParagraphWords: wordCount(firstParagraph),
				AvgSentenceLength:   body.avgSentenceLength,
				SentenceCount:       body.sentenceCount,
				TextWords:           body.words,
				HeadingsTotal:       len(headings),
				LongHeadings:        longHeadings,
			},
			SpeakableReady: models.SpeakableMetrics{
				SpeakableCount: speakable,
				HasSpeakable:   speakable > 0,
			},
			MediaAltCaption:  scanMedia(full),
			HreflangLangMeta: i18n,
			CrawlerAccess:    crawler,
		},
		CrawlerAccess: crawler,
	}
}

// collectHeadings returns h1-h3 texts in document order and how many of
// them exceed longHeadingWords tokens.
func collectHeadings(doc *goquery.Document) ([]string, int) {
	headings := []string{}
	long := 0
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(selectionText(s))
		if text == "" {
			return
		}
		headings = append(headings, text)
		if wordCount(text) > longHeadingWords {
			long++
		}
	})
	return headings, long
}
