package models

// FeatureDocument is the bounded audit document produced by the extractor
// from a single page. It is the only page-derived input the prompt assembler
// sees, so every field here is size-bounded.
type FeatureDocument struct {
	// Head is the ordered "label: value" block of head-level signals.
	Head string `json:"head"`

	// Schema holds the JSON-LD blocks, one per line, each cut to SchemaCap.
	Schema string `json:"schema"`

	// Headings holds the h1/h2/h3 texts in document order, one per line.
	Headings string `json:"headings"`

	// Text is the cleaned main-content text, bounded to MaxWords on a
	// sentence boundary.
	Text string `json:"text"`

	Metrics Metrics `json:"metrics"`

	CrawlerAccess CrawlerAccess `json:"crawler_access"`
}

// Metrics groups the independently computed metric families. The JSON keys
// match the rubric category names so the oracle can line them up.
type Metrics struct {
	StructuredData     StructuredDataMetrics `json:"structured_data"`
	AnswerUpfront      AnswerUpfrontMetrics  `json:"answer_upfront"`
	FreshnessMeta      FreshnessMetrics      `json:"freshness_meta"`
	EEATSignals        EEATMetrics           `json:"e_e_a_t_signals"`
	SnippetConciseness ConcisenessMetrics    `json:"snippet_conciseness"`
	SpeakableReady     SpeakableMetrics      `json:"speakable_ready"`
	MediaAltCaption    MediaMetrics          `json:"media_alt_caption"`
	HreflangLangMeta   I18nMetrics           `json:"hreflang_lang_meta"`
	CrawlerAccess      CrawlerAccess         `json:"crawler_access"`
}

type StructuredDataMetrics struct {
	JSONLDBlocks int      `json:"jsonLdBlocks"`
	ValidBlocks  int      `json:"valid_blocks"`
	SchemaTypes  []string `json:"schema_types"`
	HasFAQ       bool     `json:"has_faq"`
	HasHowTo     bool     `json:"has_howto"`
	HasArticle   bool     `json:"has_article"`
}

// Answer-upfront sources, in cascade order.
const (
	AnswerSourceSelector = "selector"
	AnswerSourceArticle  = "article"
	AnswerSourceDocument = "document"
	AnswerSourceNone     = "none"
)

type AnswerUpfrontMetrics struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
	Source    string `json:"source"`
	Selector  string `json:"selector,omitempty"`
}

type FreshnessMetrics struct {
	PublishedTime string `json:"published_time,omitempty"`
	ModifiedTime  string `json:"modified_time,omitempty"`

	// DaysSinceModified is the only field that depends on the current time.
	// Nil when no parseable modified timestamp exists.
	DaysSinceModified *int `json:"days_since_modified"`
}

type EEATMetrics struct {
	HasAuthor     bool   `json:"has_author"`
	Author        string `json:"author,omitempty"`
	HTTPS         bool   `json:"https"`
	OutboundLinks int    `json:"outbound_links"`
	WikiLinks     int    `json:"wiki_links"`
}

type ConcisenessMetrics struct {
	FirstParagraphWords int     `json:"first_paragraph_words"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	SentenceCount       int     `json:"sentence_count"`
	TextWords           int     `json:"text_words"`
	HeadingsTotal       int     `json:"headings_total"`
	LongHeadings        int     `json:"long_headings"`
}

type SpeakableMetrics struct {
	SpeakableCount int  `json:"speakable_count"`
	HasSpeakable   bool `json:"has_speakable"`
}

type MediaMetrics struct {
	ImagesTotal           int      `json:"images_total"`
	ImagesMissingGoodAlt  int      `json:"images_missing_good_alt"`
	BadAltSamples         []string `json:"bad_alt_samples"`
	VideosTotal           int      `json:"videos_total"`
	VideosMissingCaptions int      `json:"videos_missing_captions"`
}

type I18nMetrics struct {
	CanonicalCount int    `json:"canonical_count"`
	HreflangCount  int    `json:"hreflang_count"`
	HTMLLang       string `json:"html_lang"`

	// DetectedLanguage is the ISO 639-1 code detected from the body text,
	// empty when detection is inconclusive.
	DetectedLanguage   string `json:"detected_language,omitempty"`
	LangMatchesContent *bool  `json:"lang_matches_content,omitempty"`
}

// Crawler access statuses.
const (
	AccessAllowed = "allowed"
	AccessPartial = "partial"
	AccessBlocked = "blocked"
)

// CrawlerAccess summarises robots.txt for the bots that matter to answer
// engines.
type CrawlerAccess struct {
	RobotsFound bool        `json:"robots_found"`
	Bots        []BotAccess `json:"bots"`
	Sitemaps    []string    `json:"sitemaps,omitempty"`
}

type BotAccess struct {
	Bot             string   `json:"bot"`
	Status          string   `json:"status"`
	MatchedGroup    string   `json:"matched_group,omitempty"`
	DisallowedPaths []string `json:"disallowed_paths,omitempty"`
}

// Blocked returns the names of bots whose status is AccessBlocked.
func (c CrawlerAccess) Blocked() []string {
	var out []string
	for _, b := range c.Bots {
		if b.Status == AccessBlocked {
			out = append(out, b.Bot)
		}
	}
	return out
}
