package prompt

import "github.com/use-agent/aeoaudit/models"

// Anchors are worked point ranges for one category.
type Anchors struct {
	Missing   string
	Basic     string
	Good      string
	Excellent string
}

// Criterion is one rubric category as presented to the oracle.
type Criterion struct {
	Category models.Category
	// Weight is the category's share of the overall score; weights sum to 100.
	Weight  int
	Checks  string
	Anchors Anchors
}

// Rubric is the fixed nine-category scoring rubric, in importance order.
var Rubric = []Criterion{
	{
		Category: models.CategoryStructuredData,
		Weight:   15,
		Checks:   "JSON-LD presence, validity and answer-oriented types (FAQPage, HowTo, Article).",
		Anchors: Anchors{
			Missing:   "0-20: no JSON-LD blocks",
			Basic:     "21-50: only generic types such as WebPage or Organization",
			Good:      "51-80: valid Article or Product markup matching the content",
			Excellent: "81-100: valid FAQPage/HowTo plus Article with author and dates",
		},
	},
	{
		Category: models.CategoryAnswerUpfront,
		Weight:   15,
		Checks:   "A direct answer or summary in the first paragraph, ideally 40-60 words.",
		Anchors: Anchors{
			Missing:   "0-20: no paragraph states an answer",
			Basic:     "21-50: an intro exists but buries the answer or runs past 120 words",
			Good:      "51-80: first paragraph answers the main question in under 80 words",
			Excellent: "81-100: explicit TL;DR or summary block of 40-60 words at the top",
		},
	},
	{
		Category: models.CategoryFreshnessMeta,
		Weight:   10,
		Checks:   "Published and modified timestamps in meta tags and JSON-LD, and how recent they are.",
		Anchors: Anchors{
			Missing:   "0-20: no machine-readable dates",
			Basic:     "21-50: a published date only, or a modified date older than a year",
			Good:      "51-80: modified within the last year",
			Excellent: "81-100: modified within 30 days and mirrored in JSON-LD dateModified",
		},
	},
	{
		Category: models.CategoryEEATSignals,
		Weight:   15,
		Checks:   "Named author, HTTPS, and citations to authoritative outbound sources.",
		Anchors: Anchors{
			Missing:   "0-20: no author, no outbound citations",
			Basic:     "21-50: HTTPS but no visible author",
			Good:      "51-80: named author and some outbound references",
			Excellent: "81-100: author with Person markup plus reference-grade citations",
		},
	},
	{
		Category: models.CategorySpeakableReady,
		Weight:   5,
		Checks:   "SpeakableSpecification markup pointing at short, voice-friendly passages.",
		Anchors: Anchors{
			Missing:   "0-20: no speakable markup",
			Basic:     "21-50: short summary text exists but is not marked speakable",
			Good:      "51-80: speakable markup present",
			Excellent: "81-100: speakable markup targeting a concise summary block",
		},
	},
	{
		Category: models.CategorySnippetConciseness,
		Weight:   10,
		Checks:   "Sentence length, first-paragraph length and heading crispness.",
		Anchors: Anchors{
			Missing:   "0-20: no readable body text",
			Basic:     "21-50: average sentence over 25 words or many long headings",
			Good:      "51-80: average sentence 15-25 words",
			Excellent: "81-100: average sentence under 20 words and no long headings",
		},
	},
	{
		Category: models.CategoryCrawlerAccess,
		Weight:   15,
		Checks:   "Whether answer-engine crawlers may fetch the page per robots.txt.",
		Anchors: Anchors{
			Missing:   "0-20: major AI crawlers blocked outright",
			Basic:     "21-50: some AI crawlers blocked",
			Good:      "51-80: all allowed with path restrictions",
			Excellent: "81-100: all answer-engine crawlers allowed and a sitemap declared",
		},
	},
	{
		Category: models.CategoryMediaAltCaption,
		Weight:   10,
		Checks:   "Descriptive alt text on images and caption tracks on video.",
		Anchors: Anchors{
			Missing:   "0-20: most images lack alt text",
			Basic:     "21-50: alt text present but mostly one or two words",
			Good:      "51-80: most images have descriptive alt text",
			Excellent: "81-100: every image described and every video captioned",
		},
	},
	{
		Category: models.CategoryHreflangLangMeta,
		Weight:   5,
		Checks:   "Root lang attribute, a single canonical link and hreflang alternates.",
		Anchors: Anchors{
			Missing:   "0-20: no lang attribute and no canonical",
			Basic:     "21-50: one of lang or canonical present",
			Good:      "51-80: lang and a single canonical present",
			Excellent: "81-100: lang, canonical and consistent hreflang alternates",
		},
	},
}
