package report

import "github.com/use-agent/aeoaudit/models"

// snippetSet holds ready-to-paste code for one category. Snippets only ever
// contain bracketed placeholder tokens, never page content.
type snippetSet struct {
	jsonld []string
	head   []string
	dom    []string
}

var snippets = map[models.Category]snippetSet{
	models.CategoryStructuredData: {
		jsonld: []string{`<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "FAQPage",
  "mainEntity": [{
    "@type": "Question",
    "name": "[PLACEHOLDER_QUESTION]",
    "acceptedAnswer": {"@type": "Answer", "text": "[PLACEHOLDER_ANSWER]"}
  }]
}
</script>`},
	},
	models.CategoryAnswerUpfront: {
		dom: []string{`<div class="tldr">[PLACEHOLDER_TLDR]</div>`},
	},
	models.CategoryFreshnessMeta: {
		head:   []string{`<meta property="article:modified_time" content="[PLACEHOLDER_ISO8601_DATE]">`},
		jsonld: []string{`"dateModified": "[PLACEHOLDER_ISO8601_DATE]"`},
	},
	models.CategoryEEATSignals: {
		head: []string{`<meta name="author" content="[PLACEHOLDER_AUTHOR_NAME]">`},
		jsonld: []string{`"author": {
  "@type": "Person",
  "name": "[PLACEHOLDER_AUTHOR_NAME]",
  "url": "[PLACEHOLDER_AUTHOR_URL]"
}`},
	},
	models.CategorySpeakableReady: {
		jsonld: []string{`"speakable": {
  "@type": "SpeakableSpecification",
  "cssSelector": ["[PLACEHOLDER_CSS_SELECTOR]"]
}`},
	},
	models.CategorySnippetConciseness: {
		dom: []string{`<p>[PLACEHOLDER_40_WORD_ANSWER]</p>`},
	},
	models.CategoryCrawlerAccess: {
		head: []string{`<meta name="robots" content="[PLACEHOLDER_ROBOTS_DIRECTIVES]">`},
	},
	models.CategoryMediaAltCaption: {
		dom: []string{
			`<img src="[PLACEHOLDER_IMAGE_URL]" alt="[PLACEHOLDER_DESCRIPTIVE_ALT_TEXT]">`,
			`<track kind="captions" src="[PLACEHOLDER_CAPTIONS_VTT_URL]" srclang="[PLACEHOLDER_LANG]">`,
		},
	},
	models.CategoryHreflangLangMeta: {
		head: []string{`<link rel="alternate" hreflang="[PLACEHOLDER_LANG]" href="[PLACEHOLDER_ALTERNATE_URL]">`},
		dom:  []string{`<html lang="[PLACEHOLDER_LANG]">`},
	},
}

// placeholdersFor collects snippets for the selected fixes' categories in
// fix order, without duplicates.
func placeholdersFor(fixes []models.PrioritizedFix) models.CodePlaceholders {
	out := models.CodePlaceholders{JSONLD: []string{}, Head: []string{}, DOM: []string{}}
	seen := make(map[string]struct{})

	add := func(dst *[]string, items []string) {
		for _, s := range items {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			*dst = append(*dst, s)
		}
	}

	for _, f := range fixes {
		set, ok := snippets[f.Category]
		if !ok {
			continue
		}
		add(&out.JSONLD, set.jsonld)
		add(&out.Head, set.head)
		add(&out.DOM, set.dom)
	}
	return out
}
