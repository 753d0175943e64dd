package extractor

import (
	"log/slog"
	"math"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum readability TextContent length (in
// characters) accepted as main content. Shorter results mean the algorithm
// missed the article and the pruning scorer takes over.
const minContentLength = 50

// Isolation methods reported by isolateMainContent.
const (
	methodReadability = "readability"
	methodPruning     = "pruning"
	methodBody        = "body"
)

// isolateMainContent returns the HTML of the page's main content region.
// Readability runs first; when it fails or finds too little text, the
// block scorer prunes boilerplate from <body>; when nothing scores, the
// whole body is used. The returned HTML is re-parsed by the caller into its
// own tree.
func isolateMainContent(rawHTML, pageURL string) (string, string) {
	if content, ok := readabilityContent(rawHTML, pageURL); ok {
		return content, methodReadability
	}
	return pruneContent(rawHTML)
}

func readabilityContent(rawHTML, pageURL string) (string, bool) {
	parsedURL, err := nurl.Parse(pageURL)
	if err != nil {
		slog.Debug("extractor: invalid page URL, skipping readability",
			"url", pageURL, "error", err,
		)
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("extractor: readability failed, using pruning scorer",
			"url", pageURL, "error", err,
		)
		return "", false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("extractor: readability content too short, using pruning scorer",
			"url", pageURL, "length", len(article.TextContent),
		)
		return "", false
	}
	return article.Content, true
}

// pruneScoreThreshold is the minimum weighted score a block must reach to
// be kept as main content.
const pruneScoreThreshold = 0.0

// Signal weights for the pruning scorer.
const (
	wTextDensity = 3.0
	wLinkDensity = -2.0
	wStructure   = 1.5
	wHints       = 1.0
	wTextLength  = 0.5
)

// classHint is a class/id substring and what it adds to a block's score.
// Only the strongest positive and strongest negative hint count.
type classHint struct {
	pattern string
	weight  float64
}

// Answer-surface hints (the regions the answer-upfront cascade looks for)
// outrank generic content hints.
var classHints = []classHint{
	{"tldr", 5}, {"summary", 5}, {"answer", 5}, {"faq", 5},
	{"howto", 4}, {"lead", 4}, {"abstract", 4}, {"takeaway", 4},
	{"content", 3}, {"article", 3}, {"post", 3}, {"entry", 3},
	{"body", 2}, {"main", 2}, {"text", 1},

	{"cookie", -5}, {"consent", -5}, {"popup", -5}, {"modal", -5}, {"newsletter", -5},
	{"sidebar", -4}, {"widget", -4}, {"advert", -4}, {"promo", -4},
	{"nav", -3}, {"menu", -3}, {"footer", -3}, {"header", -3}, {"banner", -3},
	{"breadcrumb", -3}, {"comment", -3}, {"social", -3}, {"share", -3},
	{"related", -2}, {"recommend", -2},
}

// landmarkWeight scores ARIA roles the same way as their HTML5 tags.
var landmarkWeight = map[string]float64{
	"main":          5,
	"article":       5,
	"navigation":    -5,
	"banner":        -5,
	"contentinfo":   -5,
	"complementary": -4,
	"search":        -4,
}

// pruneContent scores each top-level child of <body> and keeps those above
// the threshold. It works on its own throwaway tree.
func pruneContent(rawHTML string) (string, string) {
	doc := parseTree(rawHTML)
	body := doc.Find("body")
	if body.Length() == 0 {
		return rawHTML, methodBody
	}

	var retained []string
	body.Children().Each(func(_ int, el *goquery.Selection) {
		if skippedElements[goquery.NodeName(el)] {
			return
		}
		if scoreBlock(el) > pruneScoreThreshold {
			if h, err := goquery.OuterHtml(el); err == nil {
				retained = append(retained, h)
			}
		}
	})

	if len(retained) == 0 {
		h, err := body.Html()
		if err != nil {
			return rawHTML, methodBody
		}
		return h, methodBody
	}
	return strings.Join(retained, "\n"), methodPruning
}

// scoreBlock weighs text density, link density, structural role, class/id
// hints and log text length into one score.
func scoreBlock(el *goquery.Selection) float64 {
	outer, err := goquery.OuterHtml(el)
	if err != nil {
		return 0
	}

	text := strings.TrimSpace(el.Text())
	textLen := len(text)

	textDensity := 0.0
	if len(outer) > 0 {
		textDensity = float64(textLen) / float64(len(outer))
	}

	linkTextLen := 0
	el.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkTextLen += len(strings.TrimSpace(a.Text()))
	})
	linkDensity := 0.0
	if textLen > 0 {
		linkDensity = float64(linkTextLen) / float64(textLen)
	}

	return textDensity*wTextDensity +
		linkDensity*wLinkDensity +
		structureWeight(el)*wStructure +
		hintWeight(el)*wHints +
		math.Log10(float64(textLen)+1)*wTextLength
}

// structureWeight scores the block's tag, its ARIA role and schema.org
// microdata. An explicit role overrides the tag.
func structureWeight(el *goquery.Selection) float64 {
	if role, ok := el.Attr("role"); ok {
		if w, known := landmarkWeight[strings.ToLower(strings.TrimSpace(role))]; known {
			return w
		}
	}
	if prop, _ := el.Attr("itemprop"); prop == "articleBody" || prop == "mainEntity" {
		return 5
	}
	if el.Find("[itemprop=articleBody], [itemprop=acceptedAnswer]").Length() > 0 {
		return 3
	}

	switch goquery.NodeName(el) {
	case "article", "main":
		return 5
	case "section":
		return 3
	case "nav", "footer", "header", "form":
		return -5
	case "aside":
		return -4
	default:
		return 0
	}
}

func hintWeight(el *goquery.Selection) float64 {
	class, _ := el.Attr("class")
	id, _ := el.Attr("id")
	combined := strings.ToLower(class + " " + id)

	var best, worst float64
	for _, h := range classHints {
		if !strings.Contains(combined, h.pattern) {
			continue
		}
		if h.weight > best {
			best = h.weight
		}
		if h.weight < worst {
			worst = h.weight
		}
	}
	return best + worst
}
