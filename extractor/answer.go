package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/aeoaudit/models"
)

// maxAnswerWords bounds the answer text carried in metrics.
const maxAnswerWords = 120

// answerSelectors are the explicit summary containers, tried in order.
var answerSelectors = []string{
	".tldr",
	".summary",
	".lead",
	".abstract",
	"#tldr",
	"#summary",
}

type compiledSelector struct {
	raw     string
	matcher goquery.Matcher
}

var (
	answerMatchers   = compileSelectors(answerSelectors)
	articleParagraph = cascadia.MustCompile("article p, article li, main p, main li")
	anyParagraph     = cascadia.MustCompile("p, li")
	authorMatcher    = cascadia.MustCompile(`[rel~=author], .author, .byline, [itemprop=author]`)
)

func compileSelectors(raw []string) []compiledSelector {
	out := make([]compiledSelector, 0, len(raw))
	for _, r := range raw {
		out = append(out, compiledSelector{raw: r, matcher: cascadia.MustCompile(r)})
	}
	return out
}

// firstNonEmpty returns the normalised text of the first match with text.
func firstNonEmpty(doc *goquery.Document, m goquery.Matcher) (string, bool) {
	var text string
	doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = normalizeSpace(selectionText(s))
		return text == ""
	})
	return text, text != ""
}

// detectAnswer runs the answer-upfront cascade: explicit summary selectors,
// then the first paragraph of the article/main region, then the first
// paragraph anywhere.
func detectAnswer(doc *goquery.Document) models.AnswerUpfrontMetrics {
	build := func(text, source, selector string) models.AnswerUpfrontMetrics {
		return models.AnswerUpfrontMetrics{
			Text:      truncateWords(text, maxAnswerWords),
			WordCount: wordCount(text),
			Source:    source,
			Selector:  selector,
		}
	}

	for _, sel := range answerMatchers {
		if text, ok := firstNonEmpty(doc, sel.matcher); ok {
			return build(text, models.AnswerSourceSelector, sel.raw)
		}
	}
	if text, ok := firstNonEmpty(doc, articleParagraph); ok {
		return build(text, models.AnswerSourceArticle, "")
	}
	if text, ok := firstNonEmpty(doc, anyParagraph); ok {
		return build(text, models.AnswerSourceDocument, "")
	}
	return models.AnswerUpfrontMetrics{Source: models.AnswerSourceNone}
}

// detectAuthor checks author markup in the DOM. JSON-LD authors are merged
// in by the caller.
func detectAuthor(doc *goquery.Document, h headSignals) (string, bool) {
	if name := h.meta["author"]; name != "" {
		return name, true
	}
	if text, ok := firstNonEmpty(doc, authorMatcher); ok {
		return truncateWords(text, 12), true
	}
	return "", false
}
