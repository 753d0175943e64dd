// Package prompt assembles the system and user prompts sent to the scoring
// oracle. Both builders are pure: identical inputs give identical prompts.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/aeoaudit/models"
)

// MaxSnippetChars bounds the best-practice guidance embedded in the system
// prompt, in runes.
const MaxSnippetChars = 4000

const noneLabel = "(none)"

// BuildSystemPrompt renders the rubric, the output contract and the
// supplied best-practice guidance.
func BuildSystemPrompt(bestPracticeSnippet string) string {
	var b strings.Builder

	b.WriteString(`You are an answer-engine optimization (AEO) auditor. You score a single web page on how well answer engines and AI assistants can find, trust, and quote it.

SCORING RUBRIC
Score every category from 0 to 100. The overall "score" is the weighted average using the weights below (they sum to 100).
`)
	for _, c := range Rubric {
		fmt.Fprintf(&b, "\n%s (weight %d): %s\n", c.Category, c.Weight, c.Checks)
		fmt.Fprintf(&b, "  - missing: %s\n", c.Anchors.Missing)
		fmt.Fprintf(&b, "  - basic: %s\n", c.Anchors.Basic)
		fmt.Fprintf(&b, "  - good: %s\n", c.Anchors.Good)
		fmt.Fprintf(&b, "  - excellent: %s\n", c.Anchors.Excellent)
	}

	fmt.Fprintf(&b, `
FIX RULES
- Return at most %d fixes, sorted by impact from high to low.
- "impact" must be exactly one of: high, med, low.
- "effort" must be exactly one of: low, medium, high.
- "category" must be one of the nine category names above.
- "sentiment" must be exactly one of: positive, neutral, negative.
- Use square-bracket placeholders such as [AUTHOR_NAME] instead of inventing facts about the page.

OUTPUT
Return ONLY one JSON object, no markdown fences or commentary, with exactly this shape:
%s
`, models.MaxOracleFixes, outputShape())

	b.WriteString("\nBEST PRACTICES\n")
	snippet := strings.TrimSpace(bestPracticeSnippet)
	if snippet == "" {
		b.WriteString(noneLabel)
	} else {
		if cut, truncated := truncateRunes(snippet, MaxSnippetChars); truncated {
			snippet = cut + " …"
		}
		b.WriteString(snippet)
	}
	b.WriteByte('\n')
	return b.String()
}

// outputShape is the JSON example shown to the oracle. Category keys are
// listed in rubric order.
func outputShape() string {
	var keys []string
	for _, c := range Rubric {
		keys = append(keys, fmt.Sprintf("    %q: 0", string(c.Category)))
	}
	return `{
  "score": 0,
  "category_scores": {
` + strings.Join(keys, ",\n") + `
  },
  "fixes": [
    {
      "problem": "what is wrong",
      "example": "evidence from the page",
      "fix": "what to change",
      "impact": "high",
      "category": "structured_data",
      "effort": "low",
      "validation": ["how to verify the fix"]
    }
  ],
  "keywords": ["..."],
  "competitorAnalysis": "...",
  "targetAudience": "...",
  "contentGaps": ["..."],
  "improvements": ["..."],
  "feedback": "...",
  "sentiment": "neutral"
}`
}

// BuildUserPrompt serialises the feature document into labeled sections.
func BuildUserPrompt(doc models.FeatureDocument) string {
	var b strings.Builder

	section(&b, "HEAD", doc.Head)
	section(&b, "SCHEMA", doc.Schema)
	section(&b, "HEADINGS", doc.Headings)
	section(&b, "TEXT", doc.Text)

	metrics, err := json.MarshalIndent(doc.Metrics, "", "  ")
	if err != nil {
		// Metrics holds only plain values; Marshal cannot fail on it.
		metrics = []byte("{}")
	}
	section(&b, "METRICS", string(metrics))
	section(&b, "CRAWLER ACCESS", renderCrawlerAccess(doc.CrawlerAccess))
	section(&b, "SCORING EXAMPLES FOR THIS PAGE", strings.Join(ScoringExamples(doc.Metrics), "\n"))

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func section(b *strings.Builder, label, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		body = noneLabel
	}
	b.WriteString(label)
	b.WriteString(":\n")
	b.WriteString(body)
	b.WriteString("\n\n")
}

func renderCrawlerAccess(ca models.CrawlerAccess) string {
	var lines []string
	if ca.RobotsFound {
		lines = append(lines, "robots.txt: found")
	} else {
		lines = append(lines, "robots.txt: not found or empty (all crawlers allowed)")
	}
	for _, bot := range ca.Bots {
		line := fmt.Sprintf("- %s: %s", bot.Bot, bot.Status)
		if bot.MatchedGroup != "" {
			line += fmt.Sprintf(" (group %q)", bot.MatchedGroup)
		}
		if len(bot.DisallowedPaths) > 0 {
			line += " disallow " + strings.Join(bot.DisallowedPaths, ", ")
		}
		lines = append(lines, line)
	}
	for _, s := range ca.Sitemaps {
		lines = append(lines, "sitemap: "+s)
	}
	return strings.Join(lines, "\n")
}

// EstimateTokens approximates the token count of s at three runes per token.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + 2) / 3
}

func truncateRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
