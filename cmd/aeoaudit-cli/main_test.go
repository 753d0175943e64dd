package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
)

const testPage = `<!doctype html>
<html lang="en"><head>
<title>How to brew pour-over coffee</title>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"HowTo","name":"Pour-over"}</script>
</head><body><main>
<h1>How to brew pour-over coffee</h1>
<p>Use a 1:16 ratio of coffee to water. Pour in slow circles. Let it drain for three minutes before serving.</p>
</main></body></html>`

const testAnalysis = `{
  "score": 62,
  "category_scores": {
    "structured_data": 15, "answer_upfront": 70, "freshness_meta": 90,
    "e_e_a_t_signals": 55, "speakable_ready": 5, "snippet_conciseness": 80,
    "crawler_access": 100, "media_alt_caption": 40, "hreflang_lang_meta": 65
  },
  "fixes": [{"problem":"No FAQ","example":"0 blocks","fix":"Add FAQPage","impact":"high","category":"structured_data","effort":"low","validation":["passes"]}],
  "keywords": ["coffee"],
  "competitorAnalysis": "",
  "targetAudience": "Home baristas",
  "contentGaps": [],
  "improvements": [],
  "feedback": "",
  "sentiment": "neutral"
}`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"aeoaudit-cli"}, args...))
	require.NoError(t, err)
	return out.String()
}

func TestFeaturesCommand_JSON(t *testing.T) {
	htmlPath := writeTemp(t, "page.html", testPage)
	robotsPath := writeTemp(t, "robots.txt", "User-agent: GPTBot\nDisallow: /\n")

	out := run(t, "features",
		"--url", "https://example.com/coffee",
		"--html", htmlPath,
		"--robots", robotsPath,
		"--skip-language",
		"--format", "json")

	var doc models.FeatureDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.Metrics.StructuredData.JSONLDBlocks)
	assert.Contains(t, doc.Metrics.StructuredData.SchemaTypes, "HowTo")
	assert.Contains(t, doc.Headings, "How to brew pour-over coffee")
	assert.Contains(t, doc.CrawlerAccess.Blocked(), "GPTBot")
}

func TestPromptsCommand_YAML(t *testing.T) {
	htmlPath := writeTemp(t, "page.html", testPage)

	out := run(t, "prompts",
		"--url", "https://example.com/coffee",
		"--html", htmlPath,
		"--skip-language",
		"--format", "yaml")

	assert.Contains(t, out, "system:")
	assert.Contains(t, out, "user:")
	assert.Contains(t, out, "estimated_tokens:")
}

func TestTransformCommand(t *testing.T) {
	htmlPath := writeTemp(t, "page.html", testPage)
	analysisPath := writeTemp(t, "analysis.json", "```json\n"+testAnalysis+"\n```")

	out := run(t, "transform",
		"--url", "https://example.com/coffee",
		"--html", htmlPath,
		"--analysis", analysisPath,
		"--skip-language",
		"--format", "json")

	var rep models.TransformedReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "https://example.com/coffee", rep.Meta.URL)
	assert.Equal(t, []string{"coffee"}, rep.Keywords)
	require.Len(t, rep.Prioritized.Fixes, 1)
	assert.Equal(t, models.CategoryStructuredData, rep.Prioritized.Fixes[0].Category)
	assert.Equal(t, 1, rep.Scores.Metrics.StructuredData.JSONLDBlocks)
}

func TestTransformCommand_ParseError(t *testing.T) {
	htmlPath := writeTemp(t, "page.html", testPage)
	analysisPath := writeTemp(t, "analysis.txt", "I cannot score this page.")

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"aeoaudit-cli", "transform",
		"--url", "https://example.com/coffee",
		"--html", htmlPath,
		"--analysis", analysisPath,
	})

	var ae *models.AuditError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, models.ErrCodeOracleParse, ae.Code)
}

func TestRender_UnknownFormat(t *testing.T) {
	err := render(&bytes.Buffer{}, "xml", struct{}{}, func(io.Writer) {})
	assert.Error(t, err)
}

func TestScoreColor(t *testing.T) {
	assert.Same(t, good, scoreColor(80))
	assert.Same(t, warn, scoreColor(50))
	assert.Same(t, bad, scoreColor(49.9))
}

func TestWriteReportText(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	r := &models.TransformedReport{
		Meta: models.AnalysisMeta{
			URL:        "https://example.com",
			Violations: []string{`enum violation: fixes[0].impact="huge"`},
		},
		Scores: models.ReportScores{
			Overall:    64,
			Categories: map[models.Category]float64{models.CategoryStructuredData: 20},
		},
		Prioritized: models.Prioritized{
			QuickWins: []string{"Add FAQPage JSON-LD."},
			Fixes: []models.PrioritizedFix{{
				FixItem:  models.FixItem{Impact: models.ImpactHigh, Effort: models.EffortLow},
				Title:    "Add FAQPage JSON-LD.",
				Priority: 0.97,
				Why:      "Structured data scored 20/100.",
			}},
		},
	}

	var buf bytes.Buffer
	writeReportText(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "AEO audit: https://example.com")
	assert.Contains(t, out, "Overall: 64/100")
	assert.Contains(t, out, "1. Add FAQPage JSON-LD. [high/low, priority 0.97]")
	assert.Contains(t, out, "   Structured data scored 20/100.")
	assert.Contains(t, out, "Quick wins")
	assert.Contains(t, out, "Oracle contract violations (1):")
}
