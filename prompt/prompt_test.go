package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
)

func TestRubric_CoversEveryCategory(t *testing.T) {
	require.Len(t, Rubric, len(models.Categories))

	total := 0
	for i, c := range Rubric {
		assert.Equal(t, models.Categories[i], c.Category, "rubric follows importance order")
		total += c.Weight
	}
	assert.Equal(t, 100, total)
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt("Put a 40-60 word answer at the top.")

	for _, c := range models.Categories {
		assert.Contains(t, p, string(c))
	}
	assert.Contains(t, p, "high, med, low")
	assert.Contains(t, p, "low, medium, high")
	assert.Contains(t, p, "positive, neutral, negative")
	assert.Contains(t, p, "at most 20 fixes, sorted by impact")
	assert.Contains(t, p, "Put a 40-60 word answer at the top.")
	assert.Equal(t, p, BuildSystemPrompt("Put a 40-60 word answer at the top."))
}

func TestBuildSystemPrompt_OutputShapeIsValidJSON(t *testing.T) {
	var shape models.ScoredAnalysis
	require.NoError(t, json.Unmarshal([]byte(outputShape()), &shape))
	assert.Len(t, shape.CategoryScores, 9)
	require.Len(t, shape.Fixes, 1)
	_, ok := models.ParseImpact(string(shape.Fixes[0].Impact))
	assert.True(t, ok)
}

func TestBuildSystemPrompt_SnippetBounded(t *testing.T) {
	huge := strings.Repeat("é", MaxSnippetChars+500)
	p := BuildSystemPrompt(huge)

	assert.Contains(t, p, strings.Repeat("é", MaxSnippetChars)+" …")
	assert.NotContains(t, p, strings.Repeat("é", MaxSnippetChars+1))

	assert.Contains(t, BuildSystemPrompt("   "), "BEST PRACTICES\n(none)")
}

func sampleDocument() models.FeatureDocument {
	days := 2
	access := models.CrawlerAccess{
		RobotsFound: true,
		Bots: []models.BotAccess{
			{Bot: "GPTBot", Status: models.AccessBlocked, MatchedGroup: "GPTBot", DisallowedPaths: []string{"/"}},
			{Bot: "ClaudeBot", Status: models.AccessAllowed},
		},
		Sitemaps: []string{"https://example.com/sitemap.xml"},
	}
	return models.FeatureDocument{
		Head:     "title: Coffee",
		Headings: "How to brew coffee",
		Text:     "Brew with water just off the boil.",
		Metrics: models.Metrics{
			AnswerUpfront: models.AnswerUpfrontMetrics{Source: models.AnswerSourceArticle, WordCount: 8},
			FreshnessMeta: models.FreshnessMetrics{DaysSinceModified: &days},
			EEATSignals:   models.EEATMetrics{HTTPS: true, OutboundLinks: 1, WikiLinks: 1},
			MediaAltCaption: models.MediaMetrics{
				ImagesTotal: 1, ImagesMissingGoodAlt: 1, BadAltSamples: []string{`"" beans.jpg`},
			},
			CrawlerAccess: access,
		},
		CrawlerAccess: access,
	}
}

func TestBuildUserPrompt_Sections(t *testing.T) {
	p := BuildUserPrompt(sampleDocument())

	order := []string{"HEAD:", "SCHEMA:", "HEADINGS:", "TEXT:", "METRICS:", "CRAWLER ACCESS:", "SCORING EXAMPLES FOR THIS PAGE:"}
	last := -1
	for _, label := range order {
		idx := strings.Index(p, label)
		require.GreaterOrEqual(t, idx, 0, label)
		assert.Greater(t, idx, last, "%s out of order", label)
		last = idx
	}

	assert.Contains(t, p, "SCHEMA:\n(none)\n")
	assert.Contains(t, p, `"jsonLdBlocks": 0`)
	assert.Contains(t, p, `- GPTBot: blocked (group "GPTBot") disallow /`)
	assert.Contains(t, p, "sitemap: https://example.com/sitemap.xml")
	assert.Contains(t, p, "- structured_data: 0 structured-data blocks → ~15 points")
	assert.Contains(t, p, "- freshness_meta: modified 2 days ago → 85-100 points")
	assert.Contains(t, p, "- crawler_access: blocked: GPTBot → about 50 points")
}

func TestBuildUserPrompt_Deterministic(t *testing.T) {
	doc := sampleDocument()
	assert.Equal(t, BuildUserPrompt(doc), BuildUserPrompt(doc))
}

func TestScoringExamples_OnePerCategory(t *testing.T) {
	examples := ScoringExamples(models.Metrics{})
	require.Len(t, examples, len(models.Categories))
	for i, c := range models.Categories {
		assert.True(t, strings.HasPrefix(examples[i], "- "+string(c)+":"), examples[i])
	}
}

func TestScoringExamples_StructuredData(t *testing.T) {
	tests := []struct {
		name string
		sd   models.StructuredDataMetrics
		want string
	}{
		{"none", models.StructuredDataMetrics{}, "~15 points"},
		{"invalid", models.StructuredDataMetrics{JSONLDBlocks: 2}, "20-35 points"},
		{"faq", models.StructuredDataMetrics{JSONLDBlocks: 1, ValidBlocks: 1, HasFAQ: true}, "80-95 points"},
		{"generic", models.StructuredDataMetrics{JSONLDBlocks: 1, ValidBlocks: 1, SchemaTypes: []string{"WebPage"}}, "(types: WebPage) → 60-80 points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, structuredDataExample(tt.sd), tt.want)
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens("abcd"))
	assert.Equal(t, 1, EstimateTokens("日本語"))
}
