package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/aeoaudit/models"
)

func TestFormatReport(t *testing.T) {
	r := &models.TransformedReport{
		Meta: models.AnalysisMeta{URL: "https://example.com"},
		Scores: models.ReportScores{
			Overall:    64,
			Categories: map[models.Category]float64{models.CategoryStructuredData: 20},
		},
		Keywords: []string{"coffee"},
		Prioritized: models.Prioritized{
			Highlights: []string{"structured_data"},
			QuickWins:  []string{"Add FAQPage JSON-LD."},
			Fixes: []models.PrioritizedFix{{
				FixItem:  models.FixItem{Impact: models.ImpactHigh, Effort: models.EffortLow},
				Title:    "Add FAQPage JSON-LD.",
				Priority: 0.97,
				Why:      "Structured data scored 20/100.",
				How:      "Add FAQPage JSON-LD.",
			}},
		},
	}

	out := formatReport(r)

	assert.Contains(t, out, "Overall score: 64/100")
	assert.Contains(t, out, "Structured data")
	assert.Contains(t, out, "1. Add FAQPage JSON-LD. [high impact, low effort, priority 0.97]")
	assert.Contains(t, out, "Why: Structured data scored 20/100.")
	assert.NotContains(t, out, "How:", "how equal to title is not repeated")
	assert.Contains(t, out, "Quick wins:\n  - Add FAQPage JSON-LD.")
	assert.Contains(t, out, "Keywords: coffee")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "audit failed", errorMessage("audit failed", nil))
	assert.Equal(t, "[ORACLE_TIMEOUT] slow (retryable)",
		errorMessage("x", &models.ErrorDetail{Code: "ORACLE_TIMEOUT", Message: "slow", Retryable: true}))
}
