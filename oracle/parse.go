package oracle

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/use-agent/aeoaudit/models"
)

var (
	openFence  = regexp.MustCompile("^```[A-Za-z]*[ \\t]*\\r?\\n?")
	closeFence = regexp.MustCompile("\\r?\\n?```$")
)

// StripFences removes a Markdown code fence wrapping the whole response and
// cuts what remains to its first balanced {...} object. Fences inside JSON
// string values are left alone.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = openFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(closeFence.ReplaceAllString(text, ""))
	}
	return firstObject(text)
}

// firstObject returns the first balanced {...} object in text, skipping
// braces inside strings. Text without an opening brace is returned as is.
func firstObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	text = text[start:]

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return text
}

// Validated is a parsed oracle payload plus the contract violations that
// were repaired while validating it.
type Validated struct {
	Analysis   models.ScoredAnalysis
	Violations []string
}

// wireAnalysis mirrors ScoredAnalysis with enums left as plain strings so
// out-of-range values can be detected rather than silently accepted.
type wireAnalysis struct {
	Score              float64                    `json:"score"`
	CategoryScores     map[string]json.RawMessage `json:"category_scores"`
	Fixes              []wireFix                  `json:"fixes"`
	Keywords           []string                   `json:"keywords"`
	CompetitorAnalysis string                     `json:"competitorAnalysis"`
	TargetAudience     string                     `json:"targetAudience"`
	ContentGaps        []string                   `json:"contentGaps"`
	Improvements       []string                   `json:"improvements"`
	Feedback           string                     `json:"feedback"`
	Sentiment          string                     `json:"sentiment"`
}

type wireFix struct {
	Problem    string   `json:"problem"`
	Example    string   `json:"example"`
	Fix        string   `json:"fix"`
	Impact     string   `json:"impact"`
	Category   string   `json:"category"`
	Effort     string   `json:"effort"`
	Validation []string `json:"validation"`
}

// Parse strips, decodes and validates an oracle response.
//
// A payload that is not JSON, or whose category_scores lacks any of the
// nine categories, fails with ORACLE_PARSE_FAILED carrying the raw text.
// Fixes with an impact or effort outside its enum are dropped, an unknown
// sentiment is cleared, and fixes beyond MaxOracleFixes are cut; each such
// repair is recorded in Violations.
func Parse(raw string) (*Validated, error) {
	body := StripFences(raw)

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, parseError("oracle response is not a JSON object", raw, err)
	}
	if wire.CategoryScores == nil {
		return nil, parseError("oracle response has no category_scores", raw, nil)
	}

	scores := make(map[models.Category]float64, len(models.Categories))
	var missing []string
	for _, c := range models.Categories {
		v, ok := wire.CategoryScores[string(c)]
		if !ok || strings.TrimSpace(string(v)) == "null" {
			missing = append(missing, string(c))
			continue
		}
		var score float64
		if err := json.Unmarshal(v, &score); err != nil {
			return nil, parseError(fmt.Sprintf("category_scores.%s is not a number", c), raw, err)
		}
		scores[c] = score
	}
	if len(missing) > 0 {
		return nil, parseError("category_scores missing "+strings.Join(missing, ", "), raw, nil)
	}

	out := &Validated{
		Analysis: models.ScoredAnalysis{
			Score:              wire.Score,
			CategoryScores:     scores,
			Fixes:              []models.FixItem{},
			Keywords:           wire.Keywords,
			CompetitorAnalysis: wire.CompetitorAnalysis,
			TargetAudience:     wire.TargetAudience,
			ContentGaps:        wire.ContentGaps,
			Improvements:       wire.Improvements,
			Feedback:           wire.Feedback,
		},
	}

	if wire.Sentiment != "" {
		if s, ok := models.ParseSentiment(wire.Sentiment); ok {
			out.Analysis.Sentiment = s
		} else {
			out.violate(models.EnumViolation{Index: -1, Field: "sentiment", Value: wire.Sentiment})
		}
	}

	for i, f := range wire.Fixes {
		impact, okImpact := models.ParseImpact(f.Impact)
		if !okImpact {
			out.violate(models.EnumViolation{Index: i, Field: "impact", Value: f.Impact})
		}
		effort, okEffort := models.ParseEffort(f.Effort)
		if !okEffort {
			out.violate(models.EnumViolation{Index: i, Field: "effort", Value: f.Effort})
		}
		if !okImpact || !okEffort {
			continue
		}
		out.Analysis.Fixes = append(out.Analysis.Fixes, models.FixItem{
			Problem:    f.Problem,
			Example:    f.Example,
			Fix:        f.Fix,
			Impact:     impact,
			Category:   models.Category(f.Category),
			Effort:     effort,
			Validation: f.Validation,
		})
	}

	if n := len(out.Analysis.Fixes); n > models.MaxOracleFixes {
		out.Violations = append(out.Violations,
			fmt.Sprintf("fixes truncated: %d returned, limit %d", n, models.MaxOracleFixes))
		out.Analysis.Fixes = out.Analysis.Fixes[:models.MaxOracleFixes]
	}

	if len(out.Violations) > 0 {
		slog.Warn("oracle: contract violations repaired",
			"count", len(out.Violations), "violations", out.Violations,
		)
	}
	return out, nil
}

func (v *Validated) violate(e models.EnumViolation) {
	v.Violations = append(v.Violations, e.Error())
}

func parseError(msg, raw string, err error) *models.AuditError {
	ae := models.NewAuditError(models.ErrCodeOracleParse, msg, err)
	ae.Raw = raw
	return ae
}
