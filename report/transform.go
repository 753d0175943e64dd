// Package report ranks validated oracle output into the user-facing audit
// report. Transform is pure: it performs no I/O and never mutates its
// inputs.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/use-agent/aeoaudit/models"
)

// Importance is the fixed business weight of each category.
var Importance = map[models.Category]float64{
	models.CategoryStructuredData:     0.90,
	models.CategoryAnswerUpfront:      0.85,
	models.CategoryFreshnessMeta:      0.80,
	models.CategoryEEATSignals:        0.75,
	models.CategorySpeakableReady:     0.70,
	models.CategorySnippetConciseness: 0.65,
	models.CategoryCrawlerAccess:      0.60,
	models.CategoryMediaAltCaption:    0.55,
	models.CategoryHreflangLangMeta:   0.50,
}

const (
	// highlightThreshold is the category score below which a category is
	// highlighted.
	highlightThreshold = 80.0

	// Confidence band: a score of 0 maps to maxConfidence, 100 to
	// minConfidence, linearly.
	maxConfidence = 0.95
	minConfidence = 0.70

	// unknownCategoryScore stands in for a fix whose category has no score.
	unknownCategoryScore = 50.0

	maxQuickWins  = 5
	maxTitleRunes = 90

	impactFactor     = 0.6
	confidenceFactor = 0.3
	effortFactor     = 0.1
)

// Confidence maps a category score to [0.70, 0.95]; lower scores mean the
// fix is more likely to matter.
func Confidence(score float64) float64 {
	s := math.Max(0, math.Min(100, score))
	return round4(maxConfidence - (maxConfidence-minConfidence)*s/100)
}

// Priority is impact·0.6 + confidence·0.3 + effort·0.1, rounded to four
// decimals.
func Priority(impact models.Impact, confidence float64, effort models.Effort) float64 {
	return round4(impact.Weight()*impactFactor + confidence*confidenceFactor + effort.Weight()*effortFactor)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// ranked is a validated fix with its ranking inputs.
type ranked struct {
	models.PrioritizedFix
	importance float64
}

// Transform builds the report for one validated analysis.
func Transform(scored models.ScoredAnalysis, metrics models.Metrics, meta models.AnalysisMeta) (*models.TransformedReport, error) {
	fixes := rankFixes(scored)

	selected := make([]models.PrioritizedFix, 0, models.MaxPrioritizedFixes)
	for i := 0; i < len(fixes) && i < models.MaxPrioritizedFixes; i++ {
		selected = append(selected, fixes[i].PrioritizedFix)
	}

	quickWins := quickWinTitles(fixes)

	if err := checkInvariants(selected); err != nil {
		return nil, err
	}

	raw := scored.Clone()
	out := &models.TransformedReport{
		Meta: meta,
		Scores: models.ReportScores{
			Overall:    scored.Score,
			Categories: copyScores(scored.CategoryScores),
			Metrics:    metrics,
		},
		Keywords: cloneStrings(scored.Keywords),
		Audience: models.Audience{
			TargetAudience:     scored.TargetAudience,
			CompetitorAnalysis: scored.CompetitorAnalysis,
			ContentGaps:        cloneStrings(scored.ContentGaps),
		},
		Prioritized: models.Prioritized{
			Highlights: highlights(scored.CategoryScores),
			QuickWins:  quickWins,
			Fixes:      selected,
		},
		CodePlaceholders: placeholdersFor(selected),
		Raw: models.RawSection{
			RawAnalysis:  raw,
			Improvements: cloneStrings(scored.Improvements),
			Feedback:     scored.Feedback,
			Sentiment:    scored.Sentiment,
		},
	}
	out.Meta.Violations = cloneStrings(meta.Violations)
	return out, nil
}

// quickWinTitles lists the titles of low-effort, high- or med-impact fixes in
// priority order. Repeated titles appear once.
func quickWinTitles(fixes []ranked) []string {
	out := []string{}
	seen := make(map[string]struct{}, maxQuickWins)
	for _, f := range fixes {
		if len(out) == maxQuickWins {
			break
		}
		if !isQuickWin(f.FixItem) {
			continue
		}
		if _, dup := seen[f.Title]; dup {
			continue
		}
		seen[f.Title] = struct{}{}
		out = append(out, f.Title)
	}
	return out
}

// rankFixes augments every fix and sorts by priority, then category
// importance, then id.
func rankFixes(scored models.ScoredAnalysis) []ranked {
	out := make([]ranked, 0, len(scored.Fixes))
	for i, f := range scored.Fixes {
		score, ok := scored.CategoryScores[f.Category]
		if !ok || !f.Category.Known() {
			score = unknownCategoryScore
		}
		conf := Confidence(score)

		out = append(out, ranked{
			PrioritizedFix: models.PrioritizedFix{
				FixItem:    f.Clone(),
				ID:         fmt.Sprintf("fix-%02d", i+1),
				Title:      fixTitle(f),
				Confidence: conf,
				Priority:   Priority(f.Impact, conf, f.Effort),
				Why:        fixWhy(f, score),
				How:        strings.TrimSpace(f.Fix),
			},
			importance: Importance[f.Category],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.importance != b.importance {
			return a.importance > b.importance
		}
		return a.ID < b.ID
	})
	return out
}

func isQuickWin(f models.FixItem) bool {
	return f.Effort == models.EffortLow && (f.Impact == models.ImpactHigh || f.Impact == models.ImpactMed)
}

// highlights lists categories scoring below 80, most important first.
func highlights(scores map[models.Category]float64) []string {
	out := []string{}
	for _, c := range models.Categories {
		if s, ok := scores[c]; ok && s < highlightThreshold {
			out = append(out, string(c))
		}
	}
	return out
}

// fixTitle is the first sentence of the fix, falling back to the problem
// and then the category label.
func fixTitle(f models.FixItem) string {
	for _, s := range []string{f.Fix, f.Problem} {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		if i := strings.Index(s, ". "); i > 0 {
			s = s[:i+1]
		}
		return clip(s, maxTitleRunes)
	}
	return f.Category.Label()
}

func fixWhy(f models.FixItem, score float64) string {
	problem := strings.TrimSpace(f.Problem)
	if !f.Category.Known() {
		return problem
	}
	why := fmt.Sprintf("%s scored %.0f/100.", f.Category.Label(), score)
	if problem != "" {
		why += " " + problem
	}
	return why
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

// checkInvariants guards the selection bounds. A failure is a bug in this
// package, never a property of the input.
func checkInvariants(selected []models.PrioritizedFix) error {
	if len(selected) > models.MaxPrioritizedFixes {
		return models.NewAuditError(models.ErrCodeTransformInvariant,
			fmt.Sprintf("%d fixes selected, limit %d", len(selected), models.MaxPrioritizedFixes), nil)
	}
	for _, f := range selected {
		if !(f.Priority >= 0 && f.Priority <= 1) {
			return models.NewAuditError(models.ErrCodeTransformInvariant,
				fmt.Sprintf("priority %v of %s outside [0,1]", f.Priority, f.ID), nil)
		}
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyScores(m map[models.Category]float64) map[models.Category]float64 {
	if m == nil {
		return nil
	}
	out := make(map[models.Category]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
