package models

// Category names one of the nine rubric dimensions.
type Category string

const (
	CategoryStructuredData     Category = "structured_data"
	CategoryAnswerUpfront      Category = "answer_upfront"
	CategoryFreshnessMeta      Category = "freshness_meta"
	CategoryEEATSignals        Category = "e_e_a_t_signals"
	CategorySpeakableReady     Category = "speakable_ready"
	CategorySnippetConciseness Category = "snippet_conciseness"
	CategoryCrawlerAccess      Category = "crawler_access"
	CategoryMediaAltCaption    Category = "media_alt_caption"
	CategoryHreflangLangMeta   Category = "hreflang_lang_meta"
)

// Categories lists the rubric categories in descending business importance.
var Categories = []Category{
	CategoryStructuredData,
	CategoryAnswerUpfront,
	CategoryFreshnessMeta,
	CategoryEEATSignals,
	CategorySpeakableReady,
	CategorySnippetConciseness,
	CategoryCrawlerAccess,
	CategoryMediaAltCaption,
	CategoryHreflangLangMeta,
}

var categoryLabels = map[Category]string{
	CategoryStructuredData:     "Structured data",
	CategoryAnswerUpfront:      "Answer upfront",
	CategoryFreshnessMeta:      "Freshness metadata",
	CategoryEEATSignals:        "E-E-A-T signals",
	CategorySpeakableReady:     "Speakable readiness",
	CategorySnippetConciseness: "Snippet conciseness",
	CategoryCrawlerAccess:      "Crawler access",
	CategoryMediaAltCaption:    "Media alt text & captions",
	CategoryHreflangLangMeta:   "Hreflang & language meta",
}

// Label returns a human-readable name, or the raw value for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Known reports whether c is one of the nine rubric categories.
func (c Category) Known() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Impact is the closed set of fix impact levels.
type Impact string

const (
	ImpactHigh Impact = "high"
	ImpactMed  Impact = "med"
	ImpactLow  Impact = "low"
)

// ParseImpact accepts only the exact enum spellings.
func ParseImpact(s string) (Impact, bool) {
	switch Impact(s) {
	case ImpactHigh, ImpactMed, ImpactLow:
		return Impact(s), true
	}
	return "", false
}

// Weight is the impact contribution to the priority formula.
func (i Impact) Weight() float64 {
	switch i {
	case ImpactHigh:
		return 1.0
	case ImpactMed:
		return 0.7
	case ImpactLow:
		return 0.4
	}
	return 0
}

// Effort is the closed set of fix effort levels.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

func ParseEffort(s string) (Effort, bool) {
	switch Effort(s) {
	case EffortLow, EffortMedium, EffortHigh:
		return Effort(s), true
	}
	return "", false
}

// Weight is the effort contribution to the priority formula; cheaper fixes
// weigh more.
func (e Effort) Weight() float64 {
	switch e {
	case EffortLow:
		return 1.0
	case EffortMedium:
		return 0.6
	case EffortHigh:
		return 0.3
	}
	return 0
}

// Sentiment is the closed set of overall content sentiment values.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return Sentiment(s), true
	}
	return "", false
}

// MaxOracleFixes caps the fixes accepted from the oracle.
const MaxOracleFixes = 20

// ScoredAnalysis is the validated oracle payload.
type ScoredAnalysis struct {
	Score              float64              `json:"score"`
	CategoryScores     map[Category]float64 `json:"category_scores"`
	Fixes              []FixItem            `json:"fixes"`
	Keywords           []string             `json:"keywords"`
	CompetitorAnalysis string               `json:"competitorAnalysis"`
	TargetAudience     string               `json:"targetAudience"`
	ContentGaps        []string             `json:"contentGaps"`
	Improvements       []string             `json:"improvements"`
	Feedback           string               `json:"feedback"`
	Sentiment          Sentiment            `json:"sentiment,omitempty"`
}

// FixItem is a single actionable recommendation from the oracle.
type FixItem struct {
	Problem    string   `json:"problem"`
	Example    string   `json:"example"`
	Fix        string   `json:"fix"`
	Impact     Impact   `json:"impact"`
	Category   Category `json:"category"`
	Effort     Effort   `json:"effort"`
	Validation []string `json:"validation"`
}

// Clone returns a deep copy so callers can hand the original to the report
// unchanged.
func (a ScoredAnalysis) Clone() ScoredAnalysis {
	out := a
	if a.CategoryScores != nil {
		out.CategoryScores = make(map[Category]float64, len(a.CategoryScores))
		for k, v := range a.CategoryScores {
			out.CategoryScores[k] = v
		}
	}
	if a.Fixes != nil {
		out.Fixes = make([]FixItem, len(a.Fixes))
		for i, f := range a.Fixes {
			out.Fixes[i] = f.Clone()
		}
	}
	out.Keywords = cloneStrings(a.Keywords)
	out.ContentGaps = cloneStrings(a.ContentGaps)
	out.Improvements = cloneStrings(a.Improvements)
	return out
}

func (f FixItem) Clone() FixItem {
	out := f
	out.Validation = cloneStrings(f.Validation)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
