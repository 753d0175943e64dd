package models

// MaxPrioritizedFixes caps the fixes surfaced in a report.
const MaxPrioritizedFixes = 5

// AnalysisMeta describes the request a report was produced for. It is
// supplied by the caller and copied into the report unchanged.
type AnalysisMeta struct {
	ID          string `json:"id,omitempty"`
	URL         string `json:"url"`
	Model       string `json:"model,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
	Fingerprint string `json:"content_fingerprint,omitempty"`

	// Violations lists oracle contract violations found during validation
	// (dropped fixes, cleared enums).
	Violations []string `json:"violations,omitempty"`
}

// TransformedReport is the user-facing result of one audit. It is immutable
// once built.
type TransformedReport struct {
	Meta             AnalysisMeta     `json:"meta"`
	Scores           ReportScores     `json:"scores"`
	Keywords         []string         `json:"keywords"`
	Audience         Audience         `json:"audience"`
	Prioritized      Prioritized      `json:"prioritized"`
	CodePlaceholders CodePlaceholders `json:"codePlaceholders"`
	Raw              RawSection       `json:"raw"`
}

type ReportScores struct {
	Overall    float64              `json:"overall"`
	Categories map[Category]float64 `json:"categories"`
	Metrics    Metrics              `json:"metrics"`
}

type Audience struct {
	TargetAudience     string   `json:"targetAudience"`
	CompetitorAnalysis string   `json:"competitorAnalysis"`
	ContentGaps        []string `json:"contentGaps"`
}

type Prioritized struct {
	Highlights []string         `json:"highlights"`
	QuickWins  []string         `json:"quickWins"`
	Fixes      []PrioritizedFix `json:"fixes"`
}

// PrioritizedFix is a FixItem augmented with ranking data.
type PrioritizedFix struct {
	FixItem
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
	Priority   float64 `json:"priority"`
	Why        string  `json:"why"`
	How        string  `json:"how"`
}

type CodePlaceholders struct {
	JSONLD []string `json:"jsonld"`
	Head   []string `json:"head"`
	DOM    []string `json:"dom"`
}

type RawSection struct {
	RawAnalysis  ScoredAnalysis `json:"rawAnalysis"`
	Improvements []string       `json:"improvements"`
	Feedback     string         `json:"feedback"`
	Sentiment    Sentiment      `json:"sentiment,omitempty"`
}
