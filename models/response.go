package models

// TimingInfo provides duration breakdowns for an operation.
type TimingInfo struct {
	TotalMs   int64 `json:"total_ms"`
	FetchMs   int64 `json:"fetch_ms,omitempty"`
	ExtractMs int64 `json:"extract_ms,omitempty"`
	OracleMs  int64 `json:"oracle_ms,omitempty"`
}

// AuditResponse is the response for POST /api/v1/audit.
type AuditResponse struct {
	Success bool               `json:"success"`
	Report  *TransformedReport `json:"report,omitempty"`

	// CacheStatus is "hit" or "miss" when reuse was requested.
	CacheStatus string       `json:"cache_status,omitempty"`
	Timing      TimingInfo   `json:"timing"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

// FeaturesResponse is the response for POST /api/v1/features.
type FeaturesResponse struct {
	Success  bool             `json:"success"`
	Features *FeatureDocument `json:"features,omitempty"`
	Timing   TimingInfo       `json:"timing"`
	Error    *ErrorDetail     `json:"error,omitempty"`
}

// PromptsResponse is the response for POST /api/v1/prompts.
type PromptsResponse struct {
	Success         bool             `json:"success"`
	System          string           `json:"system,omitempty"`
	User            string           `json:"user,omitempty"`
	EstimatedTokens int              `json:"estimated_tokens,omitempty"`
	Features        *FeatureDocument `json:"features,omitempty"`
	Timing          TimingInfo       `json:"timing"`
	Error           *ErrorDetail     `json:"error,omitempty"`
}

// ErrorResponse is returned by middleware and for failures that carry no
// other payload.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Version       string `json:"version"`
	OracleReady   bool   `json:"oracle_ready"`
	FetchEnabled  bool   `json:"fetch_enabled"`
	CachedReports int    `json:"cached_reports"`
}
