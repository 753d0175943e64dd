package models

// AuditRequest is the payload for POST /api/v1/audit, /features and /prompts.
type AuditRequest struct {
	// URL is the page address. Required. It resolves relative links and is
	// fetched when HTML is empty.
	URL string `json:"url" binding:"required"`

	// HTML is the page markup. When set, nothing is fetched and RobotsTxt
	// is used as given.
	HTML string `json:"html,omitempty"`

	// RobotsTxt is the site's robots.txt body. Empty means no robots.txt.
	RobotsTxt string `json:"robots_txt,omitempty"`

	// MaxWords caps the body text. Default: server setting (1200).
	MaxWords int `json:"max_words,omitempty" binding:"omitempty,min=50,max=10000"`

	// SchemaCap caps each displayed JSON-LD block in characters.
	// Default: server setting (1024).
	SchemaCap int `json:"schema_cap,omitempty" binding:"omitempty,min=64,max=65536"`

	// MaxAge, in seconds, allows a cached report for a near-identical page
	// to be returned. Nil uses the server default; 0 disables reuse.
	MaxAge *int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL receives an audit.completed event. Audit only.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}
