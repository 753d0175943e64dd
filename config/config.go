package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Extract   ExtractConfig
	Oracle    OracleConfig
	Fetch     FetchConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MetricsNamespace prefixes every Prometheus metric.
	MetricsNamespace string // default: "aeoaudit"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the report cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached reports.
	MaxEntries int // default: 1000

	// TTL is how long a report stays in memory at all.
	TTL time.Duration // default: 24h

	// DefaultMaxAge applies when a request does not set max_age. Zero
	// disables reuse by default.
	DefaultMaxAge time.Duration // default: 0
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// ExtractConfig bounds feature extraction.
type ExtractConfig struct {
	MaxWords  int // default: 1200
	SchemaCap int // default: 1024

	// SkipLanguageDetection disables the content language metric.
	SkipLanguageDetection bool // default: false
}

// OracleConfig controls the scoring model.
type OracleConfig struct {
	APIKey      string
	Model       string  // default: "gpt-4o-mini"
	BaseURL     string  // default: "https://api.openai.com/v1"
	Temperature float64 // default: 0.2
	MaxTokens   int     // default: 4096

	// Timeout bounds a single oracle call.
	Timeout time.Duration // default: 60s

	// RatePerMinute paces outgoing calls; 0 disables pacing.
	RatePerMinute int // default: 60

	// BestPracticesFile is an optional text file injected into the system
	// prompt.
	BestPracticesFile string
}

// FetchConfig controls page and robots.txt retrieval for URL-only audits.
type FetchConfig struct {
	Timeout   time.Duration // default: 30s
	UserAgent string
}

// WebhookConfig controls audit.completed notifications.
type WebhookConfig struct {
	// Secret signs webhook bodies; empty disables signing.
	Secret  string
	Timeout time.Duration // default: 10s
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             envOr("AEO_HOST", "0.0.0.0"),
			Port:             envIntOr("AEO_PORT", 8080),
			Mode:             envOr("AEO_MODE", "release"),
			MetricsNamespace: envOr("AEO_METRICS_NAMESPACE", "aeoaudit"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("AEO_AUTH_ENABLED", true),
			APIKeys: envSliceOr("AEO_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("AEO_RATE_RPS", 2.0),
			Burst:             envIntOr("AEO_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries:    envIntOr("AEO_CACHE_MAX_ENTRIES", 1000),
			TTL:           envDurationOr("AEO_CACHE_TTL", 24*time.Hour),
			DefaultMaxAge: envDurationOr("AEO_CACHE_DEFAULT_MAX_AGE", 0),
		},
		Log: LogConfig{
			Level:  envOr("AEO_LOG_LEVEL", "info"),
			Format: envOr("AEO_LOG_FORMAT", "json"),
		},
		Extract: ExtractConfig{
			MaxWords:              envIntOr("AEO_MAX_WORDS", 1200),
			SchemaCap:             envIntOr("AEO_SCHEMA_CAP", 1024),
			SkipLanguageDetection: envBoolOr("AEO_SKIP_LANGUAGE_DETECTION", false),
		},
		Oracle: OracleConfig{
			APIKey:            firstEnv("AEO_ORACLE_API_KEY", "OPENAI_API_KEY"),
			Model:             envOr("AEO_ORACLE_MODEL", "gpt-4o-mini"),
			BaseURL:           envOr("AEO_ORACLE_BASE_URL", "https://api.openai.com/v1"),
			Temperature:       envFloatOr("AEO_ORACLE_TEMPERATURE", 0.2),
			MaxTokens:         envIntOr("AEO_ORACLE_MAX_TOKENS", 4096),
			Timeout:           envDurationOr("AEO_ORACLE_TIMEOUT", 60*time.Second),
			RatePerMinute:     envIntOr("AEO_ORACLE_RPM", 60),
			BestPracticesFile: os.Getenv("AEO_BEST_PRACTICES_FILE"),
		},
		Fetch: FetchConfig{
			Timeout:   envDurationOr("AEO_FETCH_TIMEOUT", 30*time.Second),
			UserAgent: os.Getenv("AEO_FETCH_USER_AGENT"),
		},
		Webhook: WebhookConfig{
			Secret:  os.Getenv("AEO_WEBHOOK_SECRET"),
			Timeout: envDurationOr("AEO_WEBHOOK_TIMEOUT", 10*time.Second),
		},
	}
}

// --- helper functions ---

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
