package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"AEO_PORT", "AEO_API_KEYS", "AEO_MAX_WORDS", "AEO_ORACLE_API_KEY", "OPENAI_API_KEY", "AEO_ORACLE_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Auth.Enabled)
	assert.Nil(t, cfg.Auth.APIKeys)
	assert.Equal(t, 1200, cfg.Extract.MaxWords)
	assert.Equal(t, 1024, cfg.Extract.SchemaCap)
	assert.Equal(t, 60*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.Oracle.Model)
	assert.Equal(t, time.Duration(0), cfg.Cache.DefaultMaxAge)
	assert.Empty(t, cfg.Oracle.APIKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AEO_PORT", "9090")
	t.Setenv("AEO_API_KEYS", " a , b,,c ")
	t.Setenv("AEO_AUTH_ENABLED", "false")
	t.Setenv("AEO_MAX_WORDS", "600")
	t.Setenv("AEO_ORACLE_TIMEOUT", "15s")
	t.Setenv("AEO_RATE_RPS", "0.5")
	t.Setenv("AEO_ORACLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Auth.APIKeys)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 600, cfg.Extract.MaxWords)
	assert.Equal(t, 15*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "sk-fallback", cfg.Oracle.APIKey)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AEO_PORT", "eighty")
	t.Setenv("AEO_AUTH_ENABLED", "maybe")
	t.Setenv("AEO_ORACLE_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, 60*time.Second, cfg.Oracle.Timeout)
}
