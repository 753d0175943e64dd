package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
)

func TestFingerprint(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"

	assert.Equal(t, Fingerprint(text), Fingerprint(text))
	assert.Equal(t, Fingerprint(text), Fingerprint("The  QUICK brown fox\njumps over the lazy dog"), "case and whitespace insensitive")
	assert.Equal(t, uint64(0), Fingerprint("   \t\n "))
	assert.NotEqual(t, uint64(0), Fingerprint("hello"))

	far := Fingerprint("completely unrelated content about quantum physics and mathematics")
	assert.Greater(t, Distance(Fingerprint(text), far), 5)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
	assert.True(t, Similar(0, 7, 3))
	assert.False(t, Similar(0, 15, 3))
}

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	c := New(2, time.Hour)
	t.Cleanup(c.Close)
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_GetSet(t *testing.T) {
	c, now := newTestCache(t)
	key := Key("https://example.com/a", 1200, 1024)
	report := &models.TransformedReport{Meta: models.AnalysisMeta{ID: "r1"}}

	_, ok := c.Get(key, 0, time.Minute)
	assert.False(t, ok, "empty cache")

	c.Set(key, 0b1010, report)

	got, ok := c.Get(key, 0b1011, time.Minute)
	require.True(t, ok, "one bit away is similar")
	assert.Same(t, report, got)

	_, ok = c.Get(key, 0b1010^0xFF, time.Minute)
	assert.False(t, ok, "content changed too much")

	_, ok = c.Get(key, 0b1010, 0)
	assert.False(t, ok, "maxAge 0 disables lookup")

	*now = now.Add(2 * time.Minute)
	_, ok = c.Get(key, 0b1010, time.Minute)
	assert.False(t, ok, "stale entry")
}

func TestCache_KeyIncludesBounds(t *testing.T) {
	assert.NotEqual(t, Key("https://example.com", 1200, 1024), Key("https://example.com", 600, 1024))
	assert.NotEqual(t, Key("https://example.com", 1200, 1024), Key("https://example.com", 1200, 512))
	assert.Equal(t, Key("https://example.com", 1200, 1024), Key("https://example.com", 1200, 1024))
}

func TestCache_Capacity(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("a", 0, &models.TransformedReport{})
	c.Set("b", 0, &models.TransformedReport{})
	c.Set("b", 0, &models.TransformedReport{})
	assert.Equal(t, 2, c.Len(), "overwrite does not evict")

	c.Set("c", 0, &models.TransformedReport{})
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("c", 0, time.Hour)
	assert.True(t, ok)
}

func TestCache_EvictExpired(t *testing.T) {
	c, now := newTestCache(t)
	c.Set("old", 0, &models.TransformedReport{})
	*now = now.Add(2 * time.Hour)
	c.Set("new", 0, &models.TransformedReport{})

	c.evictExpired()
	assert.Equal(t, 1, c.Len())
}
