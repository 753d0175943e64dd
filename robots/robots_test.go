package robots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/aeoaudit/models"
)

func botStatus(t *testing.T, summary models.CrawlerAccess, bot string) models.BotAccess {
	t.Helper()
	for _, b := range summary.Bots {
		if b.Bot == bot {
			return b
		}
	}
	t.Fatalf("bot %q missing from summary", bot)
	return models.BotAccess{}
}

func TestSummarize_EmptyAllowsEverything(t *testing.T) {
	summary := Summarize("")

	assert.False(t, summary.RobotsFound)
	require.Len(t, summary.Bots, len(KnownBots))
	for i, b := range summary.Bots {
		assert.Equal(t, KnownBots[i], b.Bot, "bots keep fixed order")
		assert.Equal(t, models.AccessAllowed, b.Status)
	}
}

func TestSummarize_SpecificGroupBeatsWildcard(t *testing.T) {
	txt := `
# block AI training crawlers
User-agent: GPTBot
User-agent: CCBot
Disallow: /

User-agent: *
Disallow: /admin
Disallow: /admin
Sitemap: https://example.com/sitemap.xml
`
	summary := Summarize(txt)

	assert.True(t, summary.RobotsFound)
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, summary.Sitemaps)

	gpt := botStatus(t, summary, "GPTBot")
	assert.Equal(t, models.AccessBlocked, gpt.Status)
	assert.Equal(t, "GPTBot", gpt.MatchedGroup)

	assert.Equal(t, models.AccessBlocked, botStatus(t, summary, "CCBot").Status)

	claude := botStatus(t, summary, "ClaudeBot")
	assert.Equal(t, models.AccessPartial, claude.Status)
	assert.Equal(t, "*", claude.MatchedGroup)
	assert.Equal(t, []string{"/admin"}, claude.DisallowedPaths)

	assert.Equal(t, []string{"GPTBot", "CCBot"}, summary.Blocked())
}

func TestSummarize_CaseInsensitive(t *testing.T) {
	summary := Summarize("USER-AGENT: perplexitybot\nDISALLOW: /\n")
	assert.Equal(t, models.AccessBlocked, botStatus(t, summary, "PerplexityBot").Status)
}

func TestSummarize_AllowRootOverridesDisallowRoot(t *testing.T) {
	summary := Summarize("User-agent: *\nDisallow: /\nAllow: /\n")
	b := botStatus(t, summary, "Googlebot")
	assert.Equal(t, models.AccessPartial, b.Status)
}

func TestSummarize_EmptyDisallowAllows(t *testing.T) {
	summary := Summarize("User-agent: *\nDisallow:\n")
	assert.True(t, summary.RobotsFound)
	assert.Equal(t, models.AccessAllowed, botStatus(t, summary, "Bingbot").Status)
}

func TestSummarize_RulesAfterOtherDirectiveStartNewGroup(t *testing.T) {
	txt := "User-agent: ClaudeBot\nCrawl-delay: 10\nUser-agent: GPTBot\nDisallow: /\n"
	summary := Summarize(txt)

	assert.Equal(t, models.AccessAllowed, botStatus(t, summary, "ClaudeBot").Status)
	assert.Equal(t, models.AccessBlocked, botStatus(t, summary, "GPTBot").Status)
}

func TestSummarize_GarbageInput(t *testing.T) {
	summary := Summarize("<html><body>404 not found</body></html>")
	assert.False(t, summary.RobotsFound)
	assert.Empty(t, summary.Blocked())
}
