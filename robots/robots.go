package robots

import (
	"bufio"
	"sort"
	"strings"

	"github.com/use-agent/aeoaudit/models"
)

// KnownBots are the crawlers reported in every summary, in output order.
var KnownBots = []string{
	"GPTBot",
	"ChatGPT-User",
	"OAI-SearchBot",
	"ClaudeBot",
	"anthropic-ai",
	"PerplexityBot",
	"Google-Extended",
	"Googlebot",
	"Bingbot",
	"CCBot",
	"Applebot-Extended",
}

// group is one robots.txt record: the user agents it names and its rules.
type group struct {
	agents   []string
	allow    []string
	disallow []string
}

// Summarize parses robots.txt text into a per-bot access summary.
//
// Group selection follows the usual crawler convention: a group naming the
// bot wins over the "*" group; with no applicable group the bot is allowed.
// Unparseable lines are ignored.
func Summarize(robotsTxt string) models.CrawlerAccess {
	groups, sitemaps, directives := parse(robotsTxt)

	summary := models.CrawlerAccess{
		RobotsFound: directives > 0,
		Bots:        make([]models.BotAccess, 0, len(KnownBots)),
		Sitemaps:    sitemaps,
	}

	for _, bot := range KnownBots {
		summary.Bots = append(summary.Bots, evaluate(bot, groups))
	}
	return summary
}

func parse(robotsTxt string) (groups []*group, sitemaps []string, directives int) {
	var cur *group
	// lastWasAgent tracks consecutive User-agent lines that share a group.
	lastWasAgent := false

	scanner := bufio.NewScanner(strings.NewReader(robotsTxt))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			directives++
			if cur == nil || !lastWasAgent {
				cur = &group{}
				groups = append(groups, cur)
			}
			cur.agents = append(cur.agents, strings.ToLower(value))
			lastWasAgent = true
		case "allow", "disallow":
			directives++
			lastWasAgent = false
			if cur == nil || value == "" {
				// "Disallow:" with no path allows everything.
				continue
			}
			if key == "allow" {
				cur.allow = append(cur.allow, value)
			} else {
				cur.disallow = append(cur.disallow, value)
			}
		case "sitemap":
			directives++
			if value != "" {
				sitemaps = append(sitemaps, value)
			}
		default:
			// crawl-delay, host, etc. end the agent run but carry no access rules.
			directives++
			lastWasAgent = false
		}
	}
	return groups, sitemaps, directives
}

func evaluate(bot string, groups []*group) models.BotAccess {
	access := models.BotAccess{Bot: bot, Status: models.AccessAllowed}

	matched := matchGroups(strings.ToLower(bot), groups)
	if len(matched) == 0 {
		matched = matchGroups("*", groups)
		if len(matched) == 0 {
			return access
		}
		access.MatchedGroup = "*"
	} else {
		access.MatchedGroup = bot
	}

	var allow, disallow []string
	for _, g := range matched {
		allow = append(allow, g.allow...)
		disallow = append(disallow, g.disallow...)
	}

	rootAllowed := false
	for _, p := range allow {
		if p == "/" || p == "/*" {
			rootAllowed = true
			break
		}
	}

	seen := make(map[string]struct{}, len(disallow))
	rootBlocked := false
	for _, p := range disallow {
		if p == "/" || p == "/*" {
			rootBlocked = true
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		access.DisallowedPaths = append(access.DisallowedPaths, p)
	}
	sort.Strings(access.DisallowedPaths)

	switch {
	case rootBlocked && !rootAllowed:
		access.Status = models.AccessBlocked
	case len(access.DisallowedPaths) > 0:
		access.Status = models.AccessPartial
	}
	return access
}

func matchGroups(agent string, groups []*group) []*group {
	var out []*group
	for _, g := range groups {
		for _, a := range g.agents {
			if a == agent {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
