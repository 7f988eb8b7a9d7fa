package fetcher

import (
	"math/rand"
	"strings"
	"time"
)

// agentPools maps a browser family name to identity strings the inspect
// fetcher may present. Scrape traffic driven by processor scripts never goes
// through here; those requests carry the session's own s_agent value.
var agentPools = map[string][]string{
	"chrome": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	},
	"firefox": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.1; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	},
	"safari": {
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_1_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
	},
	"edge": {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	},
}

const fallbackAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// UserAgentSelector picks a User-Agent for inspect fetches: a named family
// draws from that family's pool, "auto"/empty draws from all of them, and
// anything unrecognized is passed through as a literal custom agent string.
type UserAgentSelector struct {
	rng *rand.Rand
}

func NewUserAgentSelector() *UserAgentSelector {
	return &UserAgentSelector{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *UserAgentSelector) GetUserAgent(family string) string {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" || family == "auto" {
		return s.pick(allAgents())
	}
	if pool, ok := agentPools[family]; ok {
		return s.pick(pool)
	}
	return family
}

func (s *UserAgentSelector) pick(pool []string) string {
	if len(pool) == 0 {
		return fallbackAgent
	}
	return pool[s.rng.Intn(len(pool))]
}

func allAgents() []string {
	var all []string
	for _, pool := range agentPools {
		all = append(all, pool...)
	}
	return all
}
