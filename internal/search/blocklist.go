package search

import (
	"regexp"
	"strings"
)

// aggregatorRe matches directory, review, and social-platform domains whose
// listings are low-value: the pipeline wants the practice's own site, not a
// profile page about it.
var aggregatorRe = regexp.MustCompile(`yelp|healthgrades|linkedin|facebook|instagram|twitter|vitals|zocdoc|youtube|webmd|microsoft|google`)

// IsAggregator reports whether a URL points at a known aggregator domain.
func IsAggregator(url string) bool {
	return aggregatorRe.MatchString(strings.ToLower(url))
}

// excludedDomains is the request-level exclude list for providers that
// accept one (Tavily). Same intent as the blocklist, expressed as domains.
var excludedDomains = []string{
	"yelp.com",
	"healthgrades.com",
	"linkedin.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"zocdoc.com",
	"webmd.com",
}
