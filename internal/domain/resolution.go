package domain

import "time"

// categoryValidity maps each category to how long an incident of that kind
// plausibly stays live. Unrecognized categories fall back to defaultValidity.
var categoryValidity = map[string]time.Duration{
	"traffic":          2 * time.Hour,
	"water-logging":    6 * time.Hour,
	"events":           6 * time.Hour,
	"stampede":         48 * time.Hour,
	"emergency":        48 * time.Hour,
	"infrastructure":   72 * time.Hour,
	"weather":          12 * time.Hour,
	"public-transport": 4 * time.Hour,
	"civic-issues":     48 * time.Hour,
	"security":         48 * time.Hour,
	"utility":          8 * time.Hour,
}

// defaultValidity is both the fallback for unrecognized categories and the
// floor for an empty category set.
const defaultValidity = time.Hour

// ResolutionTime returns now plus the longest validity among the given
// categories. The maximum keeps a multi-category incident live until its
// longest-lived concern resolves. An empty set gets the one-hour floor.
func ResolutionTime(categories []string) time.Time {
	longest := defaultValidity
	for _, category := range categories {
		d, ok := categoryValidity[category]
		if !ok {
			d = defaultValidity
		}
		if d > longest {
			longest = d
		}
	}
	return clock.Now().Add(longest)
}
