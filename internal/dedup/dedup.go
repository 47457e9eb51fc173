// Package dedup removes duplicate samples from the accumulated dataset.
package dedup

import (
	"strings"

	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// ByTitle keeps the first occurrence of each non-empty, whitespace-trimmed
// title, in storage order. Later samples sharing a title are dropped, as is
// every sample with an empty title. It returns the surviving samples and the
// number removed.
func ByTitle(samples []scraper.Sample) ([]scraper.Sample, int) {
	seen := make(map[string]struct{}, len(samples))
	unique := make([]scraper.Sample, 0, len(samples))

	for _, sample := range samples {
		title := strings.TrimSpace(sample.Title)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		unique = append(unique, sample)
	}
	return unique, len(samples) - len(unique)
}
