// Package scraper defines the core types, collaborator contracts, and the
// crawl loop for harvesting article samples from lrytas.lt.
package scraper

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by an ArticleFetcher when a page was retrieved but
// the required fields could not be extracted. It is an expected outcome, not
// a transport fault: the crawler skips the URL and moves on.
var ErrNotFound = errors.New("article fields not found")

// Sample is one harvested article record. It is persisted as a single JSON
// line and must round-trip losslessly between crawl and export.
type Sample struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Text    string `json:"text"`
}

// Valid reports whether the sample carries the fields required for the
// dataset. Samples missing text or summary are dropped, never persisted.
func (s Sample) Valid() bool {
	return strings.TrimSpace(s.Text) != "" && strings.TrimSpace(s.Summary) != ""
}

// CrawlState is the in-memory crawl position, rebuilt from the persistent
// store at startup. Count always equals the number of persisted records, and
// every persisted URL is in the seen set. It is owned exclusively by the
// crawl loop and never decremented.
type CrawlState struct {
	count int
	seen  map[string]struct{}
}

// NewCrawlState returns an empty state for a fresh dataset.
func NewCrawlState() *CrawlState {
	return &CrawlState{seen: make(map[string]struct{})}
}

// Count returns the number of persisted samples.
func (c *CrawlState) Count() int {
	return c.count
}

// Seen reports whether url has already been persisted.
func (c *CrawlState) Seen(url string) bool {
	_, ok := c.seen[url]
	return ok
}

// Mark records url as persisted and increments the count. Marking is
// derivable from the store, so replaying it during recovery is idempotent
// with respect to the append that preceded it.
func (c *CrawlState) Mark(url string) {
	if _, ok := c.seen[url]; ok {
		return
	}
	c.seen[url] = struct{}{}
	c.count++
}

// ArticleFetcher discovers candidate article URLs for a search query and
// extracts samples from article pages. Implementations live at the network
// boundary; the crawl loop only sees this contract.
type ArticleFetcher interface {
	// FindArticleURLs returns candidate article URLs for the query. An
	// empty slice with a nil error means the query produced no results.
	FindArticleURLs(ctx context.Context, query string) ([]string, error)

	// FetchSample retrieves and extracts one article. It returns
	// ErrNotFound when the page lacks the required fields; any other
	// error is a transport fault.
	FetchSample(ctx context.Context, url string) (Sample, error)
}

// Store is the append-only persistence contract consumed by the crawl loop.
type Store interface {
	Append(sample Sample) error
	Recover() (*CrawlState, error)
}

// QuerySource hands out search terms, each at most once.
type QuerySource interface {
	Next() (string, error)
}

// Delayer inserts the politeness pauses between requests. Short runs before
// every page fetch; Long runs after unproductive queries and large batches.
type Delayer interface {
	Short(ctx context.Context) error
	Long(ctx context.Context) error
}
