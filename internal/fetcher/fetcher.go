// Package fetcher composes the browser renderer, the plain HTTP page
// fetcher, and the field extractor into the ArticleFetcher consumed by the
// crawl loop.
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/alexandrainst/lrytas-scraper/internal/extract"
	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// Renderer produces the fully rendered DOM of a page. The search results on
// lrytas.lt are built client-side, so a plain GET is not enough.
type Renderer interface {
	Render(ctx context.Context, rawURL string) ([]byte, error)
}

// PageFetcher retrieves an article page over plain HTTP. Article bodies are
// server-rendered; no browser needed.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Config holds the site endpoints and the result-link selector.
type Config struct {
	// SearchURL is a format string with one %s verb for the escaped query.
	SearchURL string
	// SiteRoot prefixes relative result links.
	SiteRoot string
	// ResultSelector matches the anchor elements of search results.
	ResultSelector string
}

// Lrytas implements scraper.ArticleFetcher for lrytas.lt.
type Lrytas struct {
	cfg       Config
	renderer  Renderer
	pages     PageFetcher
	extractor *extract.Extractor
	logger    *zap.Logger
}

// New wires the collaborators together.
func New(
	cfg Config,
	renderer Renderer,
	pages PageFetcher,
	extractor *extract.Extractor,
	logger *zap.Logger,
) *Lrytas {
	return &Lrytas{
		cfg:       cfg,
		renderer:  renderer,
		pages:     pages,
		extractor: extractor,
		logger:    logger,
	}
}

// FindArticleURLs renders the search page for query and returns the
// normalized article links. An empty slice means the query had no results.
func (f *Lrytas) FindArticleURLs(ctx context.Context, query string) ([]string, error) {
	searchURL := fmt.Sprintf(f.cfg.SearchURL, url.QueryEscape(query))
	page, err := f.renderer.Render(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("render search page: %w", err)
	}

	hrefs, err := extract.Links(page, f.cfg.ResultSelector)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		resolved, ok := f.resolveLink(href)
		if !ok {
			f.logger.Debug("dropping off-site result link", zap.String("href", href))
			continue
		}
		urls = append(urls, resolved)
	}
	return urls, nil
}

// FetchSample retrieves one article page and extracts a sample from it.
// Transport failures come back as ordinary errors; pages missing required
// fields come back as scraper.ErrNotFound.
func (f *Lrytas) FetchSample(ctx context.Context, rawURL string) (scraper.Sample, error) {
	page, err := f.pages.Fetch(ctx, rawURL)
	if err != nil {
		return scraper.Sample{}, fmt.Errorf("fetch article page: %w", err)
	}
	return f.extractor.Sample(rawURL, page)
}

// resolveLink absolutizes relative result links against the site root and
// keeps absolute ones only when their registrable domain belongs to the
// target site.
func (f *Lrytas) resolveLink(href string) (string, bool) {
	if strings.HasPrefix(href, "/") {
		return strings.TrimRight(f.cfg.SiteRoot, "/") + href, true
	}
	parsed, err := url.Parse(href)
	if err != nil || parsed.Hostname() == "" {
		return "", false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(parsed.Hostname())
	if err != nil {
		return "", false
	}
	root, err := url.Parse(f.cfg.SiteRoot)
	if err != nil {
		return "", false
	}
	rootDomain, err := publicsuffix.EffectiveTLDPlusOne(root.Hostname())
	if err != nil {
		return "", false
	}
	return href, domain == rootDomain
}
