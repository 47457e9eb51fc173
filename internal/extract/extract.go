// Package extract pulls structured article fields out of rendered lrytas.lt
// pages using CSS selectors.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// Config pins the selectors for the three article fields and the junk blocks
// removed from the body before text is taken.
type Config struct {
	Title    string
	Summary  string
	Content  string
	Unwanted string
}

// Extractor turns article HTML into samples.
type Extractor struct {
	cfg Config
}

// New builds an Extractor.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Sample extracts url/title/summary/text from an article page. It returns
// scraper.ErrNotFound when the summary or the body text is missing; that is
// the expected outcome for paywalled, video, or restructured pages.
func (e *Extractor) Sample(pageURL string, page []byte) (scraper.Sample, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return scraper.Sample{}, fmt.Errorf("parse article html: %w", err)
	}

	title := nodeText(doc.Find(e.cfg.Title).First())
	summary := nodeText(doc.Find(e.cfg.Summary).First())
	text := e.bodyText(doc)
	if text == "" {
		text = e.readabilityFallback(pageURL, page)
	}

	if text == "" || summary == "" {
		return scraper.Sample{}, scraper.ErrNotFound
	}
	return scraper.Sample{
		URL:     pageURL,
		Title:   title,
		Summary: summary,
		Text:    text,
	}, nil
}

func (e *Extractor) bodyText(doc *goquery.Document) string {
	body := doc.Find(e.cfg.Content).First()
	if body.Length() == 0 {
		return ""
	}
	if e.cfg.Unwanted != "" {
		body.Find(e.cfg.Unwanted).Remove()
	}
	return nodeText(body)
}

// readabilityFallback covers articles whose content container drifted away
// from the configured selector.
func (e *Extractor) readabilityFallback(pageURL string, page []byte) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(page), parsed)
	if err != nil {
		return ""
	}
	return collapse(article.TextContent)
}

// Links returns the href of every element matched by selector, in document
// order.
func Links(page []byte, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse search html: %w", err)
	}
	var hrefs []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
	})
	return hrefs, nil
}

// nodeText joins the selection's text nodes with single spaces, so text
// split across inline tags does not run together.
func nodeText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return collapse(strings.Join(parts, " "))
}

func collectText(node *html.Node, parts *[]string) {
	if node.Type == html.TextNode {
		if t := strings.TrimSpace(node.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
