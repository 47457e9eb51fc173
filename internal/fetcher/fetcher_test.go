package fetcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/extract"
	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

type fakeRenderer struct {
	lastURL string
	page    []byte
	err     error
}

func (r *fakeRenderer) Render(_ context.Context, rawURL string) ([]byte, error) {
	r.lastURL = rawURL
	return r.page, r.err
}

type fakePages struct {
	lastURL string
	page    []byte
	err     error
}

func (p *fakePages) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	p.lastURL = rawURL
	return p.page, p.err
}

func testExtractor() *extract.Extractor {
	return extract.New(extract.Config{
		Title:   "h1.article-title",
		Summary: "div.summary",
		Content: "div.article-content",
	})
}

func testFetcherConfig() Config {
	return Config{
		SearchURL:      "https://www.lrytas.lt/search?q=%s",
		SiteRoot:       "https://www.lrytas.lt",
		ResultSelector: "h3 a[href]",
	}
}

func TestFindArticleURLsEscapesQueryAndResolvesLinks(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{page: []byte(`<html><body>
<h3><a href="/lietuva/pirmas-straipsnis">vienas</a></h3>
<h3><a href="https://www.lrytas.lt/sportas/antras">du</a></h3>
<h3><a href="https://kitas-portalas.lt/straipsnis">svetimas</a></h3>
</body></html>`)}

	f := New(testFetcherConfig(), renderer, &fakePages{}, testExtractor(), zap.NewNop())
	urls, err := f.FindArticleURLs(context.Background(), "ir kas")
	require.NoError(t, err)

	require.Equal(t, "https://www.lrytas.lt/search?q=ir+kas", renderer.lastURL)
	require.Equal(t, []string{
		"https://www.lrytas.lt/lietuva/pirmas-straipsnis",
		"https://www.lrytas.lt/sportas/antras",
	}, urls, "off-site links must be dropped")
}

func TestFindArticleURLsEmptyResultPage(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{page: []byte(`<html><body><p>Nieko nerasta.</p></body></html>`)}
	f := New(testFetcherConfig(), renderer, &fakePages{}, testExtractor(), zap.NewNop())

	urls, err := f.FindArticleURLs(context.Background(), "xyzzy")
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestFindArticleURLsRenderFailure(t *testing.T) {
	t.Parallel()

	rendErr := errors.New("browser crashed")
	f := New(testFetcherConfig(), &fakeRenderer{err: rendErr}, &fakePages{}, testExtractor(), zap.NewNop())

	_, err := f.FindArticleURLs(context.Background(), "zodis")
	require.ErrorIs(t, err, rendErr)
}

func TestFetchSampleExtractsFields(t *testing.T) {
	t.Parallel()

	pages := &fakePages{page: []byte(`<html><body>
<h1 class="article-title">Antraste</h1>
<div class="summary">Santrauka.</div>
<div class="article-content"><p>Tekstas.</p></div>
</body></html>`)}

	f := New(testFetcherConfig(), &fakeRenderer{}, pages, testExtractor(), zap.NewNop())
	sample, err := f.FetchSample(context.Background(), "https://www.lrytas.lt/a/1")
	require.NoError(t, err)

	require.Equal(t, "https://www.lrytas.lt/a/1", pages.lastURL)
	require.Equal(t, "Antraste", sample.Title)
	require.Equal(t, "Santrauka.", sample.Summary)
	require.Equal(t, "Tekstas.", sample.Text)
}

func TestFetchSampleTransportFailure(t *testing.T) {
	t.Parallel()

	netErr := errors.New("connection reset")
	f := New(testFetcherConfig(), &fakeRenderer{}, &fakePages{err: netErr}, testExtractor(), zap.NewNop())

	_, err := f.FetchSample(context.Background(), "https://www.lrytas.lt/a/1")
	require.ErrorIs(t, err, netErr)
	require.False(t, errors.Is(err, scraper.ErrNotFound))
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	f := New(testFetcherConfig(), &fakeRenderer{}, &fakePages{}, testExtractor(), zap.NewNop())

	tests := []struct {
		name string
		href string
		want string
		ok   bool
	}{
		{"relative", "/lietuva/straipsnis", "https://www.lrytas.lt/lietuva/straipsnis", true},
		{"absolute same site", "https://www.lrytas.lt/a/1", "https://www.lrytas.lt/a/1", true},
		{"absolute bare domain", "https://lrytas.lt/a/1", "https://lrytas.lt/a/1", true},
		{"off-site", "https://delfi.lt/a/1", "", false},
		{"schemeless garbage", "javascript:void(0)", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := f.resolveLink(tc.href)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}
