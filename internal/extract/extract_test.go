package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

func testConfig() Config {
	return Config{
		Title:    "h1.article-title",
		Summary:  "div.summary",
		Content:  "div.article-content",
		Unwanted: ".related-articles-inline, .swiper, .thumbnail",
	}
}

const articleHTML = `<html><body>
<h1 class="article-title">Vilniuje <em>atidarytas</em> naujas tiltas</h1>
<div class="summary">Trumpa santrauka apie tilta.</div>
<div class="article-content">
  <p>Pirma pastraipa.</p>
  <div class="related-articles-inline"><a href="/kitas">Skaitykite daugiau</a></div>
  <p>Antra pastraipa.</p>
  <div class="swiper">galerija</div>
  <div class="thumbnail">nuotrauka</div>
</div>
</body></html>`

func TestSampleExtractsAllFields(t *testing.T) {
	t.Parallel()

	e := New(testConfig())
	sample, err := e.Sample("https://www.lrytas.lt/a/1", []byte(articleHTML))
	require.NoError(t, err)

	require.Equal(t, "https://www.lrytas.lt/a/1", sample.URL)
	require.Equal(t, "Vilniuje atidarytas naujas tiltas", sample.Title,
		"text split across inline tags must be joined with spaces")
	require.Equal(t, "Trumpa santrauka apie tilta.", sample.Summary)
	require.Equal(t, "Pirma pastraipa. Antra pastraipa.", sample.Text,
		"unwanted blocks must be stripped from the body")
	require.True(t, sample.Valid())
}

func TestSampleMissingSummaryIsNotFound(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<h1 class="article-title">Antraste</h1>
<div class="article-content"><p>Tekstas.</p></div>
</body></html>`

	e := New(testConfig())
	_, err := e.Sample("https://www.lrytas.lt/a/2", []byte(page))
	require.True(t, errors.Is(err, scraper.ErrNotFound))
}

func TestSampleMissingBodyIsNotFound(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<h1 class="article-title">Antraste</h1>
<div class="summary">Santrauka.</div>
<p>laisvas tekstas be konteinerio</p>
</body></html>`

	e := New(testConfig())
	_, err := e.Sample("https://www.lrytas.lt/a/3", []byte(page))
	require.True(t, errors.Is(err, scraper.ErrNotFound))
}

func TestSampleMissingTitleStillExtracts(t *testing.T) {
	t.Parallel()

	// A missing title does not invalidate a sample at crawl time; empty
	// titles are dropped later, at export.
	page := `<html><body>
<div class="summary">Santrauka.</div>
<div class="article-content"><p>Tekstas.</p></div>
</body></html>`

	e := New(testConfig())
	sample, err := e.Sample("https://www.lrytas.lt/a/4", []byte(page))
	require.NoError(t, err)
	require.Empty(t, sample.Title)
	require.True(t, sample.Valid())
}

func TestSampleFallsBackToReadability(t *testing.T) {
	t.Parallel()

	// The content container drifted away from the configured selector, but
	// the page still carries a substantial article body.
	para := "Seimas antradienį po ilgų diskusijų pritarė naujajam biudžeto projektui, " +
		"kuriame numatyta daugiau lėšų švietimui ir sveikatos apsaugai. " +
		"Opozicijos atstovai teigė, kad projektas nepakankamai ambicingas. "
	page := `<html><head><title>Antraste</title></head><body>
<h1 class="article-title">Antraste</h1>
<div class="summary">Santrauka apie biudzeta.</div>
<article>
<p>` + para + `</p>
<p>` + para + `</p>
<p>` + para + `</p>
<p>` + para + `</p>
</article>
</body></html>`

	e := New(testConfig())
	sample, err := e.Sample("https://www.lrytas.lt/a/5", []byte(page))
	require.NoError(t, err)
	require.Contains(t, sample.Text, "pritarė naujajam biudžeto projektui")
	require.Equal(t, "Santrauka apie biudzeta.", sample.Summary)
}

func TestLinksReturnsHrefsInDocumentOrder(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<h3><a href="/lietuva/pirmas">Pirmas</a></h3>
<h3><a href="https://www.lrytas.lt/sportas/antras">Antras</a></h3>
<h3><a>be nuorodos</a></h3>
<h2><a href="/ne-rezultatas">meniu</a></h2>
</body></html>`

	links, err := Links([]byte(page), "h3 a[href]")
	require.NoError(t, err)
	require.Equal(t, []string{
		"/lietuva/pirmas",
		"https://www.lrytas.lt/sportas/antras",
	}, links)
}

func TestLinksEmptyPage(t *testing.T) {
	t.Parallel()

	links, err := Links([]byte("<html><body></body></html>"), "h3 a[href]")
	require.NoError(t, err)
	require.Empty(t, links)
}