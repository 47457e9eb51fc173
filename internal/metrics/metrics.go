// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queriesTotal          prometheus.Counter
	emptyQueriesTotal     prometheus.Counter
	samplesPersistedTotal prometheus.Counter
	samplesRejectedTotal  prometheus.Counter
	urlsSkippedTotal      prometheus.Counter
	backoffsTotal         prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		queriesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_queries_total",
			Help: "Total number of search queries issued.",
		})
		emptyQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_empty_queries_total",
			Help: "Total number of queries that yielded no article URLs or failed.",
		})
		samplesPersistedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_samples_persisted_total",
			Help: "Total number of samples appended to the dataset.",
		})
		samplesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_samples_rejected_total",
			Help: "Total number of fetched pages dropped for missing text or summary.",
		})
		urlsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_urls_skipped_total",
			Help: "Total number of already-seen URLs skipped without a fetch.",
		})
		backoffsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_backoffs_total",
			Help: "Total number of long politeness delays taken.",
		})
	})
}

// QueryIssued records one issued search query.
func QueryIssued() {
	if queriesTotal != nil {
		queriesTotal.Inc()
	}
}

// EmptyQuery records a query that produced no usable URLs.
func EmptyQuery() {
	if emptyQueriesTotal != nil {
		emptyQueriesTotal.Inc()
	}
}

// SamplePersisted records one successful append.
func SamplePersisted() {
	if samplesPersistedTotal != nil {
		samplesPersistedTotal.Inc()
	}
}

// SampleRejected records a page dropped during field extraction.
func SampleRejected() {
	if samplesRejectedTotal != nil {
		samplesRejectedTotal.Inc()
	}
}

// URLSkipped records a URL skipped by the seen set.
func URLSkipped() {
	if urlsSkippedTotal != nil {
		urlsSkippedTotal.Inc()
	}
}

// Backoff records one long delay.
func Backoff() {
	if backoffsTotal != nil {
		backoffsTotal.Inc()
	}
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
