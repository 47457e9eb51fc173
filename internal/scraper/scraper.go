package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/metrics"
)

// State names the crawl loop's position in its lifecycle.
type State string

// Crawl states. The loop moves Idle -> Running, bounces between Running and
// Backoff while queries are unproductive, and ends in Done.
const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateBackoff State = "backoff"
	StateDone    State = "done"
)

// Config controls the crawl loop.
type Config struct {
	// MaxArticles is the target dataset size; the crawl stops once the
	// persisted count reaches it.
	MaxArticles int
	// CooldownBatchSize forces a long delay after this many newly acquired
	// samples since the last long delay.
	CooldownBatchSize int
	// ProgressInterval controls how often a progress line is logged, in
	// persisted samples.
	ProgressInterval int
}

// Scraper drives the acquisition loop: it pulls queries, discovers article
// URLs, filters already-seen ones, fetches samples, and appends them to the
// store. Single-threaded by design; the only suspension points are the
// politeness delays and the blocking fetches.
type Scraper struct {
	cfg     Config
	fetcher ArticleFetcher
	store   Store
	queries QuerySource
	delayer Delayer
	logger  *zap.Logger
	runID   string

	state         State
	crawl         *CrawlState
	sinceCooldown int
}

// New constructs a Scraper. The crawl state is rebuilt from the store when
// Run is called, not here.
func New(
	cfg Config,
	fetcher ArticleFetcher,
	store Store,
	queries QuerySource,
	delayer Delayer,
	logger *zap.Logger,
) *Scraper {
	if cfg.CooldownBatchSize <= 0 {
		cfg.CooldownBatchSize = 25
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 10
	}
	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		queries: queries,
		delayer: delayer,
		logger:  logger,
		runID:   uuid.NewString(),
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Scraper) State() State {
	return s.state
}

// Count returns the number of persisted samples, valid after Run started.
func (s *Scraper) Count() int {
	if s.crawl == nil {
		return 0
	}
	return s.crawl.Count()
}

// Run executes the crawl until the target count is reached. It returns an
// error when the query pool drains first, when the store fails, or when the
// context is canceled. Partial progress is already durable either way.
func (s *Scraper) Run(ctx context.Context) error {
	state, err := s.store.Recover()
	if err != nil {
		return fmt.Errorf("recover crawl state: %w", err)
	}
	s.crawl = state
	s.state = StateRunning
	s.logger.Info("crawl started",
		zap.String("run_id", s.runID),
		zap.Int("recovered", state.Count()),
		zap.Int("max_articles", s.cfg.MaxArticles),
	)

	for s.crawl.Count() < s.cfg.MaxArticles {
		query, err := s.queries.Next()
		if err != nil {
			return fmt.Errorf("query pool drained at %d/%d articles: %w",
				s.crawl.Count(), s.cfg.MaxArticles, err)
		}
		metrics.QueryIssued()

		productive, err := s.runQuery(ctx, query)
		if err != nil {
			return err
		}
		if !productive {
			if err := s.backoff(ctx); err != nil {
				return err
			}
		}
	}

	s.state = StateDone
	s.logger.Info("crawl finished",
		zap.String("run_id", s.runID),
		zap.Int("count", s.crawl.Count()),
	)
	return nil
}

// runQuery processes one search query. It returns false when the query was
// unproductive: no result URLs, or a transport fault on the search page or
// on one of the article pages. A transport fault abandons the rest of the
// query's URLs; the caller cools down and moves to the next query.
func (s *Scraper) runQuery(ctx context.Context, query string) (bool, error) {
	if err := s.maybeCooldown(ctx); err != nil {
		return false, err
	}
	if err := s.delayer.Short(ctx); err != nil {
		return false, err
	}

	urls, err := s.fetcher.FindArticleURLs(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("search canceled: %w", err)
		}
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		metrics.EmptyQuery()
		return false, nil
	}
	if len(urls) == 0 {
		s.logger.Info("query yielded no articles", zap.String("query", query))
		metrics.EmptyQuery()
		return false, nil
	}

	for _, url := range urls {
		if s.crawl.Count() >= s.cfg.MaxArticles {
			return true, nil
		}
		if s.crawl.Seen(url) {
			metrics.URLSkipped()
			continue
		}
		ok, err := s.harvest(ctx, url)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// harvest fetches and persists a single new URL. The bool result is false
// only on a transport fault, which abandons the current query.
func (s *Scraper) harvest(ctx context.Context, url string) (bool, error) {
	if err := s.maybeCooldown(ctx); err != nil {
		return false, err
	}
	if err := s.delayer.Short(ctx); err != nil {
		return false, err
	}

	sample, err := s.fetcher.FetchSample(ctx, url)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("missing text and/or summary", zap.String("url", url))
		metrics.SampleRejected()
		return true, nil
	case err != nil:
		if ctx.Err() != nil {
			return false, fmt.Errorf("article fetch canceled: %w", err)
		}
		s.logger.Warn("article fetch failed, abandoning query",
			zap.String("url", url), zap.Error(err))
		return false, nil
	}

	if !sample.Valid() {
		s.logger.Warn("missing text and/or summary", zap.String("url", url))
		metrics.SampleRejected()
		return true, nil
	}

	if err := s.persist(sample); err != nil {
		return false, err
	}
	return true, nil
}

// persist appends the sample and then marks it seen, in that order: a crash
// between the two is harmless because recovery derives the seen set from the
// store itself.
func (s *Scraper) persist(sample Sample) error {
	if err := s.store.Append(sample); err != nil {
		return fmt.Errorf("append sample: %w", err)
	}
	s.crawl.Mark(sample.URL)
	s.sinceCooldown++
	metrics.SamplePersisted()

	if s.crawl.Count()%s.cfg.ProgressInterval == 0 {
		s.logger.Info("progress",
			zap.Int("count", s.crawl.Count()),
			zap.Int("max_articles", s.cfg.MaxArticles),
		)
	}
	return nil
}

// backoff is the long pause taken after an unproductive query.
func (s *Scraper) backoff(ctx context.Context) error {
	s.logger.Info("long sleep (query)")
	return s.longDelay(ctx)
}

// maybeCooldown forces a long pause once enough samples accumulated since
// the last one, before the next fetch is attempted.
func (s *Scraper) maybeCooldown(ctx context.Context) error {
	if s.sinceCooldown < s.cfg.CooldownBatchSize {
		return nil
	}
	s.logger.Info("long sleep (batch)", zap.Int("batch", s.sinceCooldown))
	return s.longDelay(ctx)
}

func (s *Scraper) longDelay(ctx context.Context) error {
	s.state = StateBackoff
	metrics.Backoff()
	err := s.delayer.Long(ctx)
	s.sinceCooldown = 0
	if err != nil {
		return fmt.Errorf("backoff interrupted: %w", err)
	}
	s.state = StateRunning
	return nil
}
