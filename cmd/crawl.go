package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/api"
	"github.com/alexandrainst/lrytas-scraper/internal/extract"
	"github.com/alexandrainst/lrytas-scraper/internal/fetcher"
	"github.com/alexandrainst/lrytas-scraper/internal/fetcher/collyfetcher"
	"github.com/alexandrainst/lrytas-scraper/internal/fetcher/headless"
	"github.com/alexandrainst/lrytas-scraper/internal/metrics"
	"github.com/alexandrainst/lrytas-scraper/internal/politeness"
	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
	"github.com/alexandrainst/lrytas-scraper/internal/store"
	"github.com/alexandrainst/lrytas-scraper/internal/words"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs the acquisition
// loop until the dataset reaches the configured size.
func newCrawlCmd() *cobra.Command {
	var (
		datasetPath string
		maxArticles int
		headlessOn  bool
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawls lrytas.lt and appends article samples to the dataset",
		Long: `Issues randomized search queries against lrytas.lt, extracts article
samples from the results, and appends unique ones to the JSONL dataset.
Resumes from the existing dataset file after an interruption.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("dataset-path") {
				cfg.Scraper.DatasetPath = datasetPath
			}
			if flags.Changed("max-articles") {
				cfg.Scraper.MaxArticles = maxArticles
			}
			if flags.Changed("headless") {
				cfg.Scraper.Headless = headlessOn
			}
			if flags.Changed("debug") {
				cfg.Scraper.Debug = debug
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCrawl(cmd)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset-path", "data/raw/dataset.jsonl", "path where the scraped dataset is appended")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 10, "maximum number of articles to scrape")
	cmd.Flags().BoolVar(&headlessOn, "headless", true, "run the browser in headless mode")
	cmd.Flags().BoolVar(&debug, "debug", false, "use the fast debug delay ranges")

	return cmd
}

func runCrawl(cmd *cobra.Command) error {
	metrics.Init()
	if cfg.Ops.MetricsAddr != "" {
		api.Serve(cfg.Ops.MetricsAddr, logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	delayer, err := politeness.New(cfg.Politeness(), logger)
	if err != nil {
		return fmt.Errorf("init delayer: %w", err)
	}

	queries, err := words.New(words.Config{Size: cfg.Scraper.WordListSize})
	if err != nil {
		return fmt.Errorf("init query source: %w", err)
	}

	dataset, err := store.Open(cfg.Scraper.DatasetPath, logger)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer func() {
		if cerr := dataset.Close(); cerr != nil {
			logger.Warn("failed to close dataset", zap.Error(cerr))
		}
	}()

	// The browser session wraps the whole crawl and is released on every
	// exit path.
	renderer, err := headless.New(headless.Config{
		Headless:          cfg.Scraper.Headless,
		UserAgent:         cfg.Scraper.UserAgent,
		NavigationTimeout: cfg.Scraper.NavTimeout,
		ConsentSelector:   cfg.Selectors.Consent,
	}, logger)
	if err != nil {
		return fmt.Errorf("init browser: %w", err)
	}
	defer renderer.Close()

	articles := fetcher.New(
		fetcher.Config{
			SearchURL:      cfg.Scraper.SearchURL,
			SiteRoot:       cfg.Scraper.SiteRoot,
			ResultSelector: cfg.Selectors.SearchResult,
		},
		renderer,
		collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Scraper.UserAgent,
			Timeout:   cfg.Scraper.FetchTimeout,
		}),
		extract.New(extract.Config{
			Title:    cfg.Selectors.Title,
			Summary:  cfg.Selectors.Summary,
			Content:  cfg.Selectors.Content,
			Unwanted: cfg.Selectors.Unwanted,
		}),
		logger,
	)

	engine := scraper.New(
		scraper.Config{
			MaxArticles:       cfg.Scraper.MaxArticles,
			CooldownBatchSize: cfg.Scraper.CooldownBatchSize,
			ProgressInterval:  cfg.Scraper.ProgressInterval,
		},
		articles,
		dataset,
		queries,
		delayer,
		logger,
	)

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	logger.Info("done scraping", zap.Int("articles", engine.Count()))
	return nil
}
