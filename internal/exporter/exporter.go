// Package exporter builds the final dataset from the raw store: load, drop
// duplicate titles, optionally publish to the hub.
package exporter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/dedup"
	"github.com/alexandrainst/lrytas-scraper/internal/publisher"
	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// SampleSource reads the full raw dataset in storage order.
type SampleSource interface {
	LoadAll() ([]scraper.Sample, error)
}

// Config names the hub destination of the published split.
type Config struct {
	Repo    string
	Split   string
	Private bool
	RunID   string
}

// Result summarizes one export run.
type Result struct {
	Kept    int
	Removed int
	// PublishID is the hub's identifier for the upload, when publishing.
	PublishID string
}

// Exporter is the post-hoc batch job. It never runs concurrently with a
// crawl; the store file is only read here.
type Exporter struct {
	cfg    Config
	source SampleSource
	pub    publisher.Publisher
	logger *zap.Logger
}

// New builds an Exporter. The publisher may be nil when publishing is off.
func New(cfg Config, source SampleSource, pub publisher.Publisher, logger *zap.Logger) *Exporter {
	return &Exporter{
		cfg:    cfg,
		source: source,
		pub:    pub,
		logger: logger,
	}
}

// Run loads the raw dataset, removes duplicate titles, and publishes the
// unique samples when push is set. A publish failure is reported through the
// returned error, not retried.
func (e *Exporter) Run(ctx context.Context, push bool) (Result, error) {
	samples, err := e.source.LoadAll()
	if err != nil {
		return Result{}, fmt.Errorf("load raw dataset: %w", err)
	}

	unique, removed := dedup.ByTitle(samples)
	result := Result{Kept: len(unique), Removed: removed}
	e.logger.Info("deduplicated dataset",
		zap.Int("removed", removed),
		zap.Int("kept", len(unique)),
	)

	if !push {
		return result, nil
	}
	if e.pub == nil {
		return result, fmt.Errorf("publishing requested but no publisher configured")
	}

	id, err := e.pub.Publish(ctx, publisher.Dataset{
		Repo:    e.cfg.Repo,
		Split:   e.cfg.Split,
		Private: e.cfg.Private,
		RunID:   e.cfg.RunID,
		Records: unique,
	})
	if err != nil {
		return result, fmt.Errorf("publish dataset: %w", err)
	}
	result.PublishID = id
	e.logger.Info("dataset published",
		zap.String("repo", e.cfg.Repo),
		zap.String("split", e.cfg.Split),
		zap.String("publish_id", id),
	)
	return result, nil
}
