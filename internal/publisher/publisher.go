// Package publisher defines the contract for pushing the finished dataset to
// a remote dataset hub.
package publisher

import (
	"context"

	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// Dataset is one named split of unique samples.
type Dataset struct {
	// Repo is the hub repository, e.g. "alexandrainst/lrytas-summarization".
	Repo string
	// Split labels the records, e.g. "train".
	Split string
	// Private keeps the published dataset non-public.
	Private bool
	// RunID ties the publish back to the exporting run.
	RunID string
	// Records are the deduplicated samples in storage order.
	Records []scraper.Sample
}

// Publisher uploads a dataset split. Implementations return an identifier
// for the accepted upload. Failures are reported to the caller, never
// retried.
type Publisher interface {
	Publish(ctx context.Context, ds Dataset) (string, error)
}
