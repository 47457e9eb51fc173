// Package memory contains an in-memory publisher for tests.
package memory

import (
	"context"
	"fmt"

	"github.com/alexandrainst/lrytas-scraper/internal/publisher"
)

// Publisher stores published datasets for inspection.
type Publisher struct {
	datasets []publisher.Dataset
	// Err, when set, is returned by every Publish call.
	Err error
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the dataset and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, ds publisher.Dataset) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.datasets = append(p.datasets, ds)
	return fmt.Sprintf("memory-%d", len(p.datasets)), nil
}

// Datasets returns the recorded publishes.
func (p *Publisher) Datasets() []publisher.Dataset {
	out := make([]publisher.Dataset, len(p.datasets))
	copy(out, p.datasets)
	return out
}
