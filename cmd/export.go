package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/exporter"
	"github.com/alexandrainst/lrytas-scraper/internal/publisher"
	"github.com/alexandrainst/lrytas-scraper/internal/publisher/hub"
	"github.com/alexandrainst/lrytas-scraper/internal/store"
)

// newExportCmd creates the 'export' subcommand: the post-hoc batch job that
// deduplicates the raw dataset and optionally publishes it.
func newExportCmd() *cobra.Command {
	var (
		rawDataset string
		pushToHub  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Deduplicates the raw dataset and optionally publishes it",
		Long: `Loads the raw JSONL dataset, drops samples with duplicate or empty
titles, and reports the removed/kept counts. With --push-to-hub the unique
samples are uploaded to the dataset hub as a single named split.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(rawDataset); err != nil {
				return fmt.Errorf("raw dataset %s: %w", rawDataset, err)
			}
			return runExport(cmd, rawDataset, pushToHub)
		},
	}

	cmd.Flags().StringVar(&rawDataset, "raw-dataset", "data/raw/dataset.jsonl", "path to the raw dataset file")
	cmd.Flags().BoolVar(&pushToHub, "push-to-hub", false, "publish the deduplicated dataset to the hub")

	return cmd
}

func runExport(cmd *cobra.Command, rawDataset string, pushToHub bool) error {
	dataset, err := store.Open(rawDataset, logger)
	if err != nil {
		return fmt.Errorf("open raw dataset: %w", err)
	}
	defer func() {
		if cerr := dataset.Close(); cerr != nil {
			logger.Warn("failed to close dataset", zap.Error(cerr))
		}
	}()

	var pub publisher.Publisher
	if pushToHub {
		client, err := hub.New(hub.Config{
			Endpoint: cfg.Hub.Endpoint,
			Token:    os.Getenv(cfg.Hub.TokenEnv),
		}, logger)
		if err != nil {
			return fmt.Errorf("init hub client: %w", err)
		}
		pub = client
	}

	job := exporter.New(exporter.Config{
		Repo:    cfg.Hub.Repo,
		Split:   cfg.Hub.Split,
		Private: cfg.Hub.Private,
		RunID:   uuid.NewString(),
	}, dataset, pub, logger)

	result, err := job.Run(cmd.Context(), pushToHub)
	if err != nil {
		return err
	}
	logger.Info("export finished",
		zap.Int("kept", result.Kept),
		zap.Int("removed", result.Removed),
	)
	return nil
}
