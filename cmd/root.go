// Package cmd defines and implements the CLI commands for the lrytas-scraper
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/config"
	"github.com/alexandrainst/lrytas-scraper/internal/logging"
)

var (
	cfgFile string

	// cfg and logger are initialized once in the root PersistentPreRunE and
	// shared by the subcommands.
	cfg    config.Config
	logger *zap.Logger
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lrytas-scraper",
		Short: "Harvests a Lithuanian summarization dataset from lrytas.lt.",
		Long: `lrytas-scraper drives search queries against lrytas.lt, extracts
article title/summary/body triples, and accumulates them in an append-only
JSONL dataset. A separate export step deduplicates the accumulated samples
and can publish them to the dataset hub.`,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development, cfg.Logging.File)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync() //nolint:errcheck // best-effort flush
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML; defaults and LRYTAS_* env vars otherwise)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync() //nolint:errcheck // best-effort flush
		}
		os.Exit(1)
	}
}
