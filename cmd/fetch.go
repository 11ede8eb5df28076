package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aviv-k/pr-analytics/internal/config"
	"github.com/aviv-k/pr-analytics/internal/domain"
	"github.com/aviv-k/pr-analytics/internal/exporter"
	"github.com/aviv-k/pr-analytics/internal/gateway"
	"github.com/aviv-k/pr-analytics/internal/metrics"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches all pull requests and writes the dashboard dataset",
	Long: `Fetches every pull request (open, closed, merged) of the configured
repository, computes the full metrics snapshot in memory, and only then
writes the tabular file and metadata document. A failed run leaves the
previous run's files untouched.

Configuration comes from the environment: GITHUB_TOKEN and GITHUB_REPO
(owner/name) are required; OUTPUT_DIR and TAG_EQUIVALENTS are optional.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger, err := newLogger(verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		// Configuration errors abort before any network call.
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, logger.Named("gateway"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		owner, name := cfg.SplitRepository()
		records, err := githubGateway.FetchPullRequests(ctx, owner, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch pull requests: %v\n", err)
			os.Exit(1)
		}

		// Full snapshot first, then a single write pass.
		snapshot := metrics.Compute(records)

		writer := exporter.NewWriter(cfg.OutputDir, logger.Named("exporter"))
		if err := writer.WriteRecords(records); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write records: %v\n", err)
			os.Exit(1)
		}
		meta := domain.UpdateMetadata{
			LastUpdateTime: time.Now().UTC(),
			TotalPRs:       snapshot.TotalPRs,
			Repository:     cfg.Repository,
			UpdateType:     "full",
		}
		if err := writer.WriteMetadata(meta); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write metadata: %v\n", err)
			os.Exit(1)
		}

		logger.Info("run complete",
			zap.Int("total_prs", snapshot.TotalPRs),
			zap.Int("merged", snapshot.MergedPRs),
			zap.Float64("merge_rate", snapshot.MergeRate),
			zap.Float64("review_coverage", snapshot.ReviewCoverage))
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
