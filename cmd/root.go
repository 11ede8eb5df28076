// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "pr-analytics",
	Short: "A CLI tool to fetch pull request metrics and publish a static dashboard.",
	Long: `pr-analytics pulls the complete pull request history of one repository,
computes aggregate metrics (merge rate, review coverage, timing buckets,
author leaderboards, monthly series), and writes the dataset consumed by
the static HTML/JS dashboard. The serve command hosts that dashboard
locally against the generated files.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// newLogger builds the process logger. Verbose runs get the development
// encoder with debug level, everything else the production config.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
