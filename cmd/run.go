// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/naka-gawa/top-issues/internal/config"
	"github.com/naka-gawa/top-issues/internal/gateway"
	"github.com/naka-gawa/top-issues/internal/usecase"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ranks open issues and PRs, reconciles top labels and updates the dashboard",
	Long: `Fetches a snapshot of the repository's open issues and pull requests, ranks
each enabled category by reaction score, applies and removes the per-category
top labels to match the new ranking, publishes the dashboard issue, and
outputs a report of everything that happened in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		// Everything else comes from the environment (and an optional .env).
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		// The flag can force a dry run on top of whatever the environment says.
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			cfg.DryRun = true
		}

		// Inject dependencies and run the main business logic.
		gw, err := gateway.NewGitHubGateway(cfg.Token, cfg.Owner, cfg.Repo, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		runner := usecase.NewRunner(gw, cfg, logger)

		report, err := runner.Run(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
			os.Exit(1)
		}

		// Marshal the report into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal report to JSON: %v\n", err)
			os.Exit(1)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("dry-run", false, "Compute and log every decision without mutating labels or issues")
}
